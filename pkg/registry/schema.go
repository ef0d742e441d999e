// pkg/registry/schema.go
package registry

// ActivityRegistry catalogues the job workers the BPMN models may reference.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"displayName"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Version              string   `json:"version"`
	TaskType             string   `json:"taskType"`
	ImplementationStatus string   `json:"implementationStatus"`
	ErrorCodes           []string `json:"errorCodes"`
	Timeout              string   `json:"timeout"`
	Retries              int      `json:"retries"`
	Workflows            []string `json:"workflows"`
	Tags                 []string `json:"tags"`
}

var Categories = []string{"signup", "webinar", "cohort", "application", "review", "admin", "communication"}

var Statuses = []string{"planned", "in-progress", "completed", "verified"}
