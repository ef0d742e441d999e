package savecohort

import "time"

// Input creates a cohort, or updates one when CohortID is set.
type Input struct {
	CohortID             string    `json:"cohortId,omitempty"`
	Name                 string    `json:"name"`
	ApplicationStartDate time.Time `json:"applicationStartDate"`
	ApplicationEndDate   time.Time `json:"applicationEndDate"`
	ProgramStartDate     time.Time `json:"programStartDate"`
	ProgramEndDate       time.Time `json:"programEndDate"`
	IsActive             *bool     `json:"isActive,omitempty"`
}

type Output struct {
	CohortID string `json:"cohortId"`
	Name     string `json:"name"`
	Created  bool   `json:"created"`
	Webinars int    `json:"webinars"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["name", "applicationStartDate", "applicationEndDate", "programStartDate", "programEndDate"],
  "properties": {
    "cohortId": {"type": "string"},
    "name": {"type": "string", "minLength": 1},
    "applicationStartDate": {"type": "string", "format": "date-time"},
    "applicationEndDate": {"type": "string", "format": "date-time"},
    "programStartDate": {"type": "string", "format": "date-time"},
    "programEndDate": {"type": "string", "format": "date-time"},
    "isActive": {"type": "boolean"}
  }
}`
