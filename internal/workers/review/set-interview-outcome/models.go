package setinterviewoutcome

import "time"

type Input struct {
	ApplicantID string     `json:"applicantId"`
	AdminID     string     `json:"adminId"`
	Action      string     `json:"action"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

type Output struct {
	ApplicantID    string `json:"applicantId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	Changed        bool   `json:"changed"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "adminId", "action"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "adminId": {"type": "string", "minLength": 1},
    "action": {"enum": ["schedule", "complete", "pending", "accepted", "rejected"]},
    "scheduledAt": {"type": "string", "format": "date-time"},
    "reason": {"type": "string", "maxLength": 2000}
  }
}`
