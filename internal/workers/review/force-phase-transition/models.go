package forcephasetransition

type Input struct {
	ApplicantID  string `json:"applicantId"`
	AdminID      string `json:"adminId"`
	TargetStatus string `json:"targetStatus"`
	Reason       string `json:"reason"`
}

type Output struct {
	ApplicantID    string `json:"applicantId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	Phase          string `json:"phase"`
	Forced         bool   `json:"forced"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "adminId", "targetStatus"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "adminId": {"type": "string", "minLength": 1},
    "targetStatus": {"type": "string", "pattern": "^[A-Z0-9_]+$"},
    "reason": {"type": "string", "maxLength": 2000}
  }
}`
