package reviewphase3application

type Input struct {
	ApplicantID   string `json:"applicantId"`
	AdminID       string `json:"adminId"`
	Action        string `json:"action"`
	InterviewerID string `json:"interviewerId,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type Output struct {
	ApplicantID    string `json:"applicantId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	Phase          string `json:"phase"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "adminId", "action"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "adminId": {"type": "string", "minLength": 1},
    "action": {"enum": ["reject", "reopen", "advance_to_interview"]},
    "interviewerId": {"type": "string"},
    "reason": {"type": "string", "maxLength": 2000}
  }
}`
