package redeemwebinarcode

type Input struct {
	ApplicantID string `json:"applicantId"`
	Code        string `json:"code"`
}

type Output struct {
	ApplicantID     string `json:"applicantId"`
	Status          string `json:"status"`
	Phase           string `json:"phase"`
	CohortID        string `json:"cohortId"`
	WebinarAttended int    `json:"webinarAttended"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "code"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "code": {"type": "string", "minLength": 1}
  }
}`
