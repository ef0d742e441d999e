package registerapplicant

type Input struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	CohortID  string `json:"cohortId,omitempty"`
}

type Output struct {
	ApplicantID string `json:"applicantId"`
	Status      string `json:"status"`
	Phase       string `json:"phase"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["email", "password", "firstName", "lastName"],
  "properties": {
    "email": {"type": "string", "format": "email"},
    "password": {"type": "string", "minLength": 8},
    "firstName": {"type": "string", "minLength": 1},
    "lastName": {"type": "string", "minLength": 1},
    "phone": {"type": "string"},
    "cohortId": {"type": "string"}
  }
}`
