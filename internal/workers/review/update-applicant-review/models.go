package updateapplicantreview

type Input struct {
	ApplicantID string  `json:"applicantId"`
	Rating      *int    `json:"rating,omitempty"`
	ClearRating bool    `json:"clearRating,omitempty"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

type Output struct {
	ApplicantID string `json:"applicantId"`
	Rating      *int   `json:"rating"`
	AssignedTo  string `json:"assignedTo"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "rating": {"type": ["integer", "null"], "minimum": 1, "maximum": 3},
    "clearRating": {"type": "boolean"},
    "assignedTo": {"type": ["string", "null"]}
  }
}`
