package createwebinar

import "time"

type Input struct {
	CohortID  string    `json:"cohortId"`
	Timestamp time.Time `json:"timestamp"`
}

type Output struct {
	CohortID  string    `json:"cohortId"`
	Num       int       `json:"num"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["cohortId", "timestamp"],
  "properties": {
    "cohortId": {"type": "string", "minLength": 1},
    "timestamp": {"type": "string", "format": "date-time"}
  }
}`
