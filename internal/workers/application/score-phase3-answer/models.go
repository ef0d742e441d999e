package scorephase3answer

import "accelerator-portal/internal/models"

type Input struct {
	ApplicantID string `json:"applicantId"`
}

type Output struct {
	ApplicantID  string               `json:"applicantId"`
	ScorerStatus string               `json:"scorerStatus"`
	Score        *float64             `json:"score,omitempty"`
	Scorer       *models.ScorerResult `json:"scorer,omitempty"`
	Reanalyzed   bool                 `json:"reanalyzed"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1}
  }
}`
