package savephase3draft

import "accelerator-portal/internal/models"

type Input struct {
	ApplicantID string             `json:"applicantId"`
	Product     models.ProductInfo `json:"product"`
	Team        models.TeamInfo    `json:"team"`
	Funding     models.FundingInfo `json:"funding"`
	Legal       models.LegalInfo   `json:"legal"`
}

type Output struct {
	ApplicantID string `json:"applicantId"`
	Status      string `json:"status"`
	Version     int64  `json:"version"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "product": {"type": "object"},
    "team": {"type": "object"},
    "funding": {
      "type": "object",
      "properties": {
        "equity": {"type": ["array", "null"]}
      }
    },
    "legal": {"type": "object"}
  }
}`
