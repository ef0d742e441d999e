package analyzephase1application

import "accelerator-portal/internal/models"

type Input struct {
	ApplicantID string              `json:"applicantId"`
	Company     models.CompanyInfo  `json:"company"`
	Personal    models.PersonalInfo `json:"personal"`
	Extended    models.ExtendedInfo `json:"extended"`
}

type Output struct {
	ApplicantID string        `json:"applicantId"`
	Status      string        `json:"status"`
	Phase       string        `json:"phase"`
	Advanced    bool          `json:"advanced"`
	NeedsReview bool          `json:"needsReview"`
	AutoAdvance bool          `json:"autoAdvance"`
	RedFlags    int           `json:"redFlags"`
	YellowFlags int           `json:"yellowFlags"`
	Flags       []models.Flag `json:"flags"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "company", "personal", "extended"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "company": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "website": {"type": "string"},
        "founderCount": {"type": "integer", "minimum": 0}
      }
    },
    "personal": {
      "type": "object",
      "properties": {
        "email": {"type": "string"},
        "linkedInUrl": {"type": "string"}
      }
    },
    "extended": {
      "type": "object",
      "properties": {
        "serviceCountry": {"type": "string"},
        "militaryUnit": {"type": "string"}
      }
    }
  }
}`
