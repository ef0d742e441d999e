package submitphase3application

import "accelerator-portal/internal/models"

type Input struct {
	ApplicantID string             `json:"applicantId"`
	Product     models.ProductInfo `json:"product"`
	Team        models.TeamInfo    `json:"team"`
	Funding     models.FundingInfo `json:"funding"`
	Legal       models.LegalInfo   `json:"legal"`
}

type Output struct {
	ApplicantID string        `json:"applicantId"`
	Status      string        `json:"status"`
	NeedsReview bool          `json:"needsReview"`
	YellowFlags int           `json:"yellowFlags"`
	Flags       []models.Flag `json:"flags"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "product", "team", "funding", "legal"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "product": {
      "type": "object",
      "required": ["problemAndCustomer"],
      "properties": {
        "problemAndCustomer": {"type": "string"}
      }
    },
    "team": {
      "type": "object",
      "properties": {
        "capacity": {"type": "string"},
        "departedCofounders": {"type": "integer", "minimum": 0}
      }
    },
    "funding": {
      "type": "object",
      "properties": {
        "equity": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "required": ["category"],
            "properties": {
              "percentage": {"type": "number", "minimum": 0, "maximum": 100},
              "category": {"enum": ["founder", "employee", "investor", "total", "grandTotal"]}
            }
          }
        }
      }
    },
    "legal": {
      "type": "object",
      "properties": {
        "incorporated": {"type": "boolean"},
        "willingToAmend": {"type": "string"}
      }
    }
  }
}`
