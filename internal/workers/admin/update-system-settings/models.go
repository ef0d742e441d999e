package updatesystemsettings

type Input struct {
	AdminID    string `json:"adminId"`
	SkipPhase2 *bool  `json:"skipPhase2"`
}

type Output struct {
	SkipPhase2 bool   `json:"skipPhase2"`
	UpdatedAt  string `json:"updatedAt"`
	UpdatedBy  string `json:"updatedBy"`
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["adminId", "skipPhase2"],
  "properties": {
    "adminId": {"type": "string", "minLength": 1},
    "skipPhase2": {"type": "boolean"}
  }
}`
