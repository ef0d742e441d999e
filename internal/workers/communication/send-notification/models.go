package sendnotification

type Input struct {
	ApplicantID string                 `json:"applicantId"`
	Template    string                 `json:"template"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const inputSchemaJSON = `{
  "type": "object",
  "required": ["applicantId", "template"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "template": {"type": "string", "pattern": "^[a-z0-9_]+$"},
    "data": {"type": ["object", "null"]}
  }
}`
