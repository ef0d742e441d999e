// internal/models/notification.go
package models

// Template names bound to destination statuses.
const (
	TemplatePhase1UnderReview  = "phase1_under_review"
	TemplateWebinarInvitation  = "webinar_invitation"
	TemplatePhase3Invitation   = "phase3_invitation"
	TemplatePhase3Submitted    = "phase3_submitted"
	TemplatePhase3Reopened     = "phase3_reopened"
	TemplatePhase3Rejected     = "phase3_rejected"
	TemplateInterviewInvite    = "interview_invitation"
	TemplateInterviewScheduled = "interview_scheduled"
	TemplateAccepted           = "accepted"
	TemplateInterviewRejected  = "interview_rejected"
)

// Notification delivery statuses.
const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

// Notification is the outcome of one send attempt.
type Notification struct {
	ID          string                 `json:"id"`
	ApplicantID string                 `json:"applicantId"`
	Template    string                 `json:"template"`
	Channels    []string               `json:"channels"`
	Status      string                 `json:"status"`
	Data        map[string]interface{} `json:"data,omitempty"`
	SentAt      string                 `json:"sentAt"`
}

// NotificationTemplate is a named subject/body pair with {{key}} placeholders.
type NotificationTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SMS     string `json:"sms,omitempty"`
}
