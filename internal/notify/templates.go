package notify

import (
	"fmt"
	"strings"

	"accelerator-portal/internal/models"
)

var templates = map[string]models.NotificationTemplate{
	models.TemplatePhase1UnderReview: {
		Subject: "Your application is under review",
		Body:    "Hi {{firstName}},\n\nThanks for applying. Our team is reviewing your signup and will get back to you shortly.",
	},
	models.TemplateWebinarInvitation: {
		Subject: "Next step: join an info webinar",
		Body:    "Hi {{firstName}},\n\nYou're through the first round. Attend one of our webinars and enter the code shown at the end on {{portalUrl}} to unlock the in-depth application.",
	},
	models.TemplatePhase3Invitation: {
		Subject: "You're invited to the in-depth application",
		Body:    "Hi {{firstName}},\n\nThe in-depth application is now open for you at {{portalUrl}}.",
	},
	models.TemplatePhase3Submitted: {
		Subject: "We received your in-depth application",
		Body:    "Hi {{firstName}},\n\nYour in-depth application was submitted. Every application is reviewed by our team.",
	},
	models.TemplatePhase3Reopened: {
		Subject: "Your application was reopened",
		Body:    "Hi {{firstName}},\n\nWe reopened your in-depth application so you can make changes. {{reason}}",
	},
	models.TemplatePhase3Rejected: {
		Subject: "Update on your application",
		Body:    "Hi {{firstName}},\n\nThank you for your time. We won't be moving forward with your application for this cohort.",
	},
	models.TemplateInterviewInvite: {
		Subject: "Interview invitation",
		Body:    "Hi {{firstName}},\n\nWe'd like to interview your team. Your interviewer will reach out to schedule a time.",
	},
	models.TemplateInterviewScheduled: {
		Subject: "Your interview is scheduled",
		Body:    "Hi {{firstName}},\n\nYour interview is scheduled for {{scheduledAt}}.",
		SMS:     "Your accelerator interview is scheduled for {{scheduledAt}}.",
	},
	models.TemplateAccepted: {
		Subject: "Welcome to the program",
		Body:    "Hi {{firstName}},\n\nCongratulations, you've been accepted. Details follow at {{portalUrl}}.",
	},
	models.TemplateInterviewRejected: {
		Subject: "Update on your interview",
		Body:    "Hi {{firstName}},\n\nThank you for interviewing with us. We won't be moving forward this time.",
	},
}

// Lookup returns the named template.
func Lookup(name string) (models.NotificationTemplate, bool) {
	t, ok := templates[name]
	return t, ok
}

// TemplateFor picks the template announcing a status change. An empty name means the
// change is not announced.
func TemplateFor(from, to models.Status) string {
	switch to {
	case models.StatusPhase1:
		return models.TemplatePhase1UnderReview
	case models.StatusPhase2:
		return models.TemplateWebinarInvitation
	case models.StatusPhase3:
		return models.TemplatePhase3Invitation
	case models.StatusPhase3InProgress:
		if from == models.StatusPhase3Submitted || from == models.StatusPhase3Rejected {
			return models.TemplatePhase3Reopened
		}
	case models.StatusPhase3Submitted:
		return models.TemplatePhase3Submitted
	case models.StatusPhase3Rejected:
		return models.TemplatePhase3Rejected
	case models.StatusPhase4:
		if from.Phase() != models.PhaseInterview && from != models.StatusAccepted {
			return models.TemplateInterviewInvite
		}
	case models.StatusPhase4InterviewScheduled:
		return models.TemplateInterviewScheduled
	case models.StatusAccepted:
		return models.TemplateAccepted
	case models.StatusPhase4Rejected:
		return models.TemplateInterviewRejected
	}
	return ""
}

// renderTemplate substitutes {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		switch val := v.(type) {
		case string:
			value = val
		case int:
			value = fmt.Sprintf("%d", val)
		case nil:
		default:
			value = fmt.Sprintf("%v", val)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return strings.TrimSpace(result)
}
