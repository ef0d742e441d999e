// Package notify sends the lifecycle emails through SES and interview SMS through SNS.
package notify

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SMSSenderID  string
	PortalURL    string
}

type Notifier struct {
	config    Config
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
	now       func() time.Time
}

func New(cfg Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Send renders template for the applicant and delivers it on every enabled channel.
// The returned notification is non-nil even on failure so callers can record the attempt.
func (n *Notifier) Send(ctx context.Context, a *models.Applicant, template string, extra map[string]interface{}) (*models.Notification, error) {
	tmpl, ok := Lookup(template)
	if !ok {
		return nil, errors.NewValidationError("template", "unknown notification template "+template)
	}

	data := map[string]interface{}{
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"email":     a.Email,
		"status":    string(a.Status),
		"phase":     string(a.Phase()),
		"portalUrl": n.config.PortalURL,
	}
	for k, v := range extra {
		data[k] = v
	}

	notification := &models.Notification{
		ID:          uuid.New().String(),
		ApplicantID: a.ID,
		Template:    template,
		Channels:    []string{},
		Status:      models.NotificationDisabled,
		Data:        extra,
		SentAt:      n.now().Format(time.RFC3339),
	}

	if n.config.EmailEnabled && n.sesClient != nil && a.Email != "" {
		subject := renderTemplate(tmpl.Subject, data)
		body := renderTemplate(tmpl.Body, data)
		if err := n.sendEmail(ctx, a.Email, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error":       err.Error(),
				"applicantId": a.ID,
				"template":    template,
			})
			notification.Status = models.NotificationFailed
			return notification, errors.NewNotificationSendFailedError(template, err)
		}
		notification.Channels = append(notification.Channels, ChannelEmail)
	}

	if tmpl.SMS != "" && n.config.SMSEnabled && n.snsClient != nil && a.Phone != "" {
		if err := n.sendSMS(ctx, a.Phone, renderTemplate(tmpl.SMS, data)); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error":       err.Error(),
				"applicantId": a.ID,
				"template":    template,
			})
			notification.Status = models.NotificationFailed
			return notification, errors.NewNotificationSendFailedError(template, err)
		}
		notification.Channels = append(notification.Channels, ChannelSMS)
	}

	if len(notification.Channels) > 0 {
		notification.Status = models.NotificationSent
	}

	n.logger.Info("notification processed", map[string]interface{}{
		"applicantId": a.ID,
		"template":    template,
		"status":      notification.Status,
		"channels":    notification.Channels,
	})
	return notification, nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if n.config.SMSSenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(n.config.SMSSenderID)},
		}
	}
	_, err := n.snsClient.Publish(ctx, input)
	return err
}
