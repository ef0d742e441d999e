package sendnotification

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
	"accelerator-portal/internal/models"
)

const (
	TaskType = "send-notification"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	SendNotification(ctx context.Context, applicantID, template string, data map[string]interface{}) (*models.Notification, error)
}

type Handler struct {
	config  *Config
	service Service
	logger  logger.Logger
	runner  *camunda.Runner
}

func NewHandler(config *Config, svc Service, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: svc,
		logger:  log,
		runner:  camunda.NewRunner(TaskType, config.Timeout, inputSchema, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, h.run)
}

func (h *Handler) run(ctx context.Context, variables string) (interface{}, error) {
	var input Input
	if err := camunda.Decode(variables, &input); err != nil {
		return nil, err
	}
	return h.Execute(ctx, &input)
}

// Execute sends one named template. Delivery failures fail the job so Zeebe retries it;
// a "disabled" result means no channel was configured or reachable.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	n, err := h.service.SendNotification(ctx, input.ApplicantID, input.Template, input.Data)
	if err != nil {
		return nil, err
	}
	channels := n.Channels
	if channels == nil {
		channels = []string{}
	}
	return &Output{
		NotificationID: n.ID,
		Status:         n.Status,
		Channels:       channels,
		SentAt:         n.SentAt,
	}, nil
}
