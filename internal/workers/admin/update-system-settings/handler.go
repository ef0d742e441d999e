package updatesystemsettings

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
	"accelerator-portal/internal/models"
)

const (
	TaskType = "update-system-settings"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	UpdateSettings(ctx context.Context, adminID string, skipPhase2 bool) (models.SystemSettings, error)
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SkipPhase2 == nil {
		return nil, errors.NewValidationError("skipPhase2", "skipPhase2 is required")
	}
	st, err := h.service.UpdateSettings(ctx, input.AdminID, *input.SkipPhase2)
	if err != nil {
		return nil, err
	}
	return &Output{
		SkipPhase2: st.SkipPhase2,
		UpdatedAt:  st.UpdatedAt.UTC().Format(time.RFC3339),
		UpdatedBy:  st.UpdatedBy,
	}, nil
}
