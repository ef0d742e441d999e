package forcephasetransition

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
	"accelerator-portal/internal/service/orchestrator"
)

const (
	TaskType = "force-phase-transition"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	ForceTransition(ctx context.Context, c lifecycle.AdminCapability, applicantID string, target models.Status, reason string) (*orchestrator.Outcome, error)
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

// Execute applies an admin override. The capability is minted from the adminId the
// process carries; the guarded lifecycle never sees it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	target, err := models.ParseStatus(input.TargetStatus)
	if err != nil {
		return nil, errors.NewValidationError("targetStatus", err.Error())
	}
	capability, err := lifecycle.NewAdminCapability(input.AdminID)
	if err != nil {
		return nil, err
	}

	out, err := h.service.ForceTransition(ctx, capability, input.ApplicantID, target, input.Reason)
	if err != nil {
		return nil, err
	}
	return &Output{
		ApplicantID:    out.Applicant.ID,
		PreviousStatus: string(out.From),
		Status:         string(out.To),
		Phase:          string(out.To.Phase()),
		Forced:         true,
	}, nil
}
