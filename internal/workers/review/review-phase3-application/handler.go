package reviewphase3application

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/service/orchestrator"
)

const (
	TaskType = "review-phase3-application"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	ReviewPhase3(ctx context.Context, d orchestrator.Phase3Decision) (*orchestrator.Outcome, error)
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
	out, err := h.service.ReviewPhase3(ctx, orchestrator.Phase3Decision{
		ApplicantID:   input.ApplicantID,
		AdminID:       input.AdminID,
		Action:        lifecycle.Action(input.Action),
		InterviewerID: input.InterviewerID,
		Reason:        input.Reason,
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		ApplicantID:    out.Applicant.ID,
		PreviousStatus: string(out.From),
		Status:         string(out.To),
		Phase:          string(out.To.Phase()),
	}, nil
}
