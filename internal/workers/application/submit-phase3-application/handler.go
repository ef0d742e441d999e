package submitphase3application

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
	"accelerator-portal/internal/models"
	"accelerator-portal/internal/service/orchestrator"
)

const (
	TaskType = "submit-phase3-application"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	SubmitPhase3(ctx context.Context, app models.Phase3Application) (*orchestrator.Outcome, error)
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

// Execute submits and flags the in-depth application. The applicant always stops at
// PHASE_3_SUBMITTED; the process continues with an admin review task.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out, err := h.service.SubmitPhase3(ctx, models.Phase3Application{
		ApplicantID: input.ApplicantID,
		Product:     input.Product,
		Team:        input.Team,
		Funding:     input.Funding,
		Legal:       input.Legal,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		ApplicantID: out.Applicant.ID,
		Status:      string(out.To),
		Flags:       []models.Flag{},
	}
	if out.Result != nil {
		output.NeedsReview = out.Result.NeedsReview
		output.YellowFlags = out.Result.Count(models.FlagYellow)
		if out.Result.Flags != nil {
			output.Flags = out.Result.Flags
		}
	}
	return output, nil
}
