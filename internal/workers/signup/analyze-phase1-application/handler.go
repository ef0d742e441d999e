package analyzephase1application

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
	TaskType = "analyze-phase1-application"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	SubmitPhase1(ctx context.Context, app models.Phase1Application) (*orchestrator.Outcome, error)
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

// Execute evaluates the signup. A red-flagged signup is not an error: the job completes
// with needsReview set and the process waits for an admin.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out, err := h.service.SubmitPhase1(ctx, models.Phase1Application{
		ApplicantID: input.ApplicantID,
		Company:     input.Company,
		Personal:    input.Personal,
		Extended:    input.Extended,
	})
	if err != nil {
		return nil, err
	}

	result := models.FlaggingResult{Flags: []models.Flag{}}
	if out.Result != nil {
		result = *out.Result
	}
	return &Output{
		ApplicantID: out.Applicant.ID,
		Status:      string(out.To),
		Phase:       string(out.To.Phase()),
		Advanced:    out.Changed(),
		NeedsReview: result.NeedsReview,
		AutoAdvance: result.AutoAdvance,
		RedFlags:    result.Count(models.FlagRed),
		YellowFlags: result.Count(models.FlagYellow),
		Flags:       result.Flags,
	}, nil
}
