package scorephase3answer

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
	TaskType = "score-phase3-answer"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	ScorePhase3Answer(ctx context.Context, applicantID string) (*orchestrator.ScoreOutcome, error)
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

// Execute scores the problem/customer answer. A failed scorer call completes the job
// with scorerStatus "failed" so the process is not blocked on the external service.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.service.ScorePhase3Answer(ctx, input.ApplicantID)
	if err != nil {
		return nil, err
	}

	out := &Output{
		ApplicantID:  res.ApplicantID,
		ScorerStatus: string(res.ScorerStatus),
		Scorer:       res.Scorer,
		Reanalyzed:   res.Reanalyzed,
	}
	if res.Scorer != nil {
		score := res.Scorer.Score
		out.Score = &score
	}
	if res.ScorerStatus == models.ScorerFailed {
		h.logger.Warn("scorer unavailable, continuing without score", map[string]interface{}{
			"applicantId": input.ApplicantID,
		})
	}
	return out, nil
}
