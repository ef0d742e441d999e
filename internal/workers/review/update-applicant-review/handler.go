package updateapplicantreview

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
	TaskType = "update-applicant-review"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	UpdateReview(ctx context.Context, applicantID string, u models.ReviewUpdate) (*models.Applicant, error)
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
	a, err := h.service.UpdateReview(ctx, input.ApplicantID, models.ReviewUpdate{
		Rating:      input.Rating,
		ClearRating: input.ClearRating,
		AssignedTo:  input.AssignedTo,
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		ApplicantID: a.ID,
		Rating:      a.Rating,
		AssignedTo:  a.AssignedTo,
	}, nil
}
