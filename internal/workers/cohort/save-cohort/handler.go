package savecohort

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
	TaskType = "save-cohort"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	SaveCohort(ctx context.Context, c models.Cohort) (*models.Cohort, error)
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

// Execute saves the cohort. Overlaps with another cohort fail with COHORT_OVERLAP.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	c := models.Cohort{
		ID:               input.CohortID,
		Name:             input.Name,
		ApplicationStart: input.ApplicationStartDate.UTC(),
		ApplicationEnd:   input.ApplicationEndDate.UTC(),
		ProgramStart:     input.ProgramStartDate.UTC(),
		ProgramEnd:       input.ProgramEndDate.UTC(),
		IsActive:         true,
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}

	saved, err := h.service.SaveCohort(ctx, c)
	if err != nil {
		return nil, err
	}
	return &Output{
		CohortID: saved.ID,
		Name:     saved.Name,
		Created:  input.CohortID == "",
		Webinars: len(saved.Webinars),
	}, nil
}
