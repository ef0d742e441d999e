package registerapplicant

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
	TaskType = "register-applicant"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	RegisterApplicant(ctx context.Context, r orchestrator.Registration) (*models.Applicant, error)
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

// Execute creates the identity and the applicant. Retried jobs converge on the
// applicant already registered for the email.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	a, err := h.service.RegisterApplicant(ctx, orchestrator.Registration{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		CohortID:  input.CohortID,
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		ApplicantID: a.ID,
		Status:      string(a.Status),
		Phase:       string(a.Phase()),
	}, nil
}
