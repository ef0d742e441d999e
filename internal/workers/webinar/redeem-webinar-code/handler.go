package redeemwebinarcode

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"accelerator-portal/internal/common/camunda"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
	"accelerator-portal/internal/service/orchestrator"
)

const (
	TaskType = "redeem-webinar-code"
)

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)

type Service interface {
	RedeemWebinarCode(ctx context.Context, applicantID, code string) (*orchestrator.Redemption, error)
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

// Execute redeems the code. Duplicate redemptions surface as WEBINAR_ALREADY_ATTENDED
// so the process can branch on them instead of retrying.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	r, err := h.service.RedeemWebinarCode(ctx, input.ApplicantID, input.Code)
	if err != nil {
		return nil, err
	}

	out := &Output{
		ApplicantID: r.Applicant.ID,
		Status:      string(r.Applicant.Status),
		Phase:       string(r.Applicant.Phase()),
		CohortID:    r.CohortID,
	}
	if r.Applicant.WebinarAttended != nil {
		out.WebinarAttended = *r.Applicant.WebinarAttended
	}
	return out, nil
}
