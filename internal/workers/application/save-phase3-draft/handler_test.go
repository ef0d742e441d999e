package savephase3draft

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/config"
	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/models"
	"accelerator-portal/internal/service/orchestrator"
)

type fakeService struct {
	got models.Phase3Application
	err error
}

func (f *fakeService) SavePhase3Draft(_ context.Context, app models.Phase3Application) (*orchestrator.Outcome, error) {
	f.got = app
	if f.err != nil {
		return nil, f.err
	}
	return &orchestrator.Outcome{
		Applicant: &models.Applicant{ID: app.ApplicantID, Status: models.StatusPhase3InProgress, Version: 4},
		From:      models.StatusPhase3,
		To:        models.StatusPhase3InProgress,
	}, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Run(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	vars := `{"applicantId":"a1","team":{"capacity":"part_time"},"funding":{"equity":[{"name":"A","percentage":60,"category":"founder"}]}}`
	require.NoError(t, inputSchema.Validate(vars))

	out, err := h.run(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, &Output{ApplicantID: "a1", Status: "PHASE_3_IN_PROGRESS", Version: 4}, out)
	assert.Equal(t, "part_time", svc.got.Team.Capacity)
	require.Len(t, svc.got.Funding.Equity, 1)
	assert.Equal(t, models.EquityFounder, svc.got.Funding.Equity[0].Category)
}

func TestHandler_Execute_ClosedApplication(t *testing.T) {
	h := newTestHandler(t, &fakeService{err: &errors.PhaseProgressionError{FromStatus: "PHASE_3_SUBMITTED"}})

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "a1"})
	var perr *errors.PhaseProgressionError
	assert.True(t, stderrors.As(err, &perr))
}
