package forcephasetransition

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
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
	"accelerator-portal/internal/service/orchestrator"
)

type fakeService struct {
	calls   int
	adminID string
	target  models.Status
	reason  string
}

func (f *fakeService) ForceTransition(_ context.Context, c lifecycle.AdminCapability, id string, target models.Status, reason string) (*orchestrator.Outcome, error) {
	f.calls++
	f.adminID = c.AdminID()
	f.target = target
	f.reason = reason
	return &orchestrator.Outcome{
		Applicant: &models.Applicant{ID: id, Status: target},
		From:      models.StatusPhase4Rejected,
		To:        target,
	}, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Run(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	vars := `{"applicantId":"a1","adminId":"admin-1","targetStatus":"PHASE_4","reason":"panel reversed decision"}`
	require.NoError(t, inputSchema.Validate(vars))

	out, err := h.run(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, &Output{
		ApplicantID:    "a1",
		PreviousStatus: "PHASE_4_REJECTED",
		Status:         "PHASE_4",
		Phase:          "INTERVIEW",
		Forced:         true,
	}, out)
	assert.Equal(t, "admin-1", svc.adminID)
	assert.Equal(t, "panel reversed decision", svc.reason)
}

func TestHandler_Execute_UnknownStatus(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "a1", AdminID: "admin-1", TargetStatus: "PHASE_9"})
	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, "targetStatus", verr.Field)
	assert.Zero(t, svc.calls)
}

func TestHandler_Execute_RequiresAdmin(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "a1", TargetStatus: "ACCEPTED"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAdminCapabilityRequired, errors.Normalize(err).Code)
	assert.Zero(t, svc.calls)
}

func TestInputSchema(t *testing.T) {
	var verr *errors.ValidationError
	require.True(t, stderrors.As(inputSchema.Validate(`{"applicantId":"a1","adminId":"admin-1","targetStatus":"phase 4"}`), &verr))
	assert.Equal(t, "targetStatus", verr.Field)
}
