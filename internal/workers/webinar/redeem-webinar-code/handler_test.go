package redeemwebinarcode

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
	applicantID string
	code        string
	result      *orchestrator.Redemption
	err         error
}

func (f *fakeService) RedeemWebinarCode(_ context.Context, applicantID, code string) (*orchestrator.Redemption, error) {
	f.applicantID, f.code = applicantID, code
	return f.result, f.err
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Execute_Success(t *testing.T) {
	one := 1
	svc := &fakeService{result: &orchestrator.Redemption{
		Applicant: &models.Applicant{ID: "a1", Status: models.StatusPhase3, WebinarAttended: &one},
		CohortID:  "c1",
	}}
	h := newTestHandler(t, svc)

	out, err := h.Execute(context.Background(), &Input{ApplicantID: "a1", Code: "abc234"})
	require.NoError(t, err)
	assert.Equal(t, "a1", svc.applicantID)
	assert.Equal(t, "abc234", svc.code)
	assert.Equal(t, &Output{
		ApplicantID:     "a1",
		Status:          "PHASE_3",
		Phase:           "IN_DEPTH_APPLICATION",
		CohortID:        "c1",
		WebinarAttended: 1,
	}, out)
}

func TestHandler_Execute_AlreadyAttended(t *testing.T) {
	svc := &fakeService{err: &errors.AlreadyAttendedError{ApplicantID: "a1", WebinarAttended: 2}}
	h := newTestHandler(t, svc)

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "a1", Code: "ABC234"})
	require.Error(t, err)
	std := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeWebinarAlreadyAttended, std.Code)
	assert.False(t, std.Retryable)
}

func TestHandler_Run_DecodesVariables(t *testing.T) {
	one := 1
	svc := &fakeService{result: &orchestrator.Redemption{
		Applicant: &models.Applicant{ID: "a1", Status: models.StatusPhase3, WebinarAttended: &one},
	}}
	h := newTestHandler(t, svc)

	_, err := h.run(context.Background(), `{"applicantId":"a1","code":"XYZ789"}`)
	require.NoError(t, err)
	assert.Equal(t, "XYZ789", svc.code)

	_, err = h.run(context.Background(), `{"applicantId":`)
	var verr *errors.ValidationError
	assert.True(t, stderrors.As(err, &verr))
}

func TestInputSchema(t *testing.T) {
	assert.NoError(t, inputSchema.Validate(`{"applicantId":"a1","code":"ABC234"}`))

	err := inputSchema.Validate(`{"applicantId":"a1"}`)
	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, "code", verr.Field)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, int64(10e9), int64(LoadConfig(config.WorkerConfig{}).Timeout))
	assert.Equal(t, int64(2e9), int64(LoadConfig(config.WorkerConfig{Timeout: 2000}).Timeout))
}
