package scorephase3answer

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
	out *orchestrator.ScoreOutcome
	err error
}

func (f *fakeService) ScorePhase3Answer(context.Context, string) (*orchestrator.ScoreOutcome, error) {
	return f.out, f.err
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Run_Completed(t *testing.T) {
	h := newTestHandler(t, &fakeService{out: &orchestrator.ScoreOutcome{
		ApplicantID:  "a1",
		ScorerStatus: models.ScorerCompleted,
		Scorer:       &models.ScorerResult{Score: 8.5, IsSpecific: true},
		Reanalyzed:   true,
	}})

	out, err := h.run(context.Background(), `{"applicantId":"a1"}`)
	require.NoError(t, err)

	o := out.(*Output)
	assert.Equal(t, "completed", o.ScorerStatus)
	require.NotNil(t, o.Score)
	assert.InDelta(t, 8.5, *o.Score, 0.0001)
	assert.True(t, o.Reanalyzed)
}

func TestHandler_Execute_FailedScorerCompletes(t *testing.T) {
	h := newTestHandler(t, &fakeService{out: &orchestrator.ScoreOutcome{
		ApplicantID:  "a1",
		ScorerStatus: models.ScorerFailed,
	}})

	out, err := h.Execute(context.Background(), &Input{ApplicantID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "failed", out.ScorerStatus)
	assert.Nil(t, out.Score)
}

func TestHandler_Execute_Unconfigured(t *testing.T) {
	h := newTestHandler(t, &fakeService{err: errors.NewScorerUnavailableError(stderrors.New("no scorer configured"))})

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "a1"})
	assert.Equal(t, errors.ErrCodeScorerUnavailable, errors.Normalize(err).Code)
}

func TestInputSchema(t *testing.T) {
	var verr *errors.ValidationError
	require.True(t, stderrors.As(inputSchema.Validate(`{}`), &verr))
	assert.Equal(t, "applicantId", verr.Field)
}
