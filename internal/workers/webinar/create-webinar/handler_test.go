package createwebinar

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/config"
	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/models"
)

type fakeService struct {
	cohortID string
	at       time.Time
	err      error
}

func (f *fakeService) CreateWebinar(_ context.Context, cohortID string, at time.Time) (*models.Webinar, error) {
	f.cohortID, f.at = cohortID, at
	if f.err != nil {
		return nil, f.err
	}
	return &models.Webinar{Num: 3, Code: "QRS456", Timestamp: at, CohortID: cohortID}, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Run(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	out, err := h.run(context.Background(), `{"cohortId":"c1","timestamp":"2027-01-20T18:00:00Z"}`)
	require.NoError(t, err)
	assert.Equal(t, "c1", svc.cohortID)
	assert.Equal(t, time.Date(2027, 1, 20, 18, 0, 0, 0, time.UTC), svc.at)

	o := out.(*Output)
	assert.Equal(t, 3, o.Num)
	assert.Equal(t, "QRS456", o.Code)
}

func TestHandler_Execute_Exhausted(t *testing.T) {
	h := newTestHandler(t, &fakeService{err: errors.NewWebinarCodeExhaustedError(20)})

	_, err := h.Execute(context.Background(), &Input{CohortID: "c1", Timestamp: time.Now()})
	assert.Equal(t, errors.ErrCodeWebinarCodeExhausted, errors.Normalize(err).Code)
}

func TestInputSchema(t *testing.T) {
	err := inputSchema.Validate(`{"cohortId":"c1","timestamp":"next tuesday"}`)
	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, "timestamp", verr.Field)

	assert.Error(t, inputSchema.Validate(`{"timestamp":"2027-01-20T18:00:00Z"}`))
}
