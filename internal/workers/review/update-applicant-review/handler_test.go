package updateapplicantreview

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
)

type fakeService struct {
	got models.ReviewUpdate
}

func (f *fakeService) UpdateReview(_ context.Context, id string, u models.ReviewUpdate) (*models.Applicant, error) {
	f.got = u
	a := &models.Applicant{ID: id, Rating: u.Rating}
	if u.AssignedTo != nil {
		a.AssignedTo = *u.AssignedTo
	}
	return a, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Run(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	vars := `{"applicantId":"a1","rating":2,"assignedTo":"admin-3"}`
	require.NoError(t, inputSchema.Validate(vars))

	out, err := h.run(context.Background(), vars)
	require.NoError(t, err)

	o := out.(*Output)
	require.NotNil(t, o.Rating)
	assert.Equal(t, 2, *o.Rating)
	assert.Equal(t, "admin-3", o.AssignedTo)
	assert.False(t, svc.got.ClearRating)
}

func TestHandler_Run_ClearRating(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	out, err := h.run(context.Background(), `{"applicantId":"a1","clearRating":true}`)
	require.NoError(t, err)
	assert.Nil(t, out.(*Output).Rating)
	assert.True(t, svc.got.ClearRating)
	assert.Nil(t, svc.got.AssignedTo)
}

func TestInputSchema(t *testing.T) {
	var verr *errors.ValidationError
	require.True(t, stderrors.As(inputSchema.Validate(`{"applicantId":"a1","rating":4}`), &verr))
	assert.Equal(t, "rating", verr.Field)

	require.True(t, stderrors.As(inputSchema.Validate(`{"applicantId":"a1","rating":0}`), &verr))
	assert.Equal(t, "rating", verr.Field)
}
