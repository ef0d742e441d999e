package savecohort

import (
	"context"
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
	got models.Cohort
	err error
}

func (f *fakeService) SaveCohort(_ context.Context, c models.Cohort) (*models.Cohort, error) {
	f.got = c
	if f.err != nil {
		return nil, f.err
	}
	if c.ID == "" {
		c.ID = "c-new"
	}
	return &c, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

const createVars = `{
  "name": "Spring 2027",
  "applicationStartDate": "2027-01-01T00:00:00Z",
  "applicationEndDate": "2027-01-31T00:00:00Z",
  "programStartDate": "2027-03-01T00:00:00Z",
  "programEndDate": "2027-05-31T00:00:00Z"
}`

func TestHandler_Run_Create(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	require.NoError(t, inputSchema.Validate(createVars))
	out, err := h.run(context.Background(), createVars)
	require.NoError(t, err)

	o := out.(*Output)
	assert.Equal(t, "c-new", o.CohortID)
	assert.True(t, o.Created)
	assert.True(t, svc.got.IsActive)
	assert.Equal(t, 2027, svc.got.ProgramEnd.Year())
}

func TestHandler_Execute_UpdateInactive(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)
	inactive := false

	out, err := h.Execute(context.Background(), &Input{CohortID: "c1", Name: "Spring", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.False(t, svc.got.IsActive)
}

func TestHandler_Execute_Overlap(t *testing.T) {
	h := newTestHandler(t, &fakeService{err: &errors.OverlapError{ConflictingCohortID: "c0", Window: errors.WindowProgram}})

	_, err := h.Execute(context.Background(), &Input{Name: "Clash"})
	std := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeCohortOverlap, std.Code)
	assert.Equal(t, "c0", std.Metadata["conflictingCohortId"])
}

func TestInputSchema_RequiresAllDates(t *testing.T) {
	assert.Error(t, inputSchema.Validate(`{"name":"x","applicationStartDate":"2027-01-01T00:00:00Z"}`))
}
