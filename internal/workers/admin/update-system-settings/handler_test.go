package updatesystemsettings

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
	calls int
}

func (f *fakeService) UpdateSettings(_ context.Context, adminID string, skip bool) (models.SystemSettings, error) {
	f.calls++
	return models.SystemSettings{
		SkipPhase2: skip,
		UpdatedAt:  time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		UpdatedBy:  adminID,
	}, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

func TestHandler_Run(t *testing.T) {
	h := newTestHandler(t, &fakeService{})

	vars := `{"adminId":"admin-1","skipPhase2":false}`
	require.NoError(t, inputSchema.Validate(vars))

	out, err := h.run(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, &Output{SkipPhase2: false, UpdatedAt: "2026-10-18T09:30:00Z", UpdatedBy: "admin-1"}, out)
}

func TestHandler_Execute_MissingSwitch(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(t, svc)

	_, err := h.Execute(context.Background(), &Input{AdminID: "admin-1"})
	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, "skipPhase2", verr.Field)
	assert.Zero(t, svc.calls)
}

func TestInputSchema(t *testing.T) {
	var verr *errors.ValidationError
	require.True(t, stderrors.As(inputSchema.Validate(`{"adminId":"admin-1","skipPhase2":"yes"}`), &verr))
	assert.Equal(t, "skipPhase2", verr.Field)
}
