package analyzephase1application

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
	got models.Phase1Application
	out *orchestrator.Outcome
	err error
}

func (f *fakeService) SubmitPhase1(_ context.Context, app models.Phase1Application) (*orchestrator.Outcome, error) {
	f.got = app
	return f.out, f.err
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), svc, logger.NewTestLogger(t), observability.NewNoop())
}

const vars = `{
  "applicantId": "a1",
  "company": {"name": "Acme", "website": "https://acme.example", "founderCount": 2},
  "personal": {"firstName": "Dana", "email": "dana@acme.example", "linkedInUrl": "https://linkedin.com/in/dana"},
  "extended": {"serviceCountry": "", "militaryUnit": ""}
}`

func TestHandler_Run_HeldForReview(t *testing.T) {
	result := models.FlaggingResult{
		Flags:       []models.Flag{{Type: models.FlagRed, Field: "extended.serviceCountry", Message: "service country missing"}},
		NeedsReview: true,
	}
	svc := &fakeService{out: &orchestrator.Outcome{
		Applicant: &models.Applicant{ID: "a1", Status: models.StatusPhase1},
		From:      models.StatusPhase1,
		To:        models.StatusPhase1,
		Result:    &result,
	}}
	h := newTestHandler(t, svc)

	require.NoError(t, inputSchema.Validate(vars))
	out, err := h.run(context.Background(), vars)
	require.NoError(t, err)

	o := out.(*Output)
	assert.False(t, o.Advanced)
	assert.True(t, o.NeedsReview)
	assert.Equal(t, 1, o.RedFlags)
	assert.Equal(t, "SIGNUP", o.Phase)
	assert.Equal(t, 2, svc.got.Company.FounderCount)
	assert.Equal(t, "https://linkedin.com/in/dana", svc.got.Personal.LinkedInURL)
}

func TestHandler_Execute_Advanced(t *testing.T) {
	result := models.FlaggingResult{Flags: []models.Flag{}, AutoAdvance: true}
	h := newTestHandler(t, &fakeService{out: &orchestrator.Outcome{
		Applicant: &models.Applicant{ID: "a1", Status: models.StatusPhase2},
		From:      models.StatusPhase1,
		To:        models.StatusPhase2,
		Result:    &result,
	}})

	out, err := h.Execute(context.Background(), &Input{ApplicantID: "a1"})
	require.NoError(t, err)
	assert.True(t, out.Advanced)
	assert.Equal(t, "PHASE_2", out.Status)
	assert.Equal(t, "WEBINAR", out.Phase)
	assert.NotNil(t, out.Flags)
}

func TestHandler_Execute_WrongPhase(t *testing.T) {
	h := newTestHandler(t, &fakeService{err: &errors.PhaseProgressionError{FromStatus: "PHASE_3", Precondition: "PHASE_1 only"}})

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "a1"})
	var perr *errors.PhaseProgressionError
	assert.True(t, stderrors.As(err, &perr))
	assert.Equal(t, errors.ErrCodePhaseProgressionDenied, errors.Normalize(err).Code)
}

func TestInputSchema(t *testing.T) {
	err := inputSchema.Validate(`{"applicantId":"a1","company":{"founderCount":"two"},"personal":{},"extended":{}}`)
	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, "company.founderCount", verr.Field)
}
