package orchestrator

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/flagging"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
)

type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	CohortID  string
}

// RegisterApplicant creates the identity and the PHASE_1 applicant. Registering an email
// twice returns the existing applicant.
func (s *Service) RegisterApplicant(ctx context.Context, r Registration) (a *models.Applicant, err error) {
	ctx, span := s.span(ctx, "RegisterApplicant")
	defer func() { finish(span, err) }()

	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" {
		return nil, errors.NewValidationError("email", "email is required")
	}

	existing, err := s.applicants.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("applicant already registered", map[string]interface{}{"applicantId": existing.ID})
		return existing, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	a = &models.Applicant{
		Email:     email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		CohortID:  r.CohortID,
		Status:    models.StatusPhase1,
		Flags:     []models.Flag{},
	}

	if s.identity != nil {
		id, err := s.identity.CreateIdentity(ctx, email, r.Password, r.FirstName, r.LastName)
		if err != nil {
			return nil, err
		}
		a.ID = id
	}

	if err := s.applicants.Create(ctx, a); err != nil {
		if errors.IsConflict(err) {
			return s.applicants.GetByEmail(ctx, email)
		}
		return nil, err
	}

	s.logger.Info("applicant registered", map[string]interface{}{
		"applicantId": a.ID,
		"status":      a.Status,
	})
	return a, nil
}

// SubmitPhase1 stores the signup answers, runs the Phase-1 rules and applies the only
// automatic edge in the graph. Red flags hold the applicant in PHASE_1 for review.
func (s *Service) SubmitPhase1(ctx context.Context, app models.Phase1Application) (out *Outcome, err error) {
	ctx, span := s.span(ctx, "SubmitPhase1", attribute.String("applicantId", app.ApplicantID))
	defer func() { finish(span, err) }()

	a, err := s.applicants.Get(ctx, app.ApplicantID)
	if err != nil {
		return nil, err
	}

	settings, err := s.currentSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Expect(a.Status, lifecycle.SignupTarget(settings),
		"signup answers are evaluated only in PHASE_1", models.StatusPhase1); err != nil {
		return nil, err
	}

	result := flagging.AnalyzePhase1(app)
	countFlags(models.PhaseSignup, result)

	next, err := lifecycle.NextPhase(a.Status, result, settings)
	if err != nil {
		return nil, err
	}

	app.Flags = result.Flags
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = s.now()
	}

	out, err = s.commit(ctx, a, models.StateChange{
		NewStatus: next,
		Result:    &result,
		Phase1:    &app,
	}, audited{kind: models.TransitionAuto}, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("phase 1 evaluated", map[string]interface{}{
		"applicantId": a.ID,
		"fromStatus":  out.From,
		"toStatus":    out.To,
		"redFlags":    result.Count(models.FlagRed),
		"yellowFlags": result.Count(models.FlagYellow),
		"needsReview": result.NeedsReview,
	})

	s.syncReview(ctx, out.Applicant, result)
	if !out.Changed() {
		s.announce(ctx, out.Applicant, models.TemplatePhase1UnderReview, nil)
	}
	return out, nil
}
