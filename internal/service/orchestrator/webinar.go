package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/metrics"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
	"accelerator-portal/internal/webinar"
)

// Redemption results, as counted.
const (
	redeemOK          = "redeemed"
	redeemInvalid     = "invalid"
	redeemUnknownCode = "not_found"
	redeemDuplicate   = "already_attended"
	redeemDenied      = "denied"
	redeemConflict    = "conflict"
	redeemError       = "error"
)

type Redemption struct {
	Applicant *models.Applicant `json:"applicant"`
	Webinar   models.Webinar    `json:"webinar"`
	CohortID  string            `json:"cohortId"`
}

// RedeemWebinarCode records attendance and promotes PHASE_2 to PHASE_3 in one conditional
// write. Of several concurrent redemptions for one applicant exactly one succeeds; the
// others see AlreadyAttendedError.
func (s *Service) RedeemWebinarCode(ctx context.Context, applicantID, code string) (r *Redemption, err error) {
	ctx, span := s.span(ctx, "RedeemWebinarCode", attribute.String("applicantId", applicantID))
	defer func() { finish(span, err) }()

	result := redeemError
	defer func() { metrics.WebinarRedemptions.WithLabelValues(result).Inc() }()

	code = webinar.Normalize(code)
	if err := webinar.ValidateShape(code); err != nil {
		result = redeemInvalid
		return nil, err
	}

	cohorts, err := s.cohorts.List(ctx)
	if err != nil {
		return nil, err
	}
	match, ok := webinar.Find(cohorts, code)
	if !ok {
		result = redeemUnknownCode
		return nil, errors.NewNotFoundError("webinar", code)
	}

	a, err := s.applicants.Get(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if redeemed(a) {
		result = redeemDuplicate
		return nil, &errors.AlreadyAttendedError{ApplicantID: a.ID, WebinarAttended: *a.WebinarAttended}
	}

	tr, err := lifecycle.Apply(a.Status, lifecycle.ActionRedeemWebinar, lifecycle.Input{})
	if err != nil {
		result = redeemDenied
		return nil, err
	}

	num := match.Webinar.Num
	out, err := s.commit(ctx, a, models.StateChange{
		NewStatus:       tr.To,
		WebinarAttended: &num,
		Attendance: &models.WebinarAttendance{
			ApplicantID: a.ID,
			CohortID:    match.Cohort.ID,
			WebinarNum:  num,
			Code:        code,
			AttendedAt:  s.now(),
		},
	}, audited{kind: tr.Kind}, nil)
	if err != nil {
		if !errors.IsConflict(err) {
			return nil, err
		}
		// Lost the race; tell a duplicate apart from an unrelated concurrent change.
		fresh, getErr := s.applicants.Get(ctx, applicantID)
		if getErr == nil && redeemed(fresh) {
			result = redeemDuplicate
			return nil, &errors.AlreadyAttendedError{ApplicantID: fresh.ID, WebinarAttended: *fresh.WebinarAttended}
		}
		result = redeemConflict
		return nil, err
	}

	result = redeemOK
	s.logger.Info("webinar code redeemed", map[string]interface{}{
		"applicantId": a.ID,
		"cohortId":    match.Cohort.ID,
		"webinarNum":  num,
	})
	return &Redemption{Applicant: out.Applicant, Webinar: match.Webinar, CohortID: match.Cohort.ID}, nil
}

// redeemed reports a completed redemption. Attendance recorded without the promotion
// is incomplete and may be retried.
func redeemed(a *models.Applicant) bool {
	return a.WebinarAttended != nil && a.Phase().AtLeast(models.PhaseInDepthApplication)
}

// CreateWebinar appends a webinar with a fresh code, unique across all cohorts.
func (s *Service) CreateWebinar(ctx context.Context, cohortID string, at time.Time) (w *models.Webinar, err error) {
	ctx, span := s.span(ctx, "CreateWebinar", attribute.String("cohortId", cohortID))
	defer func() { finish(span, err) }()

	if at.IsZero() {
		return nil, errors.NewValidationError("timestamp", "webinar time is required")
	}

	release, err := s.locker.Acquire(ctx, CohortLockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	cohorts, err := s.cohorts.List(ctx)
	if err != nil {
		return nil, err
	}
	c := findCohort(cohorts, cohortID)
	if c == nil {
		return nil, errors.NewNotFoundError("cohort", cohortID)
	}

	code, err := webinar.Generate(cohorts, s.codeAttempts)
	if err != nil {
		return nil, err
	}

	created := models.Webinar{
		Num:       webinar.NextNum(*c),
		Code:      code,
		Timestamp: at.UTC(),
		CohortID:  c.ID,
	}
	c.Webinars = append(c.Webinars, created)
	if err := s.cohorts.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("webinar created", map[string]interface{}{
		"cohortId":   c.ID,
		"webinarNum": created.Num,
	})
	return &created, nil
}
