package orchestrator

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel/attribute"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/flagging"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
)

// SavePhase3Draft stores a partial in-depth application. The first save moves PHASE_3 to
// PHASE_3_IN_PROGRESS; later saves keep the status. Drafts are not flagged.
func (s *Service) SavePhase3Draft(ctx context.Context, app models.Phase3Application) (out *Outcome, err error) {
	ctx, span := s.span(ctx, "SavePhase3Draft", attribute.String("applicantId", app.ApplicantID))
	defer func() { finish(span, err) }()

	a, err := s.applicants.Get(ctx, app.ApplicantID)
	if err != nil {
		return nil, err
	}
	tr, err := lifecycle.Apply(a.Status, lifecycle.ActionSaveDraft, lifecycle.Input{})
	if err != nil {
		return nil, err
	}

	app.Status = models.Phase3Draft
	app.SubmittedAt = nil
	app.Flags = nil

	return s.commit(ctx, a, models.StateChange{
		NewStatus: tr.To,
		Phase3:    &app,
	}, audited{kind: tr.Kind}, nil)
}

// SubmitPhase3 runs the Phase-3 rules over the submitted application. The result always
// needs review, so the applicant stops at PHASE_3_SUBMITTED until an admin decides.
func (s *Service) SubmitPhase3(ctx context.Context, app models.Phase3Application) (out *Outcome, err error) {
	ctx, span := s.span(ctx, "SubmitPhase3", attribute.String("applicantId", app.ApplicantID))
	defer func() { finish(span, err) }()

	a, err := s.applicants.Get(ctx, app.ApplicantID)
	if err != nil {
		return nil, err
	}
	tr, err := lifecycle.Apply(a.Status, lifecycle.ActionSubmit, lifecycle.Input{})
	if err != nil {
		return nil, err
	}

	if app.Scorer == nil {
		stored, err := s.applications.GetPhase3(ctx, a.ID)
		switch {
		case err == nil:
			app.Scorer = stored.Scorer
			app.ScorerStatus = stored.ScorerStatus
		case !errors.IsNotFound(err):
			return nil, err
		}
	}

	result := flagging.AnalyzePhase3(app)
	countFlags(models.PhaseInDepthApplication, result)

	settings, err := s.currentSettings(ctx)
	if err != nil {
		return nil, err
	}
	next, err := lifecycle.NextPhase(tr.To, result, settings)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	app.Status = models.Phase3Submitted
	app.SubmittedAt = &submittedAt
	app.Flags = result.Flags

	out, err = s.commit(ctx, a, models.StateChange{
		NewStatus: next,
		Result:    &result,
		Phase3:    &app,
	}, audited{kind: tr.Kind}, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("phase 3 evaluated", map[string]interface{}{
		"applicantId": a.ID,
		"toStatus":    out.To,
		"yellowFlags": result.Count(models.FlagYellow),
		"scored":      app.Scorer != nil,
	})
	s.syncReview(ctx, out.Applicant, result)
	return out, nil
}

// ScoreOutcome reports the scorer pass over the problem/customer answer.
type ScoreOutcome struct {
	ApplicantID  string               `json:"applicantId"`
	ScorerStatus models.ScorerStatus  `json:"scorerStatus"`
	Scorer       *models.ScorerResult `json:"scorer,omitempty"`
	Reanalyzed   bool                 `json:"reanalyzed"`
}

// ScorePhase3Answer sends the problem/customer answer to the external scorer. A scorer
// failure is recorded as failed and not returned: the application stays evaluable and
// the missing score is flagged. An application still awaiting the admin decision is
// re-flagged with the new score; anything decided meanwhile is left as it is.
func (s *Service) ScorePhase3Answer(ctx context.Context, applicantID string) (out *ScoreOutcome, err error) {
	ctx, span := s.span(ctx, "ScorePhase3Answer", attribute.String("applicantId", applicantID))
	defer func() { finish(span, err) }()

	app, err := s.applications.GetPhase3(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if s.scorer == nil {
		return nil, errors.NewScorerUnavailableError(stderrors.New("no scorer configured"))
	}

	if err := s.applications.SaveScorerResult(ctx, applicantID, app.Scorer, models.ScorerPending); err != nil {
		return nil, err
	}

	out = &ScoreOutcome{ApplicantID: applicantID}
	scored, scoreErr := s.scorer.Score(ctx, app.Product.ProblemAndCustomer)
	if scoreErr != nil {
		s.logger.Warn("scorer failed", map[string]interface{}{
			"error":       scoreErr.Error(),
			"applicantId": applicantID,
		})
		if err := s.applications.SaveScorerResult(ctx, applicantID, app.Scorer, models.ScorerFailed); err != nil {
			return nil, err
		}
		out.ScorerStatus = models.ScorerFailed
		out.Scorer = app.Scorer
		return out, nil
	}

	if err := s.applications.SaveScorerResult(ctx, applicantID, scored, models.ScorerCompleted); err != nil {
		return nil, err
	}
	out.ScorerStatus = models.ScorerCompleted
	out.Scorer = scored

	for attempt := 1; ; attempt++ {
		reanalyzed, err := s.reflag(ctx, applicantID, scored)
		if err == nil {
			out.Reanalyzed = reanalyzed
			return out, nil
		}
		if !errors.IsConflict(err) || attempt == reflagAttempts {
			return nil, err
		}
	}
}

const reflagAttempts = 3

// reflag re-runs the Phase-3 rules with a fresh score. It only touches an application
// still awaiting the admin decision; the applicant is read before the document so the
// version check in the write also covers any document change made meanwhile.
func (s *Service) reflag(ctx context.Context, applicantID string, scored *models.ScorerResult) (bool, error) {
	a, err := s.applicants.Get(ctx, applicantID)
	if err != nil {
		return false, err
	}
	if a.Status != models.StatusPhase3Submitted {
		return false, nil
	}
	app, err := s.applications.GetPhase3(ctx, applicantID)
	if err != nil {
		return false, err
	}
	if app.Status != models.Phase3Submitted {
		return false, nil
	}

	app.Scorer = scored
	app.ScorerStatus = models.ScorerCompleted
	result := flagging.AnalyzePhase3(*app)
	app.Flags = result.Flags

	// Same status, so no audit row and no notification.
	reflagged, err := s.commit(ctx, a, models.StateChange{
		Result: &result,
		Phase3: app,
	}, audited{kind: models.TransitionAuto}, nil)
	if err != nil {
		return false, err
	}
	s.syncReview(ctx, reflagged.Applicant, result)
	return true, nil
}

// Phase3Decision is an admin decision on a submitted in-depth application.
type Phase3Decision struct {
	ApplicantID   string
	AdminID       string
	Action        lifecycle.Action
	InterviewerID string
	Reason        string
}

// ReviewPhase3 applies reject, reopen or advance_to_interview. Advancing creates the
// interview record and assigns the interviewer in the same write.
func (s *Service) ReviewPhase3(ctx context.Context, d Phase3Decision) (out *Outcome, err error) {
	ctx, span := s.span(ctx, "ReviewPhase3",
		attribute.String("applicantId", d.ApplicantID),
		attribute.String("action", string(d.Action)))
	defer func() { finish(span, err) }()

	switch d.Action {
	case lifecycle.ActionReject, lifecycle.ActionReopen, lifecycle.ActionAdvanceToInterview:
	default:
		return nil, errors.NewValidationError("action", "expected reject, reopen or advance_to_interview")
	}

	a, err := s.applicants.Get(ctx, d.ApplicantID)
	if err != nil {
		return nil, err
	}
	tr, err := lifecycle.Apply(a.Status, d.Action, lifecycle.Input{InterviewerID: d.InterviewerID})
	if err != nil {
		return nil, err
	}

	ch := models.StateChange{NewStatus: tr.To}
	switch d.Action {
	case lifecycle.ActionAdvanceToInterview:
		interviewer := d.InterviewerID
		ch.InterviewerID = &interviewer
		ch.Interview = &models.Interview{
			ApplicantID:   a.ID,
			InterviewerID: interviewer,
			Outcome:       models.InterviewPending,
		}
	case lifecycle.ActionReject, lifecycle.ActionReopen:
		app, err := s.applications.GetPhase3(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if d.Action == lifecycle.ActionReject {
			app.Status = models.Phase3Rejected
		} else {
			app.Status = models.Phase3Draft
			app.SubmittedAt = nil
		}
		ch.Phase3 = app
	}

	var extra map[string]interface{}
	if d.Reason != "" {
		extra = map[string]interface{}{"reason": d.Reason}
	}
	out, err = s.commit(ctx, a, ch, audited{kind: tr.Kind, actor: d.AdminID, reason: d.Reason}, extra)
	if err != nil {
		return nil, err
	}
	s.dropReview(ctx, a.ID)
	return out, nil
}
