package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
)

// ForceTransition moves the applicant to target regardless of guards, including out of
// terminal states. The audit row is mandatory for this path.
func (s *Service) ForceTransition(ctx context.Context, c lifecycle.AdminCapability, applicantID string, target models.Status, reason string) (out *Outcome, err error) {
	ctx, span := s.span(ctx, "ForceTransition",
		attribute.String("applicantId", applicantID),
		attribute.String("targetStatus", string(target)))
	defer func() { finish(span, err) }()

	a, err := s.applicants.Get(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	ft, err := lifecycle.Force(a.Status, target, c, reason)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("forcing applicant status", map[string]interface{}{
		"applicantId": a.ID,
		"fromStatus":  ft.From,
		"toStatus":    ft.To,
		"adminId":     ft.AdminID,
		"reason":      ft.Reason,
	})

	var extra map[string]interface{}
	if reason != "" {
		extra = map[string]interface{}{"reason": reason}
	}
	out, err = s.commit(ctx, a, models.StateChange{NewStatus: ft.To},
		audited{kind: models.TransitionForced, actor: ft.AdminID, reason: ft.Reason}, extra)
	if err != nil {
		return nil, err
	}
	if a.Status == models.StatusPhase1 || a.Status == models.StatusPhase3Submitted {
		s.dropReview(ctx, a.ID)
	}
	return out, nil
}

// UpdateReview sets the admin rating (1-3, or cleared) and assignee.
func (s *Service) UpdateReview(ctx context.Context, applicantID string, u models.ReviewUpdate) (a *models.Applicant, err error) {
	ctx, span := s.span(ctx, "UpdateReview", attribute.String("applicantId", applicantID))
	defer func() { finish(span, err) }()

	if u.Rating != nil && !u.ClearRating && (*u.Rating < 1 || *u.Rating > 3) {
		return nil, errors.NewValidationError("rating", "rating must be 1, 2 or 3")
	}
	if u.Rating == nil && !u.ClearRating && u.AssignedTo == nil {
		return nil, errors.NewValidationError("review", "nothing to update")
	}
	return s.applicants.UpdateReview(ctx, applicantID, u)
}

// UpdateSettings stores the global switches. Only decisions made afterwards see them.
func (s *Service) UpdateSettings(ctx context.Context, adminID string, skipPhase2 bool) (st models.SystemSettings, err error) {
	ctx, span := s.span(ctx, "UpdateSettings")
	defer func() { finish(span, err) }()

	st, err = s.settings.Update(ctx, models.SystemSettings{
		SkipPhase2: skipPhase2,
		UpdatedAt:  s.now(),
		UpdatedBy:  adminID,
	})
	if err != nil {
		return models.SystemSettings{}, err
	}
	s.logger.Info("system settings updated", map[string]interface{}{
		"skipPhase2": st.SkipPhase2,
		"updatedBy":  adminID,
	})
	return st, nil
}

// SendNotification delivers a named template on request. Unlike the notifications
// that follow transitions, failures here are returned to the caller.
func (s *Service) SendNotification(ctx context.Context, applicantID, template string, data map[string]interface{}) (n *models.Notification, err error) {
	ctx, span := s.span(ctx, "SendNotification",
		attribute.String("applicantId", applicantID),
		attribute.String("template", template))
	defer func() { finish(span, err) }()

	if s.notifier == nil {
		return nil, errors.NewValidationError("template", "notifications are not configured")
	}
	a, err := s.applicants.Get(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	return s.notifier.Send(ctx, a, template, data)
}
