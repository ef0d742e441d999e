package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
)

// Interview actions accepted by SetInterviewOutcome.
const (
	InterviewActionSchedule = "schedule"
	InterviewActionComplete = "complete"
	InterviewActionPending  = "pending"
	InterviewActionAccepted = "accepted"
	InterviewActionRejected = "rejected"
)

var interviewActions = map[string]struct {
	action  lifecycle.Action
	outcome string
}{
	InterviewActionSchedule: {lifecycle.ActionScheduleInterview, models.InterviewScheduled},
	InterviewActionComplete: {lifecycle.ActionCompleteInterview, models.InterviewCompleted},
	InterviewActionPending:  {lifecycle.ActionOutcomePending, models.InterviewPending},
	InterviewActionAccepted: {lifecycle.ActionOutcomeAccepted, models.InterviewAccepted},
	InterviewActionRejected: {lifecycle.ActionOutcomeRejected, models.InterviewRejected},
}

type InterviewDecision struct {
	ApplicantID string
	AdminID     string
	Action      string
	ScheduledAt *time.Time
	Reason      string
}

// SetInterviewOutcome moves an applicant within the interview family. Any member of the
// family may move to any other, so an admin can correct a recorded outcome.
func (s *Service) SetInterviewOutcome(ctx context.Context, d InterviewDecision) (out *Outcome, err error) {
	ctx, span := s.span(ctx, "SetInterviewOutcome",
		attribute.String("applicantId", d.ApplicantID),
		attribute.String("action", d.Action))
	defer func() { finish(span, err) }()

	step, ok := interviewActions[d.Action]
	if !ok {
		return nil, errors.NewValidationError("action", "expected schedule, complete, pending, accepted or rejected")
	}
	if d.Action == InterviewActionSchedule && (d.ScheduledAt == nil || d.ScheduledAt.IsZero()) {
		return nil, errors.NewValidationError("scheduledAt", "scheduling requires a date")
	}

	a, err := s.applicants.Get(ctx, d.ApplicantID)
	if err != nil {
		return nil, err
	}
	tr, err := lifecycle.Apply(a.Status, step.action, lifecycle.Input{})
	if err != nil {
		return nil, err
	}

	var extra map[string]interface{}
	if d.ScheduledAt != nil {
		extra = map[string]interface{}{"scheduledAt": d.ScheduledAt.UTC().Format("Mon, 02 Jan 2006 15:04 MST")}
	}

	return s.commit(ctx, a, models.StateChange{
		NewStatus: tr.To,
		Interview: &models.Interview{
			ApplicantID:   a.ID,
			InterviewerID: a.InterviewerID,
			ScheduledAt:   d.ScheduledAt,
			Outcome:       step.outcome,
		},
	}, audited{kind: tr.Kind, actor: d.AdminID, reason: d.Reason}, extra)
}
