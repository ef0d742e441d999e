// Package orchestrator drives applicants through the program lifecycle. It is the only
// component that combines the pure rules (flagging, lifecycle, cohort, webinar) with
// storage, identity, scoring, search and notification side effects.
package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/metrics"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/lifecycle"
	"accelerator-portal/internal/models"
	"accelerator-portal/internal/notify"
	"accelerator-portal/internal/reviewindex"
)

// CohortLockKey serializes every cohort create/update and webinar creation.
const CohortLockKey = "lock:cohorts"

const defaultCodeAttempts = 20

type ApplicantStore interface {
	Create(ctx context.Context, a *models.Applicant) error
	Get(ctx context.Context, id string) (*models.Applicant, error)
	GetByEmail(ctx context.Context, email string) (*models.Applicant, error)
	Transition(ctx context.Context, ch models.StateChange) (*models.Applicant, error)
	UpdateReview(ctx context.Context, id string, u models.ReviewUpdate) (*models.Applicant, error)
}

type ApplicationStore interface {
	GetPhase1(ctx context.Context, applicantID string) (*models.Phase1Application, error)
	GetPhase3(ctx context.Context, applicantID string) (*models.Phase3Application, error)
	SaveScorerResult(ctx context.Context, applicantID string, result *models.ScorerResult, status models.ScorerStatus) error
}

type CohortStore interface {
	List(ctx context.Context) ([]models.Cohort, error)
	Get(ctx context.Context, id string) (*models.Cohort, error)
	Create(ctx context.Context, c *models.Cohort) error
	Update(ctx context.Context, c *models.Cohort) error
}

type SettingsStore interface {
	Get(ctx context.Context) (models.SystemSettings, error)
	Update(ctx context.Context, s models.SystemSettings) (models.SystemSettings, error)
}

type Notifier interface {
	Send(ctx context.Context, a *models.Applicant, template string, extra map[string]interface{}) (*models.Notification, error)
}

type ReviewIndex interface {
	Index(ctx context.Context, entry models.ReviewEntry) error
	Remove(ctx context.Context, applicantID string) error
}

type Scorer interface {
	Score(ctx context.Context, text string) (*models.ScorerResult, error)
}

type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password, firstName, lastName string) (string, error)
}

type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Dependencies are the collaborators of a Service. Identity, Scorer, Notifier and
// Reviews may be nil; the related side effect is then skipped.
type Dependencies struct {
	Applicants   ApplicantStore
	Applications ApplicationStore
	Cohorts      CohortStore
	Settings     SettingsStore
	Locker       Locker
	Identity     IdentityProvider
	Scorer       Scorer
	Notifier     Notifier
	Reviews      ReviewIndex
	Logger       logger.Logger
	Obs          *observability.Observability
}

type Options struct {
	WebinarCodeAttempts int
}

type Service struct {
	applicants   ApplicantStore
	applications ApplicationStore
	cohorts      CohortStore
	settings     SettingsStore
	locker       Locker
	identity     IdentityProvider
	scorer       Scorer
	notifier     Notifier
	reviews      ReviewIndex
	logger       logger.Logger
	obs          *observability.Observability
	codeAttempts int
	now          func() time.Time
}

func New(deps Dependencies, opts Options) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	attempts := opts.WebinarCodeAttempts
	if attempts <= 0 {
		attempts = defaultCodeAttempts
	}
	return &Service{
		applicants:   deps.Applicants,
		applications: deps.Applications,
		cohorts:      deps.Cohorts,
		settings:     deps.Settings,
		locker:       deps.Locker,
		identity:     deps.Identity,
		scorer:       deps.Scorer,
		notifier:     deps.Notifier,
		reviews:      deps.Reviews,
		logger:       log.With(map[string]interface{}{"component": "orchestrator"}),
		obs:          deps.Obs,
		codeAttempts: attempts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Outcome describes what one operation did to an applicant.
type Outcome struct {
	Applicant *models.Applicant      `json:"applicant"`
	From      models.Status          `json:"fromStatus"`
	To        models.Status          `json:"toStatus"`
	Result    *models.FlaggingResult `json:"result,omitempty"`
}

// Changed reports whether the status moved.
func (o *Outcome) Changed() bool {
	return o.From != o.To
}

// audited carries the provenance written to the status history.
type audited struct {
	kind   models.TransitionKind
	actor  string
	reason string
}

// commit writes ch against a's current status and version. The status audit is attached
// only when the status moves. Successful moves are counted, logged and announced.
func (s *Service) commit(ctx context.Context, a *models.Applicant, ch models.StateChange, prov audited, extra map[string]interface{}) (*Outcome, error) {
	ch.ApplicantID = a.ID
	ch.ExpectedStatus = a.Status
	ch.ExpectedVersion = a.Version
	if ch.NewStatus == "" {
		ch.NewStatus = a.Status
	}
	if ch.NewStatus != a.Status {
		ch.Audit = &models.StatusAudit{
			ApplicantID: a.ID,
			FromStatus:  a.Status,
			ToStatus:    ch.NewStatus,
			Kind:        prov.kind,
			Actor:       prov.actor,
			Reason:      prov.reason,
			At:          s.now(),
		}
	}

	updated, err := s.applicants.Transition(ctx, ch)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Applicant: updated, From: a.Status, To: updated.Status, Result: ch.Result}
	if out.Changed() {
		metrics.PhaseTransitions.WithLabelValues(string(out.From), string(out.To), string(prov.kind)).Inc()
		s.logger.Info("applicant status changed", map[string]interface{}{
			"applicantId": a.ID,
			"fromStatus":  out.From,
			"toStatus":    out.To,
			"kind":        prov.kind,
			"actor":       prov.actor,
		})
		s.announce(ctx, updated, notify.TemplateFor(out.From, out.To), extra)
	}
	return out, nil
}

// announce sends template to the applicant. Delivery problems never undo a transition.
func (s *Service) announce(ctx context.Context, a *models.Applicant, template string, extra map[string]interface{}) {
	if s.notifier == nil || template == "" {
		return
	}
	if _, err := s.notifier.Send(ctx, a, template, extra); err != nil {
		s.logger.Warn("notification failed", map[string]interface{}{
			"error":       err.Error(),
			"applicantId": a.ID,
			"template":    template,
		})
	}
}

// syncReview keeps the admin review queue in step with the latest rule engine pass.
func (s *Service) syncReview(ctx context.Context, a *models.Applicant, result models.FlaggingResult) {
	if s.reviews == nil {
		return
	}
	var err error
	if result.NeedsReview {
		err = s.reviews.Index(ctx, reviewindex.EntryFor(a, result, s.now()))
	} else {
		err = s.reviews.Remove(ctx, a.ID)
	}
	if err != nil {
		s.logger.Warn("review index update failed", map[string]interface{}{
			"error":       err.Error(),
			"applicantId": a.ID,
		})
	}
}

func (s *Service) dropReview(ctx context.Context, applicantID string) {
	if s.reviews == nil {
		return
	}
	if err := s.reviews.Remove(ctx, applicantID); err != nil {
		s.logger.Warn("review index removal failed", map[string]interface{}{
			"error":       err.Error(),
			"applicantId": applicantID,
		})
	}
}

func (s *Service) currentSettings(ctx context.Context) (lifecycle.Settings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return lifecycle.Settings{}, err
	}
	return lifecycle.SettingsFrom(st), nil
}

func (s *Service) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.obs.StartSpan(ctx, "orchestrator."+name, attrs...)
}

// finish records err on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.Normalize(err).Code))
	}
	span.End()
}

func countFlags(phase models.Phase, result models.FlaggingResult) {
	for _, f := range result.Flags {
		metrics.FlagsRaised.WithLabelValues(string(phase), string(f.Type)).Inc()
	}
}
