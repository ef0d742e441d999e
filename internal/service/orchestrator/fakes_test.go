package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/lock"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/models"
)

// memDB is an in-memory applicant and application store with the same conditional
// write semantics as the Postgres repository.
type memDB struct {
	mu         sync.Mutex
	applicants map[string]models.Applicant
	phase1     map[string]models.Phase1Application
	phase3     map[string]models.Phase3Application
	interviews map[string]models.Interview
	attendance []models.WebinarAttendance
	audits     []models.StatusAudit
	scorerLog  []models.ScorerStatus

	transitionErr error
}

func newMemDB() *memDB {
	return &memDB{
		applicants: map[string]models.Applicant{},
		phase1:     map[string]models.Phase1Application{},
		phase3:     map[string]models.Phase3Application{},
		interviews: map[string]models.Interview{},
	}
}

func (m *memDB) put(a models.Applicant) *models.Applicant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Version == 0 {
		a.Version = 1
	}
	m.applicants[a.ID] = a
	return &a
}

func (m *memDB) Create(_ context.Context, a *models.Applicant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.applicants {
		if existing.Email == a.Email {
			return errors.NewConflictError("applicant", a.Email)
		}
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Version = 1
	m.applicants[a.ID] = *a
	return nil
}

func (m *memDB) Get(_ context.Context, id string) (*models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applicants[id]
	if !ok {
		return nil, errors.NewNotFoundError("applicant", id)
	}
	return &a, nil
}

func (m *memDB) GetByEmail(_ context.Context, email string) (*models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applicants {
		if a.Email == strings.ToLower(email) {
			return &a, nil
		}
	}
	return nil, errors.NewNotFoundError("applicant", email)
}

func (m *memDB) Transition(_ context.Context, ch models.StateChange) (*models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}

	a, ok := m.applicants[ch.ApplicantID]
	if !ok {
		return nil, errors.NewNotFoundError("applicant", ch.ApplicantID)
	}
	if a.Status != ch.ExpectedStatus || a.Version != ch.ExpectedVersion {
		return nil, errors.NewConflictError("applicant", ch.ApplicantID)
	}

	a.Status = ch.NewStatus
	a.Version++
	if ch.Result != nil {
		a.Flags = ch.Result.Flags
		a.NeedsReview = ch.Result.NeedsReview
	}
	if ch.WebinarAttended != nil {
		n := *ch.WebinarAttended
		a.WebinarAttended = &n
	}
	if ch.InterviewerID != nil {
		a.InterviewerID = *ch.InterviewerID
	}
	m.applicants[a.ID] = a

	if ch.Attendance != nil {
		m.attendance = append(m.attendance, *ch.Attendance)
	}
	if ch.Phase1 != nil {
		m.phase1[a.ID] = *ch.Phase1
	}
	if ch.Phase3 != nil {
		app := *ch.Phase3
		if stored, ok := m.phase3[a.ID]; ok {
			app.Scorer = stored.Scorer
			app.ScorerStatus = stored.ScorerStatus
		}
		m.phase3[a.ID] = app
	}
	if ch.Interview != nil {
		iv := *ch.Interview
		if prev, ok := m.interviews[a.ID]; ok {
			if iv.InterviewerID == "" {
				iv.InterviewerID = prev.InterviewerID
			}
			if iv.ScheduledAt == nil {
				iv.ScheduledAt = prev.ScheduledAt
			}
		}
		m.interviews[a.ID] = iv
	}
	if ch.Audit != nil {
		m.audits = append(m.audits, *ch.Audit)
	}
	return &a, nil
}

func (m *memDB) UpdateReview(_ context.Context, id string, u models.ReviewUpdate) (*models.Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applicants[id]
	if !ok {
		return nil, errors.NewNotFoundError("applicant", id)
	}
	switch {
	case u.ClearRating:
		a.Rating = nil
	case u.Rating != nil:
		r := *u.Rating
		a.Rating = &r
	}
	if u.AssignedTo != nil {
		a.AssignedTo = *u.AssignedTo
	}
	m.applicants[id] = a
	return &a, nil
}

func (m *memDB) GetPhase1(_ context.Context, id string) (*models.Phase1Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.phase1[id]
	if !ok {
		return nil, errors.NewNotFoundError("phase1 application", id)
	}
	return &app, nil
}

func (m *memDB) GetPhase3(_ context.Context, id string) (*models.Phase3Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.phase3[id]
	if !ok {
		return nil, errors.NewNotFoundError("phase3 application", id)
	}
	return &app, nil
}

func (m *memDB) SaveScorerResult(_ context.Context, id string, result *models.ScorerResult, status models.ScorerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.phase3[id]
	if !ok {
		return errors.NewNotFoundError("phase3 application", id)
	}
	app.Scorer = result
	app.ScorerStatus = status
	m.phase3[id] = app
	m.scorerLog = append(m.scorerLog, status)
	return nil
}

func (m *memDB) audit() []models.StatusAudit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StatusAudit(nil), m.audits...)
}

type memCohorts struct {
	mu      sync.Mutex
	cohorts []models.Cohort
	writes  int
}

func (c *memCohorts) List(context.Context) ([]models.Cohort, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Cohort, len(c.cohorts))
	for i, co := range c.cohorts {
		co.Webinars = append([]models.Webinar(nil), co.Webinars...)
		out[i] = co
	}
	return out, nil
}

func (c *memCohorts) Get(_ context.Context, id string) (*models.Cohort, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, co := range c.cohorts {
		if co.ID == id {
			return &co, nil
		}
	}
	return nil, errors.NewNotFoundError("cohort", id)
}

func (c *memCohorts) Create(_ context.Context, co *models.Cohort) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if co.ID == "" {
		co.ID = uuid.New().String()
	}
	c.cohorts = append(c.cohorts, *co)
	c.writes++
	return nil
}

func (c *memCohorts) Update(_ context.Context, co *models.Cohort) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cohorts {
		if c.cohorts[i].ID == co.ID {
			c.cohorts[i] = *co
			c.writes++
			return nil
		}
	}
	return errors.NewNotFoundError("cohort", co.ID)
}

type memSettings struct {
	mu sync.Mutex
	s  models.SystemSettings
}

func (m *memSettings) Get(context.Context) (models.SystemSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memSettings) Update(_ context.Context, s models.SystemSettings) (models.SystemSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return s, nil
}

type sent struct {
	applicantID string
	template    string
	extra       map[string]interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, a *models.Applicant, template string, extra map[string]interface{}) (*models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{applicantID: a.ID, template: template, extra: extra})
	if n.err != nil {
		return &models.Notification{Status: models.NotificationFailed}, n.err
	}
	return &models.Notification{ApplicantID: a.ID, Template: template, Status: models.NotificationSent}, nil
}

func (n *recordingNotifier) templates() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.template)
	}
	return out
}

type memReviews struct {
	mu      sync.Mutex
	entries map[string]models.ReviewEntry
	err     error
}

func (r *memReviews) Index(_ context.Context, e models.ReviewEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries[e.ApplicantID] = e
	return nil
}

func (r *memReviews) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.entries, id)
	return nil
}

type stubScorer struct {
	result *models.ScorerResult
	err    error
	calls  int
}

func (s *stubScorer) Score(context.Context, string) (*models.ScorerResult, error) {
	s.calls++
	return s.result, s.err
}

type stubIdentity struct {
	id    string
	err   error
	calls int
}

func (s *stubIdentity) CreateIdentity(context.Context, string, string, string, string) (string, error) {
	s.calls++
	return s.id, s.err
}

type harness struct {
	svc      *Service
	db       *memDB
	cohorts  *memCohorts
	settings *memSettings
	notifier *recordingNotifier
	reviews  *memReviews
	scorer   *stubScorer
	identity *stubIdentity
	redis    *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &harness{
		db:       newMemDB(),
		cohorts:  &memCohorts{},
		settings: &memSettings{},
		notifier: &recordingNotifier{},
		reviews:  &memReviews{entries: map[string]models.ReviewEntry{}},
		scorer:   &stubScorer{},
		identity: &stubIdentity{id: "kc-1"},
		redis:    mr,
	}
	h.svc = New(Dependencies{
		Applicants:   h.db,
		Applications: h.db,
		Cohorts:      h.cohorts,
		Settings:     h.settings,
		Locker:       lock.NewRedisLocker(rdb, 5*time.Second),
		Identity:     h.identity,
		Scorer:       h.scorer,
		Notifier:     h.notifier,
		Reviews:      h.reviews,
		Logger:       logger.NewTestLogger(t),
		Obs:          observability.NewNoop(),
	}, Options{WebinarCodeAttempts: 10})
	return h
}
