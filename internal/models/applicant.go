package models

import "time"

// Applicant is one founder moving through the program lifecycle.
type Applicant struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Phone           string    `json:"phone,omitempty"`
	Status          Status    `json:"status"`
	WebinarAttended *int      `json:"webinarAttended,omitempty"`
	Rating          *int      `json:"rating,omitempty"`
	AssignedTo      string    `json:"assignedTo,omitempty"`
	InterviewerID   string    `json:"interviewerId,omitempty"`
	CohortID        string    `json:"cohortId,omitempty"`
	Flags           []Flag    `json:"flags"`
	NeedsReview     bool      `json:"needsReview"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Phase is derived from Status for display.
func (a *Applicant) Phase() Phase {
	return PhaseOf(a.Status)
}

func (a *Applicant) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// TransitionKind records who caused a status change.
type TransitionKind string

const (
	TransitionAuto   TransitionKind = "auto"
	TransitionAdmin  TransitionKind = "admin"
	TransitionForced TransitionKind = "forced"
)

// StatusAudit is one row of the applicant status history.
type StatusAudit struct {
	ApplicantID string         `json:"applicantId"`
	FromStatus  Status         `json:"fromStatus"`
	ToStatus    Status         `json:"toStatus"`
	Kind        TransitionKind `json:"kind"`
	Actor       string         `json:"actor,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	At          time.Time      `json:"at"`
}

// Interview outcomes.
const (
	InterviewPending   = "pending"
	InterviewScheduled = "scheduled"
	InterviewCompleted = "completed"
	InterviewAccepted  = "accepted"
	InterviewRejected  = "rejected"
)

// Interview is created when an admin advances a submitted applicant to the interview phase.
type Interview struct {
	ID            string     `json:"id"`
	ApplicantID   string     `json:"applicantId"`
	InterviewerID string     `json:"interviewerId"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	Outcome       string     `json:"outcome"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SystemSettings is the single global settings record.
type SystemSettings struct {
	SkipPhase2 bool      `json:"skipPhase2"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UpdatedBy  string    `json:"updatedBy,omitempty"`
}

// StateChange is one conditional write against an applicant. It applies only when the
// stored status and version still equal ExpectedStatus and ExpectedVersion; every
// optional payload is written in the same unit.
type StateChange struct {
	ApplicantID     string
	ExpectedStatus  Status
	ExpectedVersion int64
	NewStatus       Status

	// Result replaces flags and needsReview when set.
	Result          *FlaggingResult
	WebinarAttended *int
	InterviewerID   *string

	Phase1     *Phase1Application
	Phase3     *Phase3Application
	Attendance *WebinarAttendance
	Interview  *Interview

	// Audit is nil when the status does not move.
	Audit *StatusAudit
}

// ReviewUpdate carries admin review fields. Nil fields are left unchanged.
type ReviewUpdate struct {
	Rating      *int
	ClearRating bool
	AssignedTo  *string
}

// ReviewEntry is the document indexed for the admin review queue.
type ReviewEntry struct {
	ApplicantID string    `json:"applicantId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phase       Phase     `json:"phase"`
	Status      Status    `json:"status"`
	Flags       []Flag    `json:"flags"`
	RedFlags    int       `json:"redFlags"`
	YellowFlags int       `json:"yellowFlags"`
	NeedsReview bool      `json:"needsReview"`
	CohortID    string    `json:"cohortId,omitempty"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}
