package models

import "fmt"

// Phase is the coarse lifecycle stage. It is always derived from Status and never stored.
type Phase string

const (
	PhaseSignup             Phase = "SIGNUP"
	PhaseWebinar            Phase = "WEBINAR"
	PhaseInDepthApplication Phase = "IN_DEPTH_APPLICATION"
	PhaseInterview          Phase = "INTERVIEW"
	PhaseAccepted           Phase = "ACCEPTED"
)

var phaseRank = map[Phase]int{
	PhaseSignup:             1,
	PhaseWebinar:            2,
	PhaseInDepthApplication: 3,
	PhaseInterview:          4,
	PhaseAccepted:           5,
}

// Rank orders phases SIGNUP < WEBINAR < IN_DEPTH_APPLICATION < INTERVIEW < ACCEPTED.
// Unknown phases rank 0.
func (p Phase) Rank() int {
	return phaseRank[p]
}

// AtLeast reports whether p is at or beyond other.
func (p Phase) AtLeast(other Phase) bool {
	return p.Rank() >= other.Rank()
}

// Status is the fine-grained lifecycle state and the single source of truth.
type Status string

const (
	StatusPhase1                   Status = "PHASE_1"
	StatusPhase2                   Status = "PHASE_2"
	StatusPhase3                   Status = "PHASE_3"
	StatusPhase3InProgress         Status = "PHASE_3_IN_PROGRESS"
	StatusPhase3Submitted          Status = "PHASE_3_SUBMITTED"
	StatusPhase3Rejected           Status = "PHASE_3_REJECTED"
	StatusPhase4                   Status = "PHASE_4"
	StatusPhase4InterviewScheduled Status = "PHASE_4_INTERVIEW_SCHEDULED"
	StatusPhase4PostInterview      Status = "PHASE_4_POST_INTERVIEW"
	StatusPhase4Rejected           Status = "PHASE_4_REJECTED"
	StatusAccepted                 Status = "ACCEPTED"
)

var statusPhase = map[Status]Phase{
	StatusPhase1:                   PhaseSignup,
	StatusPhase2:                   PhaseWebinar,
	StatusPhase3:                   PhaseInDepthApplication,
	StatusPhase3InProgress:         PhaseInDepthApplication,
	StatusPhase3Submitted:          PhaseInDepthApplication,
	StatusPhase3Rejected:           PhaseInDepthApplication,
	StatusPhase4:                   PhaseInterview,
	StatusPhase4InterviewScheduled: PhaseInterview,
	StatusPhase4PostInterview:      PhaseInterview,
	StatusPhase4Rejected:           PhaseInterview,
	StatusAccepted:                 PhaseAccepted,
}

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusPhase1,
	StatusPhase2,
	StatusPhase3,
	StatusPhase3InProgress,
	StatusPhase3Submitted,
	StatusPhase3Rejected,
	StatusPhase4,
	StatusPhase4InterviewScheduled,
	StatusPhase4PostInterview,
	StatusPhase4Rejected,
	StatusAccepted,
}

// PhaseOf derives the phase for a status. Unknown statuses map to the empty phase.
func PhaseOf(s Status) Phase {
	return statusPhase[s]
}

func (s Status) Phase() Phase {
	return PhaseOf(s)
}

func (s Status) Valid() bool {
	_, ok := statusPhase[s]
	return ok
}

// Terminal reports whether no automatic transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusPhase3Rejected || s == StatusPhase4Rejected
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}
