// Package lifecycle holds the applicant phase/status graph. Every function here is pure:
// the caller supplies the current status, the rule engine output and the settings in force.
package lifecycle

import (
	"fmt"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

// Settings are the global switches that alter the transition graph.
type Settings struct {
	SkipPhase2 bool
}

// SettingsFrom converts the persisted record.
func SettingsFrom(s models.SystemSettings) Settings {
	return Settings{SkipPhase2: s.SkipPhase2}
}

// Action is an event that may move an applicant.
type Action string

const (
	ActionRedeemWebinar      Action = "redeem_webinar"
	ActionSaveDraft          Action = "save_draft"
	ActionSubmit             Action = "submit"
	ActionReject             Action = "reject"
	ActionReopen             Action = "reopen"
	ActionAdvanceToInterview Action = "advance_to_interview"
	ActionScheduleInterview  Action = "schedule_interview"
	ActionCompleteInterview  Action = "complete_interview"
	ActionOutcomePending     Action = "outcome_pending"
	ActionOutcomeAccepted    Action = "outcome_accepted"
	ActionOutcomeRejected    Action = "outcome_rejected"
)

// Input carries the data some guards need.
type Input struct {
	InterviewerID string
}

// Transition is a legal, guarded move.
type Transition struct {
	From   models.Status
	To     models.Status
	Action Action
	Kind   models.TransitionKind
}

// Changed reports whether the transition moves the applicant at all.
func (t Transition) Changed() bool {
	return t.From != t.To
}

type rule struct {
	from         []models.Status
	to           models.Status
	kind         models.TransitionKind
	precondition string
}

var interviewFamily = []models.Status{
	models.StatusPhase4,
	models.StatusPhase4InterviewScheduled,
	models.StatusPhase4PostInterview,
	models.StatusPhase4Rejected,
	models.StatusAccepted,
}

var rules = map[Action]rule{
	ActionRedeemWebinar: {
		from:         []models.Status{models.StatusPhase2},
		to:           models.StatusPhase3,
		kind:         models.TransitionAuto,
		precondition: "applicant must be in PHASE_2 to redeem a webinar code",
	},
	ActionSaveDraft: {
		from:         []models.Status{models.StatusPhase3, models.StatusPhase3InProgress},
		to:           models.StatusPhase3InProgress,
		kind:         models.TransitionAuto,
		precondition: "in-depth application must be open (PHASE_3 or PHASE_3_IN_PROGRESS)",
	},
	ActionSubmit: {
		from:         []models.Status{models.StatusPhase3, models.StatusPhase3InProgress},
		to:           models.StatusPhase3Submitted,
		kind:         models.TransitionAuto,
		precondition: "in-depth application must be open (PHASE_3 or PHASE_3_IN_PROGRESS)",
	},
	ActionReject: {
		from:         []models.Status{models.StatusPhase3Submitted},
		to:           models.StatusPhase3Rejected,
		kind:         models.TransitionAdmin,
		precondition: "in-depth application must be submitted",
	},
	ActionReopen: {
		from:         []models.Status{models.StatusPhase3Submitted},
		to:           models.StatusPhase3InProgress,
		kind:         models.TransitionAdmin,
		precondition: "in-depth application must be submitted",
	},
	ActionAdvanceToInterview: {
		from:         []models.Status{models.StatusPhase3Submitted},
		to:           models.StatusPhase4,
		kind:         models.TransitionAdmin,
		precondition: "in-depth application must be submitted",
	},
	ActionScheduleInterview: {
		from:         interviewFamily,
		to:           models.StatusPhase4InterviewScheduled,
		kind:         models.TransitionAdmin,
		precondition: "applicant must be in the interview phase",
	},
	ActionCompleteInterview: {
		from:         interviewFamily,
		to:           models.StatusPhase4PostInterview,
		kind:         models.TransitionAdmin,
		precondition: "applicant must be in the interview phase",
	},
	ActionOutcomePending: {
		from:         interviewFamily,
		to:           models.StatusPhase4,
		kind:         models.TransitionAdmin,
		precondition: "applicant must be in the interview phase",
	},
	ActionOutcomeAccepted: {
		from:         interviewFamily,
		to:           models.StatusAccepted,
		kind:         models.TransitionAdmin,
		precondition: "applicant must be in the interview phase",
	},
	ActionOutcomeRejected: {
		from:         interviewFamily,
		to:           models.StatusPhase4Rejected,
		kind:         models.TransitionAdmin,
		precondition: "applicant must be in the interview phase",
	},
}

// Apply validates action against current and returns the resulting transition.
func Apply(current models.Status, action Action, in Input) (Transition, error) {
	r, ok := rules[action]
	if !ok {
		return Transition{}, errors.NewValidationError("action", fmt.Sprintf("unknown action %q", action))
	}
	if !current.Valid() {
		return Transition{}, errors.NewValidationError("status", fmt.Sprintf("unknown status %q", current))
	}

	if !contains(r.from, current) {
		return Transition{}, progressionError(current, r.to, r.precondition)
	}

	if action == ActionAdvanceToInterview && in.InterviewerID == "" {
		return Transition{}, progressionError(current, r.to, "an interviewer must be assigned in the same step")
	}

	return Transition{From: current, To: r.to, Action: action, Kind: r.kind}, nil
}

// Expect fails with a PhaseProgressionError naming target and precondition unless current
// is one of allowed.
func Expect(current, target models.Status, precondition string, allowed ...models.Status) error {
	if contains(allowed, current) {
		return nil
	}
	return progressionError(current, target, precondition)
}

// NextPhase decides the automatic move after a rule engine pass. Only SIGNUP has an
// automatic edge; every other status stays put unless an explicit action moves it.
func NextPhase(current models.Status, result models.FlaggingResult, settings Settings) (models.Status, error) {
	if !current.Valid() {
		return "", errors.NewValidationError("status", fmt.Sprintf("unknown status %q", current))
	}

	if current != models.StatusPhase1 {
		if result.AutoAdvance {
			return "", progressionError(current, nextByRank(current), "no automatic transition leaves "+string(current.Phase()))
		}
		return current, nil
	}

	if !result.AutoAdvance {
		return current, nil
	}
	return SignupTarget(settings), nil
}

// SignupTarget is where an approved signup lands. skipPhase2 bypasses the webinar.
func SignupTarget(settings Settings) models.Status {
	if settings.SkipPhase2 {
		return models.StatusPhase3
	}
	return models.StatusPhase2
}

func nextByRank(s models.Status) models.Status {
	switch s.Phase() {
	case models.PhaseWebinar:
		return models.StatusPhase3
	case models.PhaseInDepthApplication:
		return models.StatusPhase4
	case models.PhaseInterview:
		return models.StatusAccepted
	default:
		return s
	}
}

func progressionError(from, to models.Status, precondition string) *errors.PhaseProgressionError {
	return &errors.PhaseProgressionError{
		FromPhase:    string(from.Phase()),
		ToPhase:      string(to.Phase()),
		FromStatus:   string(from),
		ToStatus:     string(to),
		Precondition: precondition,
	}
}

func contains(list []models.Status, s models.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
