package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PortalErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{"validation", NewValidationError("email", "must not be empty"), ErrCodeValidationFailed, false},
		{"phase", &PhaseProgressionError{FromPhase: "SIGNUP", ToPhase: "IN_DEPTH", FromStatus: "PHASE_1", ToStatus: "PHASE_3", Precondition: "applicant must be in PHASE_2"}, ErrCodePhaseProgressionDenied, false},
		{"attended", &AlreadyAttendedError{ApplicantID: "a1", WebinarAttended: 2}, ErrCodeWebinarAlreadyAttended, false},
		{"overlap", &OverlapError{CohortID: "c2", ConflictingCohortID: "c1", Window: "program"}, ErrCodeCohortOverlap, false},
		{"not found", NewNotFoundError("applicant", "a1"), ErrCodeResourceNotFound, false},
		{"conflict", NewConflictError("applicant", "a1"), ErrCodeConcurrentModification, true},
		{"standard", NewLockUnavailableError("lock:cohorts"), ErrCodeLockUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std := Normalize(fmt.Errorf("wrapped: %w", tt.err))
			assert.Equal(t, tt.code, std.Code)
			assert.Equal(t, tt.retryable, std.Retryable)
		})
	}
}

func TestNormalize_UnknownError(t *testing.T) {
	std := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), std.Code)
	assert.False(t, std.Retryable)
	assert.Equal(t, "boom", std.Details)
}

func TestIsNotFoundAndIsConflict(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("load: %w", NewNotFoundError("cohort", "c1"))))
	assert.False(t, IsNotFound(NewConflictError("cohort", "c1")))
	assert.True(t, IsConflict(fmt.Errorf("save: %w", NewConflictError("applicant", "a1"))))
	assert.False(t, IsConflict(stderrors.New("other")))
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("business rule errors are never retried", func(t *testing.T) {
		perr := &PhaseProgressionError{FromPhase: "WEBINAR", ToPhase: "IN_DEPTH", FromStatus: "PHASE_2", ToStatus: "PHASE_3", Precondition: "x"}
		bpmn := ConvertToBPMNError(perr.Standard())
		assert.Equal(t, string(ErrCodePhaseProgressionDenied), bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
		assert.Equal(t, "PHASE_2", bpmn.ErrorVariables["fromStatus"])
	})

	t.Run("technical errors carry a retry budget", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewDatabaseWriteError("update applicant", stderrors.New("conn reset")))
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)

		vars := bpmn.ToErrorVariables()
		require.Contains(t, vars, "errorCode")
		assert.Equal(t, string(ErrCodeDatabaseWriteFailed), vars["originalErrorCode"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "LIFECYCLE", GetErrorCategory(ErrCodePhaseProgressionDenied))
	assert.Equal(t, "LIFECYCLE", GetErrorCategory(ErrCodeWebinarAlreadyAttended))
	assert.Equal(t, "SCHEDULING", GetErrorCategory(ErrCodeCohortOverlap))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeConcurrentModification))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeScorerUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeResourceNotFound))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrorCode("SOMETHING")))
}

func TestErrorMessages(t *testing.T) {
	err := &PhaseProgressionError{FromPhase: "SIGNUP", ToPhase: "WEBINAR", FromStatus: "PHASE_1", ToStatus: "PHASE_2", Precondition: "needs review"}
	assert.Equal(t, "cannot move from SIGNUP (PHASE_1) to WEBINAR (PHASE_2): needs review", err.Error())

	std := NewScorerUnavailableError(stderrors.New("timeout"))
	assert.Equal(t, "StandardError[SCORER_UNAVAILABLE]: External scorer unavailable: timeout", std.Error())
}
