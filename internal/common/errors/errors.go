// Package errors provides the portal error taxonomy and its mapping onto BPMN job errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Business rule errors. Never retried; thrown to the process as BPMN errors.
const (
	ErrCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrCodePhaseProgressionDenied  ErrorCode = "PHASE_PROGRESSION_DENIED"
	ErrCodeWebinarAlreadyAttended  ErrorCode = "WEBINAR_ALREADY_ATTENDED"
	ErrCodeCohortOverlap           ErrorCode = "COHORT_OVERLAP"
	ErrCodeResourceNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeWebinarCodeExhausted    ErrorCode = "WEBINAR_CODE_EXHAUSTED"
	ErrCodeAdminCapabilityRequired ErrorCode = "ADMIN_CAPABILITY_REQUIRED"
)

// Technical errors. Retried per GetRetryCount.
const (
	ErrCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeDatabaseQueryFailed    ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseWriteFailed    ErrorCode = "DATABASE_WRITE_FAILED"
	ErrCodeLockUnavailable        ErrorCode = "LOCK_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeScorerUnavailable      ErrorCode = "SCORER_UNAVAILABLE"
	ErrCodeIdentityProviderFailed ErrorCode = "IDENTITY_PROVIDER_FAILED"
	ErrCodeReviewIndexFailed      ErrorCode = "REVIEW_INDEX_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Standardizer is implemented by every portal error so the job error handler can
// report it without knowing the concrete type.
type Standardizer interface {
	Standard() *StandardError
}

// ==========================
// 2. Portal Error Types
// ==========================

// ValidationError reports malformed input. Always recoverable by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   e.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": e.Field},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PhaseProgressionError reports an illegal lifecycle transition.
type PhaseProgressionError struct {
	FromPhase    string
	ToPhase      string
	FromStatus   string
	ToStatus     string
	Precondition string
}

func (e *PhaseProgressionError) Error() string {
	return fmt.Sprintf("cannot move from %s (%s) to %s (%s): %s",
		e.FromPhase, e.FromStatus, e.ToPhase, e.ToStatus, e.Precondition)
}

func (e *PhaseProgressionError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodePhaseProgressionDenied,
		Message:   "Phase progression denied",
		Details:   e.Error(),
		Retryable: false,
		Metadata: map[string]interface{}{
			"fromPhase":    e.FromPhase,
			"toPhase":      e.ToPhase,
			"fromStatus":   e.FromStatus,
			"toStatus":     e.ToStatus,
			"precondition": e.Precondition,
		},
		Timestamp: time.Now().UTC(),
	}
}

// AlreadyAttendedError rejects a second webinar redemption for an applicant that has
// already been promoted past the webinar phase.
type AlreadyAttendedError struct {
	ApplicantID     string
	WebinarAttended int
}

func (e *AlreadyAttendedError) Error() string {
	return fmt.Sprintf("applicant %s already attended webinar %d", e.ApplicantID, e.WebinarAttended)
}

func (e *AlreadyAttendedError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodeWebinarAlreadyAttended,
		Message:   "Webinar already attended",
		Details:   e.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"applicantId": e.ApplicantID, "webinarAttended": e.WebinarAttended},
		Timestamp: time.Now().UTC(),
	}
}

// Overlapping window names.
const (
	WindowApplication = "application"
	WindowProgram     = "program"
)

// OverlapError reports a cohort scheduling conflict.
type OverlapError struct {
	CohortID            string
	ConflictingCohortID string
	Window              string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("cohort %s %s window overlaps cohort %s", e.CohortID, e.Window, e.ConflictingCohortID)
}

func (e *OverlapError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodeCohortOverlap,
		Message:   "Cohort dates overlap an existing cohort",
		Details:   e.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"conflictingCohortId": e.ConflictingCohortID, "window": e.Window},
		Timestamp: time.Now().UTC(),
	}
}

// NotFoundError reports a missing applicant, cohort, webinar or application.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("%s not found", e.Resource),
		Details:   e.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a lost compare-and-swap. The caller may re-read and retry.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q was modified concurrently", e.Resource, e.ID)
}

func (e *ConflictError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodeConcurrentModification,
		Message:   "Concurrent modification detected",
		Details:   e.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewConflictError(resource, id string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return stderrors.As(err, &c)
}

// ==========================
// 3. Technical Error Constructors
// ==========================

func NewDatabaseQueryError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   fmt.Sprintf("Database query '%s' failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseWriteError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseWriteFailed,
		Message:   fmt.Sprintf("Database write '%s' failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLockUnavailableError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLockUnavailable,
		Message:   "Could not acquire write lock",
		Details:   key,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(template string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Failed to send '%s' notification", template),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewScorerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScorerUnavailable,
		Message:   "External scorer unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewIdentityProviderError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdentityProviderFailed,
		Message:   "Identity provider request failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewReviewIndexError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReviewIndexFailed,
		Message:   fmt.Sprintf("Review index '%s' failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewAdminCapabilityRequiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdminCapabilityRequired,
		Message:   "Admin capability required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewWebinarCodeExhaustedError(attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebinarCodeExhausted,
		Message:   "Could not generate a unique webinar code",
		Details:   fmt.Sprintf("gave up after %d attempts", attempts),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// BusinessCodes are thrown to the process as BPMN errors and may be caught by boundary
// events. The activity registry lists them per worker.
var BusinessCodes = []ErrorCode{
	ErrCodeValidationFailed,
	ErrCodePhaseProgressionDenied,
	ErrCodeWebinarAlreadyAttended,
	ErrCodeCohortOverlap,
	ErrCodeResourceNotFound,
	ErrCodeWebinarCodeExhausted,
	ErrCodeAdminCapabilityRequired,
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseQueryFailed,
		ErrCodeDatabaseWriteFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeIdentityProviderFailed,
		ErrCodeReviewIndexFailed:
		return 3

	case ErrCodeConcurrentModification,
		ErrCodeLockUnavailable,
		ErrCodeScorerUnavailable:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// Normalize turns any error into a StandardError.
func Normalize(err error) *StandardError {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}
	var s Standardizer
	if stderrors.As(err, &s) {
		return s.Standard()
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PHASE") || strings.Contains(codeStr, "WEBINAR"):
		return "LIFECYCLE"
	case strings.Contains(codeStr, "COHORT"):
		return "SCHEDULING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CONCURRENT") || strings.Contains(codeStr, "LOCK"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SCORER") || strings.Contains(codeStr, "IDENTITY") || strings.Contains(codeStr, "INDEX"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
