package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeInvalid  ErrorCode = "INVALID"
	ErrCodeConflict ErrorCode = "CONFLICT"
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Reason narrows an ErrorCode to the rule that was violated.
type Reason string

const (
	ReasonEmptyTitle         Reason = "empty_title"
	ReasonInvalidStatus      Reason = "invalid_status"
	ReasonInvalidInterval    Reason = "invalid_interval"
	ReasonDanglingReference  Reason = "dangling_reference"
	ReasonNegativeEstimate   Reason = "negative_estimate"
	ReasonInvalidEmail       Reason = "invalid_email"
	ReasonInvalidPassword    Reason = "invalid_password"
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonInvalidPayload     Reason = "invalid_payload"
	ReasonDuplicateKey       Reason = "duplicate_key"
	ReasonUserNotFound       Reason = "user_not_found"
	ReasonTaskNotFound       Reason = "task_not_found"
	ReasonEventNotFound      Reason = "event_not_found"
	ReasonIntegrityFailure   Reason = "integrity_failure"
	ReasonTimeOutOfRange     Reason = "time_out_of_range"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code and, when target names one,
// the same reason. Wrapped copies of a sentinel therefore still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// NewError builds a domain error.
func NewError(code ErrorCode, reason Reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, reason Reason, message string, err error) *Error {
	return &Error{
		Code:    code,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// Wrap attaches cause to a copy of the sentinel so callers keep both the
// classification and the driver error.
func Wrap(sentinel *Error, cause error) *Error {
	return WrapError(sentinel.Code, sentinel.Reason, sentinel.Message, cause)
}

// Common domain errors.
var (
	ErrEmptyTitle         = NewError(ErrCodeInvalid, ReasonEmptyTitle, "task title must not be empty")
	ErrInvalidStatus      = NewError(ErrCodeInvalid, ReasonInvalidStatus, "task status must be one of TODO, IN_PROGRESS, DONE")
	ErrInvalidInterval    = NewError(ErrCodeInvalid, ReasonInvalidInterval, "schedule event must start before it ends")
	ErrDanglingTask       = NewError(ErrCodeInvalid, ReasonDanglingReference, "schedule event references a task that does not exist")
	ErrNegativeEstimate   = NewError(ErrCodeInvalid, ReasonNegativeEstimate, "estimated minutes must not be negative")
	ErrInvalidEmail       = NewError(ErrCodeInvalid, ReasonInvalidEmail, "email is required")
	ErrInvalidPassword    = NewError(ErrCodeInvalid, ReasonInvalidPassword, "password is too short")
	ErrInvalidCredentials = NewError(ErrCodeInvalid, ReasonInvalidCredentials, "invalid email or password")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, ReasonInvalidPayload, "invalid payload")
	ErrTimeOutOfRange     = NewError(ErrCodeInvalid, ReasonTimeOutOfRange, "time must fall between years 1 and 9999")

	ErrDuplicateEmail = NewError(ErrCodeConflict, ReasonDuplicateKey, "email already in use")

	ErrUserNotFound  = NewError(ErrCodeNotFound, ReasonUserNotFound, "user not found")
	ErrTaskNotFound  = NewError(ErrCodeNotFound, ReasonTaskNotFound, "task not found")
	ErrEventNotFound = NewError(ErrCodeNotFound, ReasonEventNotFound, "schedule event not found")

	ErrIntegrity = NewError(ErrCodeInternal, ReasonIntegrityFailure, "integrity failure")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// ReasonOf returns the reason of the first domain error in err's chain.
func ReasonOf(err error) Reason {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Reason
	}
	return ""
}
