package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP edge can pick a status code without
// inspecting message text.
type Kind int

const (
	KindValidation Kind = iota // malformed or out-of-range input
	KindPermission             // verification gate not met
	KindConflict               // duplicate or mismatched resource
	KindNotFound               // absent resource
	KindInvalidState           // illegal status transition
)

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	// Field optionally names the offending input for validation errors.
	Field string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validation reports user-correctable input problems.
func Validation(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Permission reports an unmet tier or verification gate.
func Permission(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate or mismatched resource.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent resource.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an illegal lifecycle transition. Distinct from
// validation: it indicates a sequencing bug, not bad field input.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
