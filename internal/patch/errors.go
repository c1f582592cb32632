package patch

import (
	"errors"
	"fmt"
)

// EditError represents a failure while compiling or applying edits.
//
// Every failure carries a code from the closed taxonomy plus the offending
// reference or path, so callers can report what went wrong without string
// matching:
//   - Unrecognized command: text matched no verb pattern
//   - Reference error: a named unit or scope did not resolve
//   - Patch conflict: an op addressed a path that does not exist
//   - Invalid scenario: the patched document failed validation
type EditError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Ref is the unit, scope, or link reference that failed to resolve.
	Ref string

	// Path is the op path that conflicted.
	Path string
}

// ErrorCode categorizes edit errors.
type ErrorCode string

const (
	// ErrCodeUnrecognizedCommand indicates text that parsed to no intent.
	ErrCodeUnrecognizedCommand ErrorCode = "UNRECOGNIZED_COMMAND"

	// ErrCodeReference indicates a unit or scope that did not resolve.
	ErrCodeReference ErrorCode = "REFERENCE_ERROR"

	// ErrCodePatchConflict indicates an op against a stale or unknown path.
	ErrCodePatchConflict ErrorCode = "PATCH_CONFLICT"

	// ErrCodeInvalidScenario indicates the patched document failed validation.
	ErrCodeInvalidScenario ErrorCode = "INVALID_SCENARIO"
)

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %s (ref=%s)", e.Code, e.Message, e.Ref)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from a wrapped edit error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (ErrorCode, bool) {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return "", false
}

// IsUnrecognizedCommand returns true for unrecognized-command errors.
func IsUnrecognizedCommand(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodeUnrecognizedCommand
}

// IsReferenceError returns true for unresolved-reference errors.
func IsReferenceError(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodeReference
}

// IsPatchConflict returns true for stale-path conflicts.
func IsPatchConflict(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodePatchConflict
}

// IsInvalidScenario returns true for post-apply validation failures.
func IsInvalidScenario(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodeInvalidScenario
}

// NewUnrecognizedCommandError creates an EditError for unparseable text.
func NewUnrecognizedCommandError(raw string) *EditError {
	return &EditError{
		Code:    ErrCodeUnrecognizedCommand,
		Message: fmt.Sprintf("unrecognized command: %q", raw),
	}
}

// NewReferenceError creates an EditError for an unresolved reference.
func NewReferenceError(ref, message string) *EditError {
	return &EditError{
		Code:    ErrCodeReference,
		Message: message,
		Ref:     ref,
	}
}

// NewPatchConflictError creates an EditError for a path that cannot take
// the op.
func NewPatchConflictError(path, message string) *EditError {
	return &EditError{
		Code:    ErrCodePatchConflict,
		Message: message,
		Path:    path,
	}
}

// NewInvalidScenarioError creates an EditError for a document that failed
// validation after patching.
func NewInvalidScenarioError(cause error) *EditError {
	return &EditError{
		Code:    ErrCodeInvalidScenario,
		Message: cause.Error(),
	}
}
