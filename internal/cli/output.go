package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/flowscribe/flowscribe/internal/patch"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Edit failure (unrecognized command, bad reference, conflict)
	ExitCommandError = 2 // Command error (unreadable files, bad flags, missing database)
)

// Error codes for failures outside the edit taxonomy. Edit failures keep
// the codes their errors carry (UNRECOGNIZED_COMMAND, REFERENCE_ERROR,
// PATCH_CONFLICT, INVALID_SCENARIO).
const (
	ErrCodeIO       = "IO_ERROR"       // unreadable or unwritable file
	ErrCodeOntology = "ONTOLOGY_ERROR" // ontology directory failed to load
	ErrCodeStore    = "STORE_ERROR"    // database open or write failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "REFERENCE_ERROR", "IO_ERROR", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // offending ref, path, or batch step
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// EditFailure renders a parse/compile/apply failure and returns the
// matching exit-1 error. The ref or path the edit error carries lands in
// the details field.
func (f *OutputFormatter) EditFailure(err error) error {
	var ee *patch.EditError
	if !errors.As(err, &ee) {
		return WrapExitError(ExitFailure, "edit failed", err)
	}

	var details map[string]string
	if ee.Ref != "" || ee.Path != "" {
		details = map[string]string{}
		if ee.Ref != "" {
			details["ref"] = ee.Ref
		}
		if ee.Path != "" {
			details["path"] = ee.Path
		}
	}

	_ = f.Error(string(ee.Code), ee.Message, details)
	return WrapExitError(ExitFailure, string(ee.Code), err)
}

// CommandFailure renders a command-level failure (bad input files, store
// problems) and returns the matching exit-2 error.
func (f *OutputFormatter) CommandFailure(code, message string) error {
	_ = f.Error(code, message, nil)
	return NewExitError(ExitCommandError, message)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
