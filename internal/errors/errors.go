package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"syscall"
)

// SessionError is the structured error type for sessionctx.
// It carries enough context for logging, MCP error mapping and CLI output.
type SessionError struct {
	// Code is the unique error code (e.g., "ERR_206_FILE_CORRUPT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Sentinels for errors.Is matching by code.
var (
	ErrCorrupt      = &SessionError{Code: ErrCodeFileCorrupt}
	ErrInvalidInput = &SessionError{Code: ErrCodeInvalidInput}
	ErrWriteFailed  = &SessionError{Code: ErrCodeWriteFailed}
	ErrDiskFull     = &SessionError{Code: ErrCodeDiskFull}
	ErrPermission   = &SessionError{Code: ErrCodeFilePermission}
	ErrLockFailed   = &SessionError{Code: ErrCodeLockFailed}
)

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SessionError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *SessionError) Is(target error) bool {
	if t, ok := target.(*SessionError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *SessionError) WithDetail(key, value string) *SessionError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *SessionError) WithSuggestion(suggestion string) *SessionError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SessionError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SessionError {
	return &SessionError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SessionError from an existing error.
func Wrap(code string, err error) *SessionError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// CorruptError reports persisted state that could not be decoded.
func CorruptError(path string, cause error) *SessionError {
	return New(ErrCodeFileCorrupt, fmt.Sprintf("malformed state file %s", path), cause).
		WithDetail("path", path).
		WithSuggestion("inspect or remove the file; it was not overwritten")
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *SessionError {
	return New(ErrCodeInvalidInput, message, cause)
}

// WriteError classifies a failed write. Disk-full and permission failures get
// their own codes so callers can tell them apart from transient failures.
func WriteError(path string, cause error) *SessionError {
	code := ErrCodeWriteFailed
	switch {
	case stderrors.Is(cause, syscall.ENOSPC):
		code = ErrCodeDiskFull
	case stderrors.Is(cause, fs.ErrPermission):
		code = ErrCodeFilePermission
	}
	return New(code, fmt.Sprintf("failed to write %s", path), cause).WithDetail("path", path)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var se *SessionError
	if stderrors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SessionError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *SessionError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}
