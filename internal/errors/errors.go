package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ModelMismatch indicates probe data references a class or range absent from the structural model
	ModelMismatch ErrorCode = "MODEL_MISMATCH"
	// MalformedProbeLength indicates a probe vector length disagrees with the structural model
	MalformedProbeLength ErrorCode = "MALFORMED_PROBE_LENGTH"
	// DiffIdentityCollision indicates two methods in one inventory share an identity key
	DiffIdentityCollision ErrorCode = "DIFF_IDENTITY_COLLISION"
	// InvalidModel indicates the structural model violates its own invariants
	InvalidModel ErrorCode = "INVALID_MODEL"
	// InvalidInput indicates a malformed input file or argument
	InvalidInput ErrorCode = "INVALID_INPUT"
	// StorageFailure indicates the snapshot store could not complete an operation
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// CoverageError is an error with a stable code, message and suggestions
type CoverageError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a CoverageError with the default suggested fixes for its code
func New(code ErrorCode, message string, cause error) *CoverageError {
	return &CoverageError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a CoverageError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *CoverageError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *CoverageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CoverageError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CoverageError) WithDetails(details interface{}) *CoverageError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first CoverageError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var ce *CoverageError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// Is reports whether err's chain contains a CoverageError with the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Warning is a non-fatal annotation attached to a computed result.
type Warning struct {
	Code    ErrorCode `json:"code"`
	Subject string    `json:"subject,omitempty"`
	Message string    `json:"message"`
}

// NewWarning creates a warning.
func NewWarning(code ErrorCode, subject, format string, args ...interface{}) Warning {
	return Warning{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	if w.Subject != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Code, w.Subject, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ModelMismatch: {
		{
			Type:        RunCommand,
			Command:     "probecov bundle --model <fresh-model> --exec <data>",
			Safe:        true,
			Description: "Re-export the structural model for the build the agent is running",
		},
	},
	MalformedProbeLength: {
		{
			Type:        RunCommand,
			Command:     "probecov bundle --lenient",
			Safe:        true,
			Description: "Pad or truncate probe vectors from stale agents",
		},
	},
	InvalidModel: {
		{
			Type:        RunCommand,
			Command:     "probecov model check --model <file>",
			Safe:        true,
			Description: "Report the overlapping or out-of-range probe ranges",
		},
	},
	StorageFailure: {
		{
			Type:        RunCommand,
			Command:     "probecov snapshot list",
			Safe:        true,
			Description: "Check that the snapshot database opens",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
