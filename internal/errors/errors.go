// Package errors provides the error taxonomy for jsonexport.
//
// Sentinels are built on github.com/cockroachdb/errors so they carry stack
// traces and can be used with Is/As across wrapping layers. AppError adds the
// category used to produce user-facing messages.
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Re-exported helpers so callers only need this package.
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	Is           = crdb.Is
	As           = crdb.As
	Mark         = crdb.Mark
	WithHint     = crdb.WithHint
	FlattenHints = crdb.FlattenHints
)

// Standard application errors
var (
	ErrEmptyInput        = New("input is empty or contains only whitespace")
	ErrMalformedJSON     = New("input is not valid JSON")
	ErrInvalidRootShape  = New("JSON root cannot seed a class")
	ErrRenameDuplicated  = New("class name is already in use")
	ErrRenameUnsupported = New("language does not support renaming class types")
	ErrWriteFailure      = New("failed to write artifact")
	ErrClassNotFound     = New("class not found")
	ErrInvalidClassName  = New("invalid class name")
	ErrNoArtifacts       = New("no artifacts to export")
	ErrProfileNotFound   = New("language profile not found")
	ErrInvalidProfile    = New("invalid language profile")
	ErrFileNotFound      = New("file not found")
	ErrNoInput           = New("no input provided: please specify a file with -i or pipe JSON data to stdin")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeShape   ErrorType = "shape"
	ErrorTypeRename  ErrorType = "rename"
	ErrorTypeProfile ErrorType = "profile"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same category.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newAppError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newAppError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return newAppError(ErrorTypeParsing, message, err)
}

// NewShapeError creates a new error for JSON that cannot be turned into classes
func NewShapeError(message string, err error) *AppError {
	return newAppError(ErrorTypeShape, message, err)
}

// NewRenameError creates a new error for a rejected class rename
func NewRenameError(message string, err error) *AppError {
	return newAppError(ErrorTypeRename, message, err)
}

// NewProfileError creates a new error related to language profiles
func NewProfileError(message string, err error) *AppError {
	return newAppError(ErrorTypeProfile, message, err)
}

// NewConfigError creates a new error related to configuration or settings
func NewConfigError(message string, err error) *AppError {
	return newAppError(ErrorTypeConfig, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newAppError(ErrorTypeOutput, message, err)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	msg := userMessage(err)
	if hint := FlattenHints(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

func userMessage(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeShape:
			return fmt.Sprintf("Class generation error: %s", appErr.Message)
		case ErrorTypeRename:
			return fmt.Sprintf("Rename error: %s", appErr.Message)
		case ErrorTypeProfile:
			return fmt.Sprintf("Language profile error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	switch {
	case Is(err, ErrEmptyInput):
		return "Error: The input is empty. Please provide valid JSON data."
	case Is(err, ErrMalformedJSON):
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	case Is(err, ErrInvalidRootShape):
		return "Error: The JSON root must be an object or an array containing objects."
	case Is(err, ErrRenameDuplicated):
		return "Error: Another class already uses that name."
	case Is(err, ErrRenameUnsupported):
		return "Error: The selected language does not support renaming classes."
	case Is(err, ErrFileNotFound):
		return "Error: The specified file could not be found. Please check the file path."
	case Is(err, ErrNoInput):
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}

	return fmt.Sprintf("Error: %v", err)
}
