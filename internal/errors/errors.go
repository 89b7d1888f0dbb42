// Package errors provides a structured error handling framework for Quill.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// Configuration errors
	ErrorTypeConfig ErrorType = "CONFIG"
	// Model/LLM related errors
	ErrorTypeModel ErrorType = "MODEL"
	// Network/API errors
	ErrorTypeNetwork ErrorType = "NETWORK"
	// User input errors
	ErrorTypeInput ErrorType = "INPUT"
	// Native interface installation errors
	ErrorTypeInstall ErrorType = "INSTALL"
	// Internal/unexpected errors
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// QuillError represents a structured error with context
type QuillError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string
	Err     error // Underlying error
}

// Error implements the error interface
func (e *QuillError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Op, e.Message)
}

// Unwrap allows error unwrapping
func (e *QuillError) Unwrap() error {
	return e.Err
}

// Is allows error comparison by type
func (e *QuillError) Is(target error) bool {
	t, ok := target.(*QuillError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new QuillError
func New(errType ErrorType, op string, message string) *QuillError {
	return &QuillError{
		Type:    errType,
		Op:      op,
		Message: message,
	}
}

// Wrap wraps an existing error with QuillError context
func Wrap(err error, errType ErrorType, op string, message string) *QuillError {
	if err == nil {
		return nil
	}
	return &QuillError{
		Type:    errType,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

// ConfigError creates a configuration error
func ConfigError(op string, message string) *QuillError {
	return New(ErrorTypeConfig, op, message)
}

// ModelError creates a model/LLM error
func ModelError(op string, message string) *QuillError {
	return New(ErrorTypeModel, op, message)
}

// InstallError creates a native interface installation error
func InstallError(op string, message string) *QuillError {
	return New(ErrorTypeInstall, op, message)
}

// IsType reports whether err is a QuillError of the given type
func IsType(err error, errType ErrorType) bool {
	var qerr *QuillError
	if errors.As(err, &qerr) {
		return qerr.Type == errType
	}
	return false
}

// Sentinel errors
var (
	ErrNativeInterfaceMissing = errors.New("native inference interface not installed")
	ErrInvalidInput           = errors.New("invalid input")
)
