package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/career-coach/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps these to HTTP status codes.
var (
	// ErrResumeNotFound indicates that the requested resume does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrResumeNotFound = errors.New("resume not found")

	// ErrNoContent indicates that the model answered but nothing usable could be parsed.
	ErrNoContent = errors.New("model response contained no usable content")
)

// CoachServiceError wraps errors from the coach service with context.
type CoachServiceError struct {
	// Operation is the operation that failed (e.g., "generate_interview_questions")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for CoachServiceError.
func (e *CoachServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("coach service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("coach service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CoachServiceError) Unwrap() error {
	return e.Err
}

// NewCoachServiceError wraps err with the failing operation.
// Store not-found errors are returned as ErrResumeNotFound without wrapping.
func NewCoachServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrResumeNotFound) || errors.Is(err, store.ErrResumeNotFound) {
		return ErrResumeNotFound
	}
	return &CoachServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
