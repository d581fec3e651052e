// Package services provides standardized error types for service layer
// operations.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidWorkflow = errors.New("invalid workflow")
	ErrWorkflowNil     = errors.New("workflow cannot be nil")
	ErrInvalidQuery    = errors.New("search query cannot be empty")
	ErrInvalidImport   = errors.New("invalid workflow import payload")

	// Business logic conflicts (409 Conflict).
	ErrWorkflowInactive = errors.New("workflow is not active")

	// Not found errors (404).
	ErrTemplateNotFound = errors.New("template not found")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidWorkflow) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrInvalidImport)
}

// IsConflictError checks if an error is a business logic conflict that should
// return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
