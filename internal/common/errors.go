package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")

	// ErrExtraction means the uploaded bytes were not a readable PDF. The
	// caller presents this as "no products found"; it is never fatal.
	ErrExtraction = errors.New("text extraction failed")

	// ErrCodeExists is returned by the store when an insert violates the
	// unique constraint on product codes.
	ErrCodeExists = errors.New("product code already exists")

	// ErrAllocationConflict means code allocation kept colliding after the
	// bounded retry count was exhausted.
	ErrAllocationConflict = errors.New("code allocation conflict")

	// ErrCatalogLookup means the catalog store was unreachable during
	// reconciliation. No partial writes are attempted.
	ErrCatalogLookup = errors.New("catalog lookup failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
