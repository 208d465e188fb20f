package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetNotFound is returned when an asset does not exist
	ErrAssetNotFound = errors.New("asset not found")

	// ErrLocationNotFound is returned when a location does not exist
	ErrLocationNotFound = errors.New("location not found")

	// ErrCategoryNotFound is returned when a category does not exist
	ErrCategoryNotFound = errors.New("category not found")

	// ErrScheduleNotFound is returned when a maintenance schedule does not exist
	ErrScheduleNotFound = errors.New("maintenance schedule not found")

	// ErrLoanNotFound is returned when a loan does not exist
	ErrLoanNotFound = errors.New("loan not found")
)

// ValidationError reports a rejected input before any mutation was
// attempted. Field names the offending input so callers can render a
// field-level error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a state conflict, e.g. a second active loan for the
// same asset or an asset code collision.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

// NewConflictError creates a conflict error for a resource
func NewConflictError(resource, reason string) *ConflictError {
	return &ConflictError{Resource: resource, Reason: reason}
}

// IntegrityError reports a rejected destructive operation that would break a
// reference, e.g. deleting a location still holding assets.
type IntegrityError struct {
	Resource string
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

// NewIntegrityError creates an integrity error for a resource
func NewIntegrityError(resource, reason string) *IntegrityError {
	return &IntegrityError{Resource: resource, Reason: reason}
}

// StorageUnavailableError reports that the underlying store could not serve
// an operation, including failure to enter the code-allocator critical
// section. The enclosing operation must roll back as one unit.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// NewStorageUnavailableError wraps a storage failure for an operation
func NewStorageUnavailableError(op string, err error) *StorageUnavailableError {
	return &StorageUnavailableError{Op: op, Err: err}
}
