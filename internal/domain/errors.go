// Package domain contains domain errors used throughout the application.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	ErrEmptyPropertyID       = errors.New("property id cannot be empty")
	ErrPropertyExists        = errors.New("property already registered")
	ErrPropertyNotRegistered = errors.New("property not registered")
	ErrStateFileNotFound     = errors.New("state file not found")
	ErrInvalidStateFile      = errors.New("invalid state file")
	ErrInvalidPayload        = errors.New("invalid payload")
)

// Error codes for client responses.
const (
	ErrCodePropertyNotFound = "PROPERTY_NOT_FOUND"
	ErrCodeInvalidPayload   = "INVALID_PAYLOAD"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// PropertyError ties an error to the property it concerns.
type PropertyError struct {
	Property string
	Err      error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("property %q: %v", e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// NewPropertyError creates a new PropertyError.
func NewPropertyError(property string, err error) *PropertyError {
	return &PropertyError{
		Property: property,
		Err:      err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
