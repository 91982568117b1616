package domain

import (
	"errors"
	"fmt"
)

// Error classes. Handlers map these onto HTTP status codes with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUpstream      = errors.New("upstream failure")
)

// ValidationError reports a bad input shape or size.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

type AlreadyExistsError struct {
	Entity string
	Key    string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.Key)
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

func NewAlreadyExistsError(entity, key string) *AlreadyExistsError {
	return &AlreadyExistsError{Entity: entity, Key: key}
}

// UpstreamError wraps a failure of the document store, the generative-text
// API or a paper provider. errors.Is matches both ErrUpstream and Cause.
type UpstreamError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Source, e.Message)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Cause }

// NewProviderError builds the error surfaced by a paper-search provider.
func NewProviderError(provider string, statusCode int, message string, cause error) *UpstreamError {
	return &UpstreamError{Source: provider, StatusCode: statusCode, Message: message, Cause: cause}
}

// NewOptimizationError builds the error surfaced by the query optimizer.
func NewOptimizationError(message string, cause error) *UpstreamError {
	return &UpstreamError{Source: "gemini", Message: message, Cause: cause}
}

// NewStoreError classifies a document-store failure. NotFound and
// AlreadyExists errors keep their class; anything else becomes an
// UpstreamError with source "store".
func NewStoreError(op string, cause error) error {
	if errors.Is(cause, ErrNotFound) || errors.Is(cause, ErrAlreadyExists) || errors.Is(cause, ErrUpstream) {
		return fmt.Errorf("%s: %w", op, cause)
	}
	return &UpstreamError{Source: "store", Message: fmt.Sprintf("%s: %v", op, cause), Cause: cause}
}
