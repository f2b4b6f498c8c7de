// Package errors defines the error taxonomy shared across the service.
//
// ValidationError and NotFoundError map to client-facing error responses.
// CompletionError marks an upstream text-generation failure and halts the
// agent pipeline for the current invocation. BroadcastError is always logged
// and swallowed; a failed subscriber delivery must never abort business logic.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError represents missing or malformed required input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError represents a lookup miss for a known resource kind.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NewNotFound builds a NotFoundError for a resource and lookup key.
func NewNotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// CompletionError represents an upstream text-generation failure, surfaced
// after the gateway's single credential-refresh retry has been exhausted.
type CompletionError struct {
	Err        error
	StatusCode int // HTTP status code if applicable
	Detail     string
}

func (e *CompletionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("completion failed: %s", e.Detail)
	}
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// NewCompletion wraps an upstream failure in a CompletionError.
func NewCompletion(err error, detail string) error {
	return &CompletionError{Err: err, Detail: detail}
}

// BroadcastError represents a subscriber-emit failure.
type BroadcastError struct {
	Subscriber string
	Err        error
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast to %s failed: %v", e.Subscriber, e.Err)
}

func (e *BroadcastError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsCompletion reports whether err is a CompletionError.
func IsCompletion(err error) bool {
	var ce *CompletionError
	return errors.As(err, &ce)
}
