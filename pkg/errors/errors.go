// Package errors provides custom error types for shotwatch.
// These errors enable programmatic error checking across the watcher,
// the broadcast engine and the streaming endpoints.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrSubscriberClosed indicates a write to a subscriber whose stream has ended
	ErrSubscriberClosed = errors.New("subscriber closed")

	// ErrUnsupported indicates a feature that is not available on this platform
	ErrUnsupported = errors.New("unsupported on this platform")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// WatchError is returned when a folder watch cannot be established.
type WatchError struct {
	Folder    string
	Operation string // "resolve", "create", "init", "watch"
	Err       error
}

// Error implements the error interface
func (e *WatchError) Error() string {
	return fmt.Sprintf("watch %s failed for %s: %v", e.Operation, e.Folder, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WatchError) Unwrap() error {
	return e.Err
}

// NewWatchError creates a new WatchError
func NewWatchError(folder, operation string, err error) *WatchError {
	return &WatchError{Folder: folder, Operation: operation, Err: err}
}

// DeliveryError records a failed frame write to one subscriber.
type DeliveryError struct {
	SubscriberID string
	Err          error
}

// Error implements the error interface
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to subscriber %s failed: %v", e.SubscriberID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewDeliveryError creates a new DeliveryError
func NewDeliveryError(subscriberID string, err error) *DeliveryError {
	return &DeliveryError{SubscriberID: subscriberID, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled reports whether err is a cancellation, either ours or the
// context package's. Client disconnects surface as context.Canceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsSubscriberClosed checks if an error came from writing to a closed subscriber
func IsSubscriberClosed(err error) bool {
	return errors.Is(err, ErrSubscriberClosed)
}

// IsUnsupported checks if an error reports a platform limitation
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// Standard library passthroughs so callers only import one errors package.
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)
