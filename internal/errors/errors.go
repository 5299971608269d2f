// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Standard sentinel errors
var (
	ErrUnauthorized     = errors.New("unauthorized: bad or missing credentials")
	ErrRateLimited      = errors.New("rate limited")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrEmptyData        = errors.New("no data points returned")
	ErrTransport        = errors.New("transport failure")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInsufficientData = errors.New("insufficient data for calculation")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// DefaultRetryAfter is the fixed back-off interval reported on rate limits.
// The core never sleeps on it; the caller decides when to retry.
const DefaultRetryAfter = 60 * time.Second

// ProviderError represents a classified failure from an upstream data provider.
type ProviderError struct {
	Provider   string
	Symbol     string
	Kind       error // one of the sentinel errors above
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error [%s] %s: %v: %v", e.Provider, e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider error [%s] %s: %v", e.Provider, e.Symbol, e.Kind)
}

// Unwrap exposes the taxonomy sentinel so errors.Is matches against it.
func (e *ProviderError) Unwrap() error {
	return e.Kind
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, symbol string, kind, err error) *ProviderError {
	pe := &ProviderError{
		Provider: provider,
		Symbol:   symbol,
		Kind:     kind,
		Err:      err,
	}
	if errors.Is(kind, ErrRateLimited) {
		pe.RetryAfter = DefaultRetryAfter
	}
	return pe
}

// ValidationError represents a validation error on a caller-supplied parameter.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap maps every validation failure onto ErrInvalidParameter.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
