package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur while building decision matrices or
// executing ranking methods.
var (
	// ErrInvalidMatrix indicates that a DecisionMatrix is missing or malformed.
	ErrInvalidMatrix = errors.New("invalid decision matrix")

	// ErrEmptyMatrix indicates that a DecisionMatrix has no alternatives or
	// no criteria.
	ErrEmptyMatrix = errors.New("decision matrix is empty")

	// ErrNoWeights indicates that a DecisionMatrix has no usable weights.
	ErrNoWeights = errors.New("decision matrix has no usable weights")

	// ErrDimensionMismatch indicates that array lengths disagree with the
	// number of alternatives or criteria.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidDirection indicates a criterion direction other than
	// benefit or cost.
	ErrInvalidDirection = errors.New("invalid criterion direction")

	// ErrMissingInput indicates that a method-specific input is not attached
	// to the decision matrix.
	ErrMissingInput = errors.New("missing method input")

	// ErrInconsistent indicates that a pairwise comparison matrix exceeded
	// the acceptable consistency ratio.
	ErrInconsistent = errors.New("inconsistent pairwise comparisons")

	// ErrMethodNotFound indicates that a method name is not registered.
	ErrMethodNotFound = errors.New("method not registered")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ValidationError represents an input-shape failure detected before any
// numeric work begins. It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string

	// Err is an optional sentinel classifying the failure.
	Err error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: [%s]", e.Entity, strings.Join(e.Errors, "; "))
}

// Unwrap returns the classifying sentinel, if any.
func (e *ValidationError) Unwrap() error { return e.Err }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// newValidationErrorf builds a single-message ValidationError classified
// by sentinel.
func newValidationErrorf(entity string, sentinel error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: []string{fmt.Sprintf(format, args...)},
		Err:    sentinel,
	}
}

// ConsistencyError reports a pairwise comparison matrix whose consistency
// ratio exceeds the acceptance threshold. It is fatal for the invocation.
type ConsistencyError struct {
	// Matrix identifies the offending comparison matrix
	// (e.g. "criteria" or "criterion 2").
	Matrix string

	// Ratio is the computed consistency ratio.
	Ratio float64

	// Threshold is the acceptance threshold that was exceeded.
	Threshold float64
}

// Error implements the error interface for ConsistencyError.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("comparison matrix of %s is inconsistent (CR=%.4f > %.2f)",
		e.Matrix, e.Ratio, e.Threshold)
}

// Is reports ErrInconsistent so callers can match with errors.Is.
func (e *ConsistencyError) Is(target error) bool { return target == ErrInconsistent }

// MethodExecutionError wraps any failure raised while a method normalizes
// or computes, so callers can tell it apart from input validation errors.
type MethodExecutionError struct {
	// Method is the name of the method that failed.
	Method string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for MethodExecutionError.
func (e *MethodExecutionError) Error() string {
	return fmt.Sprintf("error executing %s method: %v", e.Method, e.Err)
}

// Unwrap returns the underlying error.
func (e *MethodExecutionError) Unwrap() error { return e.Err }

// NewMethodExecutionError creates a new MethodExecutionError.
func NewMethodExecutionError(method string, err error) *MethodExecutionError {
	return &MethodExecutionError{Method: method, Err: err}
}

// MethodNotFoundError reports a request for an unregistered method name.
type MethodNotFoundError struct {
	// Name is the requested method name.
	Name string

	// Suggestion is the closest registered name, if any.
	Suggestion string
}

// Error implements the error interface for MethodNotFoundError.
func (e *MethodNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("method '%s' not registered (did you mean '%s'?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("method '%s' not registered", e.Name)
}

// Is reports ErrMethodNotFound so callers can match with errors.Is.
func (e *MethodNotFoundError) Is(target error) bool { return target == ErrMethodNotFound }

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsExecutionError reports whether err is, or wraps, a MethodExecutionError.
func IsExecutionError(err error) bool {
	var me *MethodExecutionError
	return errors.As(err, &me)
}

// IsConsistencyError reports whether err is, or wraps, a ConsistencyError.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
