package engine

import (
	"errors"
	"fmt"
)

// ErrCompleted is returned by Step and Run once every step has been taken.
var ErrCompleted = errors.New("simulation already completed")

// ConfigError reports run parameters rejected before the loop starts.
//
// Config errors include:
//   - Non-positive or NaN time step
//   - NaN or infinite duration
//   - Step count that does not fit the step counter
//   - Probability outside [0, 1] (strict mode only)
//   - Missing or empty population
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Field names the offending parameter, if any.
	Field string

	// Message is a human-readable description.
	Message string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeNonPositiveTimeStep indicates TimeStep <= 0 or NaN.
	ErrCodeNonPositiveTimeStep ConfigErrorCode = "NON_POSITIVE_TIME_STEP"

	// ErrCodeInvalidDuration indicates NumYears or StartDate is NaN or infinite.
	ErrCodeInvalidDuration ConfigErrorCode = "INVALID_DURATION"

	// ErrCodeTooManySteps indicates NumYears / TimeStep overflows the step counter.
	ErrCodeTooManySteps ConfigErrorCode = "TOO_MANY_STEPS"

	// ErrCodeProbabilityOutOfRange indicates a probability outside [0, 1] in strict mode.
	ErrCodeProbabilityOutOfRange ConfigErrorCode = "PROBABILITY_OUT_OF_RANGE"

	// ErrCodeEmptyPopulation indicates there are no agents to simulate.
	ErrCodeEmptyPopulation ConfigErrorCode = "EMPTY_POPULATION"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ConfigErrorCodeOf returns the code of a wrapped ConfigError, or "" if err
// is not one.
func ConfigErrorCodeOf(err error) ConfigErrorCode {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newConfigError(code ConfigErrorCode, field, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
