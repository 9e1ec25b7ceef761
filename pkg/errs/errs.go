// Package errs defines the error taxonomy shared by the composition engine
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure classes
var (
	ErrConfiguration = errors.New("bad configuration")
	ErrBadInput      = errors.New("bad input")
	ErrInternal      = errors.New("internal invariant violated")
)

// ConfigurationError reports an unknown or malformed style, scale or pattern
type ConfigurationError struct {
	Kind   string // "style", "scale", "bass_pattern", "instrument"
	Name   string
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s: %s %q", ErrConfiguration, e.Kind, e.Name)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrConfiguration) hold
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InputError reports an option value the caller got wrong
type InputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrBadInput, e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrBadInput) hold
func (e *InputError) Is(target error) bool {
	return target == ErrBadInput
}

// InternalError signals a generator bug, never bad input
type InternalError struct {
	Stage  string // "rhythm", "melody", "accompaniment", "assembler"
	Bar    int
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s at bar %d: %s", ErrInternal, e.Stage, e.Bar, e.Detail)
}

// Is makes errors.Is(err, ErrInternal) hold
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// NewInternal creates an InternalError
func NewInternal(stage string, bar int, format string, args ...any) *InternalError {
	return &InternalError{
		Stage:  stage,
		Bar:    bar,
		Detail: fmt.Sprintf(format, args...),
	}
}
