// Package errors provides typed domain errors for the strategy engine.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInputUnavailable = errors.New("input unavailable")
	ErrNoSurvivors      = errors.New("no strategies survived quality filters")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
)

// SkipReason enumerates why a single archetype could not be constructed.
// A skip is local to the archetype; the symbol's run continues.
type SkipReason string

const (
	ReasonNoLiquidStrikes    SkipReason = "no liquid strikes"
	ReasonNoStrikesNearSpot  SkipReason = "no strikes near spot"
	ReasonInsufficientSpread SkipReason = "insufficient strike spread"
	ReasonInsufficientExpiry SkipReason = "insufficient expiries"
	ReasonMissingQuote       SkipReason = "missing quote"
	ReasonBadStrikeOrder     SkipReason = "invalid strike ordering"
	ReasonUnknownArchetype   SkipReason = "unknown archetype"
)

// ConstructionError reports that one archetype could not be built from
// the available chain.
type ConstructionError struct {
	Archetype string
	Reason    SkipReason
	Detail    string
}

func (e *ConstructionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("construct %s: %s: %s", e.Archetype, e.Reason, e.Detail)
	}
	return fmt.Sprintf("construct %s: %s", e.Archetype, e.Reason)
}

// NewConstructionError creates a new ConstructionError.
func NewConstructionError(archetype string, reason SkipReason, detail string) *ConstructionError {
	return &ConstructionError{Archetype: archetype, Reason: reason, Detail: detail}
}

// MetricsError reports that a constructed instance was missing a required
// greek or premium. The instance is discarded before ranking.
type MetricsError struct {
	Archetype string
	Missing   string
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics %s: missing %s", e.Archetype, e.Missing)
}

// NewMetricsError creates a new MetricsError.
func NewMetricsError(archetype, missing string) *MetricsError {
	return &MetricsError{Archetype: archetype, Missing: missing}
}

// SymbolError wraps a failure that aborts one symbol's run. Other symbols
// in the batch are unaffected.
type SymbolError struct {
	Symbol string
	Stage  string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %s [%s]: %v", e.Symbol, e.Stage, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// NewSymbolError creates a new SymbolError.
func NewSymbolError(symbol, stage string, err error) *SymbolError {
	return &SymbolError{Symbol: symbol, Stage: stage, Err: err}
}

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
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
