package database

import (
	"errors"
	"fmt"
)

// Set of error codes carried by the ledger errors.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeState      = "STATE_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeConsensus  = "CONSENSUS_ERROR"
)

// ValidationError is returned for malformed input, signature mismatches,
// insufficient balances or ownership and disallowed asset states.
type ValidationError struct {
	Err error
}

// NewValidationError constructs a validation error with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Err.Error() }

// Unwrap provides access to the wrapped error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *ValidationError) Code() string { return CodeValidation }

// IsValidationError reports whether a validation error exists in the chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// =============================================================================

// StateError is returned when an account or asset is missing or inconsistent.
type StateError struct {
	Err error
}

// NewStateError constructs a state error with a formatted message.
func NewStateError(format string, args ...any) error {
	return &StateError{Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *StateError) Error() string { return e.Err.Error() }

// Unwrap provides access to the wrapped error.
func (e *StateError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *StateError) Code() string { return CodeState }

// IsStateError reports whether a state error exists in the chain.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// =============================================================================

// ConsensusError is returned when a block or chain fails integrity checks.
type ConsensusError struct {
	Err error
}

// NewConsensusError constructs a consensus error with a formatted message.
func NewConsensusError(format string, args ...any) error {
	return &ConsensusError{Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *ConsensusError) Error() string { return e.Err.Error() }

// Unwrap provides access to the wrapped error.
func (e *ConsensusError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *ConsensusError) Code() string { return CodeConsensus }

// IsConsensusError reports whether a consensus error exists in the chain.
func IsConsensusError(err error) bool {
	var ce *ConsensusError
	return errors.As(err, &ce)
}

// =============================================================================

// NetworkError is returned when a peer can't be reached.
type NetworkError struct {
	Err error
}

// NewNetworkError constructs a network error with a formatted message.
func NewNetworkError(format string, args ...any) error {
	return &NetworkError{Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *NetworkError) Error() string { return e.Err.Error() }

// Unwrap provides access to the wrapped error.
func (e *NetworkError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *NetworkError) Code() string { return CodeNetwork }
