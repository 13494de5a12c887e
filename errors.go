package keymarket

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound       = errors.New("keymarket: not found")
	ErrAlreadyExists  = errors.New("keymarket: already exists")
	ErrInvalidInput   = errors.New("keymarket: invalid input")
	ErrUnauthorized   = errors.New("keymarket: unauthorized")
	ErrInvalidAddress = errors.New("keymarket: invalid address")

	// Registry errors
	ErrAlreadyRegistered = errors.New("keymarket: creator already registered")
	ErrNotACreator       = errors.New("keymarket: not a registered creator")

	// Trading errors
	ErrInsufficientFunds = errors.New("keymarket: insufficient funds")
	ErrInsufficientKeys  = errors.New("keymarket: insufficient key balance")
	ErrScarcityLimit     = errors.New("keymarket: direct sale limit reached, buy from secondary holders instead")

	// Concurrency errors
	ErrReentrantCall = errors.New("keymarket: reentrant call rejected")

	// Store errors
	ErrStoreNotReady     = errors.New("keymarket: store not ready")
	ErrStoreClosed       = errors.New("keymarket: store is closed")
	ErrTransactionFailed = errors.New("keymarket: transaction failed")
	ErrMigrationFailed   = errors.New("keymarket: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("keymarket: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotACreator)
}

// IsInsufficient returns true if the error is a balance-related rejection.
func IsInsufficient(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientKeys)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrReentrantCall) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
