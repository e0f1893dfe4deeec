// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Session errors.
	ErrCredentialExpired = errors.New("refresh credential expired")
	ErrCredentialRefresh = errors.New("credential refresh failed")

	// Confirmation errors.
	ErrFetchFailed  = errors.New("confirmation fetch failed")
	ErrActionFailed = errors.New("confirmation action failed")

	// Store errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrNoActiveAccount = errors.New("no active account")
	ErrEntryNotFound   = errors.New("review entry not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrCredentialExpired) {
		// Only a full re-login can recover this.
		return false
	}

	if errors.Is(err, ErrCredentialRefresh) ||
		errors.Is(err, ErrFetchFailed) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
