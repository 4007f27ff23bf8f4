// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrInvalidAmount is a recoverable user-input failure, never a crash.
	ErrInvalidAmount = errors.New("not a number")

	// Oracle errors.
	ErrOracleUnavailable = errors.New("classifier unavailable")
	ErrOracleResponse    = errors.New("unparseable classifier response")

	// ErrInvalidConfig marks configuration the process cannot start with.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error whose UserMessage should be sent back to
// the conversation as natural-language guidance.
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

// UserMessage extracts the user-facing text from an error chain, or
// returns fallback when the chain carries none.
func UserMessage(err error, fallback string) string {
	var uerr *UserError
	if errors.As(err, &uerr) {
		return uerr.UserMessage
	}
	return fallback
}
