package models

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAccountNotFound      = errors.New("account not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrSelfTransfer         = errors.New("cannot transfer to own account")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrWrongPassword        = errors.New("incorrect password")
	ErrNotVerifiedAccount   = errors.New("account not verified")
	ErrDuplicatePhone       = errors.New("phone number already registered")
	ErrInvalidAmount        = errors.New("invalid amount")

	// ErrVerificationFailed is a transient lookup failure; callers may retry.
	ErrVerificationFailed = errors.New("verification failed, please try again")

	ErrBiometricsDisabled   = errors.New("biometric login not enabled")
	ErrGoalNotFound         = errors.New("savings goal not found")
	ErrInstructionNotFound  = errors.New("recurring payment not found")
	ErrFlowNotFound         = errors.New("payment flow not found")
	ErrInvalidTransition    = errors.New("invalid payment flow transition")
	ErrRecurrenceNotAllowed = errors.New("recurrence not available for this service")
	ErrInvalidField         = errors.New("invalid field")
)

// FieldError reports a problem with one form field
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrVerificationFailed)
}
