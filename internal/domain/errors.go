package domain

import (
	"errors"
	"fmt"
)

// Business-rule violations are user-correctable input errors: they are
// reported by the component that owns the rule and never retried. A
// StoreError is the one kind a caller may reasonably retry.
var (
	// ErrInvalidCredentials is returned for both a wrong password and an
	// unknown account, so a caller cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid account or password")

	// ErrNotAuthenticated indicates the operation needs a live session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAccessDenied indicates the session's role does not permit the
	// operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrDuplicateAccount indicates the account handle is already taken.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrDuplicateResultPair indicates the patient already has a result
	// for the item; the existing record should be updated instead.
	ErrDuplicateResultPair = errors.New("patient already has a result for this item, use update instead")

	// ErrScoreOutOfRange indicates the score falls outside the allowed bound.
	ErrScoreOutOfRange = errors.New("score must be between 1 and 10")

	// ErrSelfDeleteForbidden indicates a session tried to delete its own user.
	ErrSelfDeleteForbidden = errors.New("cannot delete your own account")

	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Change-password guard failures, each a distinct user-visible reason.
var (
	// ErrPasswordMismatch indicates new and confirmation passwords differ.
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")

	// ErrPasswordFormat indicates the new password violates the policy:
	// a 12-character mix of uppercase, lowercase and digits only.
	ErrPasswordFormat = errors.New("password must be exactly 12 characters mixing uppercase, lowercase and digits")

	// ErrWrongPassword indicates the submitted current password is wrong.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// ValidationError names the missing or invalid field that blocked an
// operation before any store mutation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is missing or invalid", e.Field)
}

// NewValidationError builds a ValidationError for the named field.
func NewValidationError(field string) error {
	return &ValidationError{Field: field}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps an underlying store failure. The core performs no
// retries; callers may.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore wraps err as a StoreError unless it is nil.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is (or wraps) a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
