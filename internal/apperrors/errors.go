// Package apperrors defines the error taxonomy shared by the ledger, the
// auth service and the HTTP layer. Handlers translate these into status
// codes; everything else wraps them with %w and lets errors.Is/As decide.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrIdeaNotFound is returned when an operation references an idea
	// that does not exist (or no longer exists).
	ErrIdeaNotFound = errors.New("idea not found")

	// ErrCommentNotFound is returned when a comment id does not resolve.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrDuplicateVote is surfaced when the (idea, voter) uniqueness
	// constraint rejects a vote insert. The constraint is the sole source
	// of truth for "already voted"; callers never pre-check.
	ErrDuplicateVote = errors.New("already voted for this idea")

	// ErrPermission is returned when the actor's role does not grant the
	// requested operation.
	ErrPermission = errors.New("permission denied")

	// ErrInvalidCredentials covers failed logins without revealing which
	// half of the pair was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registration hits the unique email index.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInvitation covers unknown, expired and exhausted
	// invitation codes alike.
	ErrInvalidInvitation = errors.New("invitation code is invalid or exhausted")

	// ErrInvalidVerification covers wrong or expired email verification codes.
	ErrInvalidVerification = errors.New("verification code is invalid or expired")
)

// ValidationError reports bad input shape or length. Field names the
// offending input so the frontend can highlight it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransactionError marks a storage-layer failure where the enclosing
// transaction rolled back and no partial state was persisted.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// NewTransaction wraps err as a TransactionError for operation op.
func NewTransaction(op string, err error) error {
	return &TransactionError{Op: op, Err: err}
}

// IsTransaction reports whether err is (or wraps) a TransactionError.
func IsTransaction(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}
