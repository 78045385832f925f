// Package apperror defines the error taxonomy shared by the ledger and
// the settlement engine. The route layer maps kinds to HTTP statuses;
// nothing in here knows about transports.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers that branch on failure class.
type Kind int

const (
	// KindInfrastructure covers store or external-service failures.
	// It is the default classification for unrecognized errors.
	KindInfrastructure Kind = iota
	// KindValidation covers malformed or out-of-range input.
	KindValidation
	// KindNotFound covers references to absent entities.
	KindNotFound
	// KindConflict covers uniqueness or state invariant violations.
	KindConflict
	// KindInsufficientFunds rejects a BUY the balance can't cover.
	KindInsufficientFunds
	// KindInsufficientHoldings rejects a SELL of more than is held.
	KindInsufficientHoldings
	// KindUnauthorized covers failed credential or status checks.
	KindUnauthorized
)

// Error carries a kind, a user-facing message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (err *Error) Error() string {
	if err.Err != nil {
		return err.Message + ": " + err.Err.Error()
	}

	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Err
}

// KindOf returns the kind of an error, defaulting to infrastructure
// for errors raised outside the taxonomy.
func KindOf(err error) Kind {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	var violations Violations

	if errors.As(err, &violations) {
		return KindValidation
	}

	return KindInfrastructure
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func InsufficientFunds(message string) error {
	return &Error{Kind: KindInsufficientFunds, Message: message}
}

func InsufficientHoldings(message string) error {
	return &Error{Kind: KindInsufficientHoldings, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Infrastructure wraps a store or external-service failure.
func Infrastructure(message string, err error) error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: err}
}

// Violation is one field-level input problem.
type Violation struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

// Violations aggregates every input problem found in a request, so
// callers can report all of them rather than just the first.
type Violations []Violation

func (violations Violations) Error() string {
	parts := make([]string, len(violations))

	for i, violation := range violations {
		parts[i] = violation.Field + ": " + violation.Problem
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Check appends a violation when ok is false and returns the list
// either way, so validators read as straight-line code.
func (violations Violations) Check(ok bool, field, problem string) Violations {
	if !ok {
		return append(violations, Violation{field, problem})
	}

	return violations
}

func (violations Violations) Checkf(ok bool, field, format string, args ...any) Violations {
	return violations.Check(ok, field, fmt.Sprintf(format, args...))
}

// OrNil returns the list as an error, or nil when no violations exist.
func (violations Violations) OrNil() error {
	if len(violations) == 0 {
		return nil
	}

	return violations
}
