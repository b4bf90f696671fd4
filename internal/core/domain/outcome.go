package domain

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
)

// OutcomeKind is the result class of an executed intent.
type OutcomeKind int

const (
	// OutcomeSucceeded means the remote store accepted the change.
	OutcomeSucceeded OutcomeKind = iota + 1
	// OutcomeBusy means another mutation on the same key was in flight.
	OutcomeBusy
	// OutcomeRejected means the intent failed local validation.
	OutcomeRejected
	// OutcomeFailed means the remote store rejected or did not answer.
	OutcomeFailed
)

// String returns the lower-case name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeBusy:
		return "busy"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureKind classifies why an intent did not succeed.
type FailureKind int

const (
	// FailureValidation is a local rule or no-change rejection.
	FailureValidation FailureKind = iota + 1
	// FailureConflict is a revision mismatch reported by the remote store.
	FailureConflict
	// FailureNetwork is a timeout or transport error. The user may retry.
	FailureNetwork
	// FailureNotFound means the entity no longer exists remotely.
	FailureNotFound
	// FailureRemote is any other error reported by the remote store.
	FailureRemote
)

// String returns the lower-case name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureConflict:
		return "conflict"
	case FailureNetwork:
		return "network"
	case FailureNotFound:
		return "not_found"
	case FailureRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Failure is a classified error. It is returned by adapters and carried in
// outcomes so that callers can branch on Kind instead of error strings.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

// NewFailure creates a failure without an underlying cause.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Kind.String() + " failure"
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// messager matches errors that can report their own message without the chain.
type messager interface {
	Message() string
}

// Classify converts an arbitrary error into a Failure. A Failure already in
// the chain is returned as is.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: FailureNetwork, Message: "request timed out, please try again", Err: err}
	case errors.Is(err, context.Canceled):
		return &Failure{Kind: FailureNetwork, Message: "request was cancelled", Err: err}
	case errors.Is(err, driver.ErrBadConn), errors.As(err, &netErr):
		return &Failure{Kind: FailureNetwork, Message: "could not reach the server, please try again", Err: err}
	case errors.Is(err, ErrRevisionMismatch):
		return &Failure{Kind: FailureConflict, Message: ErrRevisionMismatch.Error(), Err: err}
	case errors.Is(err, ErrEntityNotFound):
		return &Failure{Kind: FailureNotFound, Message: ErrEntityNotFound.Error(), Err: err}
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrNoChanges):
		return &Failure{Kind: FailureValidation, Message: leadMessage(err), Err: err}
	default:
		return &Failure{Kind: FailureRemote, Message: leadMessage(err), Err: err}
	}
}

// leadMessage returns the first non-empty message in a zerr chain, or the
// full error text for other errors.
func leadMessage(err error) string {
	for current := err; current != nil; current = errors.Unwrap(current) {
		m, ok := current.(messager)
		if !ok {
			return current.Error()
		}
		if msg := m.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// Outcome is the result of executing an intent.
type Outcome struct {
	Kind    OutcomeKind
	Entity  Entity
	Failure *Failure
}

// OK reports whether the outcome succeeded.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSucceeded
}

// Err returns the outcome's failure as an error, or nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}
