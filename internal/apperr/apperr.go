// Package apperr defines the error taxonomy shared across teamctl's
// packages: a small Kind enum identifies the category, and a typed Error
// wraps the underlying cause for errors.Is/As.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed, independent of which package
// raised it. Callers that need to map an error onto a CLI exit code or a
// tool-surface response shape switch on Kind rather than matching strings.
type Kind int

const (
	// KindNotFound means the referenced entity does not exist.
	KindNotFound Kind = iota
	// KindInvalidArgument means the caller supplied a malformed request.
	KindInvalidArgument
	// KindConflict means the operation would violate a uniqueness or
	// one-of invariant (e.g. duplicate name, second lead).
	KindConflict
	// KindInvariantViolation means an operation would leave persisted
	// state in a structurally inconsistent form (e.g. a task cycle).
	KindInvariantViolation
	// KindSpawnFailed means launching a backend's child process failed.
	KindSpawnFailed
	// KindExternalUnavailable means a required external binary or
	// resource (a backend CLI, tmux) is not present or not reachable.
	KindExternalUnavailable
	// KindIOFailure means a filesystem or lock operation failed.
	KindIOFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	case KindInvariantViolation:
		return "invariant_violation"
	case KindSpawnFailed:
		return "spawn_failed"
	case KindExternalUnavailable:
		return "external_unavailable"
	case KindIOFailure:
		return "io_failure"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error that wraps an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs a Kind-tagged error with no wrapped cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs a Kind-tagged error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the Kind carried by err, or KindIOFailure with ok=false if
// err is not (or does not wrap) an *Error. Callers defaulting an unclassified
// error onto a CLI exit code should still exit non-zero either way.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindIOFailure, false
}

// NotFound is a convenience constructor for KindNotFound.
func NotFound(format string, args ...interface{}) error {
	return Newf(KindNotFound, format, args...)
}

// InvalidArgument is a convenience constructor for KindInvalidArgument.
func InvalidArgument(format string, args ...interface{}) error {
	return Newf(KindInvalidArgument, format, args...)
}

// Conflict is a convenience constructor for KindConflict.
func Conflict(format string, args ...interface{}) error {
	return Newf(KindConflict, format, args...)
}

// InvariantViolation is a convenience constructor for KindInvariantViolation.
func InvariantViolation(format string, args ...interface{}) error {
	return Newf(KindInvariantViolation, format, args...)
}

// SpawnFailed wraps cause under KindSpawnFailed.
func SpawnFailed(message string, cause error) error {
	return Wrap(KindSpawnFailed, message, cause)
}

// ExternalUnavailable is a convenience constructor for KindExternalUnavailable.
func ExternalUnavailable(format string, args ...interface{}) error {
	return Newf(KindExternalUnavailable, format, args...)
}

// IOFailure wraps cause under KindIOFailure.
func IOFailure(message string, cause error) error {
	return Wrap(KindIOFailure, message, cause)
}
