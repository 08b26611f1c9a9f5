// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ferrors defines the error-kind taxonomy shared by every
// Fuzzbin component. Callers distinguish kinds with errors.As against
// *Error, never by matching strings.
package ferrors

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error classification.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindDuplicate     Kind = "duplicate"
	KindInvalidInput  Kind = "invalid_input"
	KindTransient     Kind = "transient"
	KindExternal      Kind = "external"
	KindIntegrity     Kind = "integrity"
	KindConcurrency   Kind = "concurrency"
	KindFatal         Kind = "fatal"
)

// Error is the common envelope for every Fuzzbin-taxonomy error.
type Error struct {
	Kind Kind
	// Code is a finer-grained tag within Kind, e.g. "InvalidPattern",
	// "MissingField", "HashMismatch", "RollbackFailed".
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ferrors.ErrNotFound) style kind checks when the
// sentinel itself carries only a Kind (Code/Msg/Err left zero).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Msg == "" && t.Err == nil
}

func newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFound(kind, id) error per §4.F's failure model.
func NotFound(entityKind string, id any) *Error {
	return &Error{Kind: KindNotFound, Code: entityKind, Msg: fmt.Sprintf("%s %v not found", entityKind, id)}
}

// Duplicate builds a Duplicate(kind, key) error.
func Duplicate(entityKind string, key any) *Error {
	return &Error{Kind: KindDuplicate, Code: entityKind, Msg: fmt.Sprintf("%s with key %v already exists", entityKind, key)}
}

// InvalidQuery wraps a query-builder validation failure.
func InvalidQuery(format string, args ...any) *Error {
	return newf(KindInvalidInput, "InvalidQuery", format, args...)
}

// InvalidPattern is raised by the path organizer (§4.H) on unknown or
// list-typed fields in a pattern.
func InvalidPattern(format string, args ...any) *Error {
	return newf(KindInvalidInput, "InvalidPattern", format, args...)
}

// MissingField is raised by the path organizer when a required field is
// absent or blank.
func MissingField(field string) *Error {
	return newf(KindInvalidInput, "MissingField", "field %q is required but empty", field)
}

// InvalidPath is raised when a root path is missing or not a directory.
func InvalidPath(format string, args ...any) *Error {
	return newf(KindInvalidInput, "InvalidPath", format, args...)
}

// InvalidYear is raised when a video's year is supplied but falls
// outside the 1900-2100 range §3 allows.
func InvalidYear(year int) *Error {
	return newf(KindInvalidInput, "InvalidYear", "year %d is outside the valid range 1900-2100", year)
}

// TransactionFailed wraps a store transaction failure.
func TransactionFailed(err error) *Error {
	return &Error{Kind: KindTransient, Code: "TransactionFailed", Msg: "store transaction failed", Err: err}
}

// Transient wraps a retryable network/store-busy condition.
func Transient(code string, err error) *Error {
	return &Error{Kind: KindTransient, Code: code, Msg: "transient failure", Err: err}
}

// External wraps a non-retryable upstream response.
func External(format string, args ...any) *Error {
	return newf(KindExternal, "External", format, args...)
}

// Integrity wraps HashMismatch/checksum-drift/migration-mismatch failures.
func Integrity(code string, format string, args ...any) *Error {
	return newf(KindIntegrity, code, format, args...)
}

// Concurrency wraps timeout/cancellation failures on a blocking wait.
func Concurrency(code string, err error) *Error {
	return &Error{Kind: KindConcurrency, Code: code, Msg: "operation cancelled or timed out", Err: err}
}

// Fatal wraps an unrecoverable failure requiring operator intervention.
func Fatal(code string, originalErr, rollbackErr error) *Error {
	msg := "unrecoverable failure"
	var err error
	if rollbackErr != nil {
		msg = fmt.Sprintf("rollback failed after original error (%v)", originalErr)
		err = rollbackErr
	} else {
		err = originalErr
	}
	return &Error{Kind: KindFatal, Code: code, Msg: msg, Err: err}
}

// Sentinel kind values usable directly with errors.Is(err, ferrors.ErrX);
// Error.Is matches them by Kind.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrDuplicate    = &Error{Kind: KindDuplicate}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrTransient    = &Error{Kind: KindTransient}
	ErrExternal     = &Error{Kind: KindExternal}
	ErrIntegrity    = &Error{Kind: KindIntegrity}
	ErrConcurrency  = &Error{Kind: KindConcurrency}
	ErrFatal        = &Error{Kind: KindFatal}
)

// KindOf extracts the Kind from any error in the chain, or "" if none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// CodeOf extracts the Code from any error in the chain, or "" if none.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
