// Package whierr defines the error vocabulary shared by every whi core
// package and the exit-code mapping the CLI layer applies to it.
package whierr

import (
	"errors"
	"fmt"
)

// Kind tags an Error with one of the error kinds the design calls out.
type Kind int

const (
	Usage Kind = iota
	NotFound
	OutOfRange
	EmptyResult
	AlreadyActive
	InactiveVenv
	ParseFailure
	IoFailure
	InvalidName
	ProtectedPathMissing
)

func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case NotFound:
		return "not_found"
	case OutOfRange:
		return "out_of_range"
	case EmptyResult:
		return "empty_result"
	case AlreadyActive:
		return "already_active"
	case InactiveVenv:
		return "inactive_venv"
	case ParseFailure:
		return "parse_failure"
	case IoFailure:
		return "io_failure"
	case InvalidName:
		return "invalid_name"
	case ProtectedPathMissing:
		return "protected_path_missing"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind and the operation that
// produced it, so the CLI layer can compute an exit code without
// string-matching.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for op/kind wrapping err (which may be nil).
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Newf builds an *Error whose wrapped error is fmt.Errorf(format, args...).
func Newf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps a Kind onto the exit codes in the CLI surface contract:
// 0 success, 1 logical failure, 2 usage/operation error, 3 I/O/environment
// error. Callers pass the error returned by a core operation; a nil error
// or one that isn't a *Error maps to 0 / 1 respectively.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	wErr, ok := err.(*Error)
	if !ok {
		return 1
	}
	switch wErr.Kind {
	case Usage, OutOfRange, EmptyResult, AlreadyActive, InactiveVenv, InvalidName:
		return 2
	case IoFailure, ProtectedPathMissing:
		return 3
	case NotFound, ParseFailure:
		return 1
	default:
		return 1
	}
}

// As reports whether err (or a wrapped error) is a *Error of kind k.
func As(err error, k Kind) bool {
	var wErr *Error
	return errors.As(err, &wErr) && wErr.Kind == k
}
