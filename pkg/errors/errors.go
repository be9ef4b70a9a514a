// Package errors defines the coded errors shared by the CLI and the HTTP API.
//
// Every failure that reaches a user carries a [Code]. Codes group into a
// [Kind], which the CLI maps to an exit status and the API maps to an HTTP
// status:
//
//   - INVALID_*: the caller sent something unusable (KindInvalid)
//   - *NOT_FOUND: a file, node, layer or record does not exist (KindNotFound)
//   - STORE_*: override persistence failed (KindStore)
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "node %q: negative value", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject
//	}
//
//	err = errors.Wrap(errors.ErrCodeStoreWrite, cause, "save %s", record)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidRules  Code = "INVALID_RULES"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStore  Code = "INVALID_STORE"
	ErrCodeInvalidRecord Code = "INVALID_RECORD"
	ErrCodeInvalidKey    Code = "INVALID_KEY"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeStoreRead  Code = "STORE_READ"
	ErrCodeStoreWrite Code = "STORE_WRITE"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by who has to act on them.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindStore
)

// Kind classifies c. Unknown and empty codes are internal.
func (c Code) Kind() Kind {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidRules, ErrCodeInvalidFormat,
		ErrCodeInvalidStore, ErrCodeInvalidRecord, ErrCodeInvalidKey,
		ErrCodeUnsupported:
		return KindInvalid
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return KindNotFound
	case ErrCodeStoreRead, ErrCodeStoreWrite:
		return KindStore
	}
	return KindInternal
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause. If cause already carries a message
// for the user it is kept reachable through [UserMessage].
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf classifies err by its code.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// UserMessage returns the message to show a user: the coded message followed
// by the cause, without code prefixes. Plain errors are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}

// ExitCode maps err to a process exit status: 2 for invalid input or a
// missing resource, 1 otherwise.
func ExitCode(err error) int {
	switch KindOf(err) {
	case KindInvalid, KindNotFound:
		return 2
	}
	return 1
}
