// Package errs defines the error taxonomy shared across the recall core.
//
// Every error surfaced to a caller carries a stable machine-readable code,
// a human-readable message, and optional structured data such as the
// offending identifier. Store and provider failures are classified at the
// boundary where they occur; validation errors are raised before any I/O.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable machine-readable error category.
type Code string

const (
	// CodeValidation marks bad caller input. Validation errors never reach
	// the store or the embedding provider.
	CodeValidation Code = "validation"

	// CodeStore marks graph-store failures: connectivity, constraint
	// violations, missing backing services.
	CodeStore Code = "store"

	// CodeService marks embedding-provider unavailability or failure.
	CodeService Code = "service_unavailable"

	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"

	// CodeOperation is the last-resort wrapper for failures that match no
	// known shape.
	CodeOperation Code = "operation"
)

// Error is the concrete error type used throughout the core.
type Error struct {
	Code    Code
	Message string
	Data    map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If the
// underlying error already carries a code, that code wins so classification
// done close to the failure is not overwritten further up the stack.
func Wrap(code Code, message string, err error) *Error {
	if err == nil {
		return nil
	}
	if coded := CodeOf(err); coded != "" {
		code = coded
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WithData attaches structured context to the error and returns it.
func (e *Error) WithData(key string, value any) *Error {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// Validation is shorthand for a caller-input error.
func Validation(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// NotFound reports a missing entity, recording its identifier.
func NotFound(kind, id string) *Error {
	return Newf(CodeNotFound, "%s not found: %s", kind, id).WithData("id", id)
}

// CodeOf extracts the code from an error chain, or "" if none is present.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the error chain carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// ClassifyStore re-classifies a raw graph-store error into a typed cause
// by inspecting the driver's error text. Unrecognized failures fall back
// to CodeStore rather than CodeOperation: anything returned by the store
// client is still a store-side fault.
func ClassifyStore(err error) *Error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connectivityerror"),
		strings.Contains(msg, "unable to retrieve routing table"),
		strings.Contains(msg, "no reachable servers"):
		return &Error{Code: CodeStore, Message: "graph store unreachable", Err: err}
	case strings.Contains(msg, "constraintvalidationfailed"),
		strings.Contains(msg, "constraint violation"):
		return &Error{Code: CodeStore, Message: "graph store constraint violation", Err: err}
	case strings.Contains(msg, "there is no such vector schema index"),
		strings.Contains(msg, "unknown function"),
		strings.Contains(msg, "procedure not found"):
		return &Error{Code: CodeStore, Message: "required store capability missing", Err: err}
	default:
		return &Error{Code: CodeStore, Message: "graph store query failed", Err: err}
	}
}
