// Package errs provides the error type shared by every stage of an import
// run.
//
// Stages wrap their native errors (csv, database/sql, parse failures) into
// *errs.Error so callers can decide how to react by kind without knowing
// which stage produced the failure:
//
//	if errs.IsConfiguration(err) {
//	    // fix the config file, nothing touched the database
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindUnknown             Kind = iota
	KindConfiguration            // invalid or missing configuration; raised before any I/O
	KindSourceFormat             // unreadable or empty source, inconsistent row shape
	KindRowCoercion              // a value could not be coerced to its column type
	KindErrorBudgetExceeded      // too many row failures
	KindStorage                  // DDL, insert or transaction failure
	KindRowRejected              // the database refused a single row (constraint, type)
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindSourceFormat:
		return "source_format"
	case KindRowCoercion:
		return "row_coercion"
	case KindErrorBudgetExceeded:
		return "error_budget_exceeded"
	case KindStorage:
		return "storage"
	case KindRowRejected:
		return "row_rejected"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the import stages.
type Error struct {
	Kind    Kind
	Message string
	// Line is the 1-based source line the error refers to, or 0.
	Line  int
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// AtLine returns a copy of e bound to a source line.
func (e *Error) AtLine(line int) *Error {
	cp := *e
	cp.Line = line
	return &cp
}

func IsConfiguration(err error) bool       { return KindOf(err) == KindConfiguration }
func IsSourceFormat(err error) bool        { return KindOf(err) == KindSourceFormat }
func IsRowCoercion(err error) bool         { return KindOf(err) == KindRowCoercion }
func IsErrorBudgetExceeded(err error) bool { return KindOf(err) == KindErrorBudgetExceeded }
func IsStorage(err error) bool             { return KindOf(err) == KindStorage }
func IsRowRejected(err error) bool         { return KindOf(err) == KindRowRejected }

// KindOf extracts the Kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
