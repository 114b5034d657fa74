package engine

import (
	"errors"
	"fmt"
)

// QueryError is a failure reported by the engine for a submitted statement.
type QueryError struct {
	QueryID   string
	Message   string
	ErrorName string

	// Line and Column locate the error in the statement text. Zero means the
	// engine reported no location.
	Line   int
	Column int

	Err error
}

// Error implements error.
func (e *QueryError) Error() string {
	msg := e.message()
	if e.QueryID != "" {
		return fmt.Sprintf("query %s failed: %s", e.QueryID, msg)
	}
	return "query failed: " + msg
}

// Unwrap returns the underlying cause.
func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) message() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	if e.ErrorName != "" {
		return e.ErrorName
	}
	return "unknown engine error"
}

// Failure is the normalized form of any adapter failure.
type Failure struct {
	Message string

	// SourceLine is set only when the engine reported a location.
	SourceLine *int
}

// Translate normalizes an adapter failure. The message is never empty.
func Translate(err error) Failure {
	if err == nil {
		return Failure{Message: "unknown error"}
	}

	var qe *QueryError
	if errors.As(err, &qe) {
		f := Failure{Message: qe.message()}
		if qe.Line > 0 {
			line := qe.Line
			f.SourceLine = &line
		}
		return f
	}

	if msg := err.Error(); msg != "" {
		return Failure{Message: msg}
	}
	return Failure{Message: fmt.Sprintf("%T", err)}
}
