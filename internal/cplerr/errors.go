// Package cplerr defines the three error strata described in the design's
// error-handling section: parse errors, generation errors, and runtime
// errors. Each carries enough source context to produce a useful message
// without unwinding through exceptions.
package cplerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Stratum string

const (
	Parse     Stratum = "ParseError"
	Generation Stratum = "GenerationError"
	Runtime   Stratum = "RuntimeError"
)

// Error carries a stratum, message, and source location. Cause wraps an
// underlying error (e.g. from an included file or a builtin) via
// github.com/pkg/errors so a stack trace survives to the top-level reporter.
type Error struct {
	Stratum  Stratum
	Message  string
	File     string
	Line     int
	LineText string
	Expected []string // parse errors: the expected trigger set for this state
	Cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Stratum, e.Message))
	if e.File != "" || e.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (%s:%d)", e.File, e.Line))
	}
	if e.LineText != "" {
		sb.WriteString("\n  " + strings.TrimRight(e.LineText, "\n"))
	}
	if len(e.Expected) > 0 {
		sb.WriteString(fmt.Sprintf("\n  expected one of: %s", strings.Join(e.Expected, ", ")))
	}
	if e.Cause != nil {
		sb.WriteString("\n  caused by: " + e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func NewParseError(file string, line int, lineText, message string, expected ...string) *Error {
	return &Error{Stratum: Parse, Message: message, File: file, Line: line, LineText: lineText, Expected: expected}
}

func NewGenerationError(file string, line int, message string) *Error {
	return &Error{Stratum: Generation, Message: message, File: file, Line: line}
}

func NewRuntimeError(message string) *Error {
	return &Error{Stratum: Runtime, Message: message}
}

// Wrap attaches additional context the way github.com/pkg/errors does,
// preserving the original error's stack trace.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, context)
}
