// Package stream holds the configuration and error types shared by the
// jetstream reader and its internal lexing and parsing packages.
package stream

import (
	"errors"
	"fmt"

	"github.com/shapestone/jetstream/pkg/value"
)

// Kind classifies a reader error.
type Kind int

const (
	// KindIO covers unreadable streams, closed streams, read/seek/open
	// failures and configuration values outside their allowed range.
	KindIO Kind = iota

	// KindParse covers every lex-level or parse-level malformation.
	// Parse errors carry a 1-based line and column.
	KindParse

	// KindPath covers compile-time rejection of a path expression.
	// Path errors carry the offending path text.
	KindPath

	// KindArgument covers programmer misuse at the reader entry points.
	KindArgument
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindPath:
		return "path"
	case KindArgument:
		return "argument"
	}
	return "unknown"
}

// Error is the single error type surfaced by the library.
// Consumers can catch every library failure with one errors.As target
// and switch on Kind for finer handling.
type Error struct {
	Kind     Kind
	Message  string
	Position value.Position // set for parse errors
	PathText string         // set for path errors
	File     string         // set for io errors with a known file
	Err      error          // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindParse:
		if e.Position.IsValid() {
			return fmt.Sprintf("error at line %d, column %d: %s",
				e.Position.Line, e.Position.Column, e.Message)
		}
		return fmt.Sprintf("parse error: %s", e.Message)
	case KindPath:
		if e.PathText != "" {
			return fmt.Sprintf("invalid path %q: %s", e.PathText, e.Message)
		}
		return fmt.Sprintf("path error: %s", e.Message)
	case KindIO:
		if e.File != "" {
			return fmt.Sprintf("io error: %s: %s", e.File, e.Message)
		}
		return fmt.Sprintf("io error: %s", e.Message)
	case KindArgument:
		return fmt.Sprintf("argument error: %s", e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewIOError creates an IO error with an optional file path and cause.
func NewIOError(message, file string, cause error) *Error {
	return &Error{
		Kind:    KindIO,
		Message: message,
		File:    file,
		Err:     cause,
	}
}

// NewParseError creates a parse error with position.
func NewParseError(pos value.Position, message string) *Error {
	return &Error{
		Kind:     KindParse,
		Message:  message,
		Position: pos,
	}
}

// NewUnexpectedTokenError creates a parse error for unexpected tokens.
func NewUnexpectedTokenError(pos value.Position, got string) *Error {
	return NewParseError(pos, fmt.Sprintf("Unexpected token %s", got))
}

// NewUnexpectedEOFError creates a parse error for truncated input.
func NewUnexpectedEOFError(pos value.Position) *Error {
	return NewParseError(pos, "Unexpected end of file")
}

// NewPathError creates a path compile error carrying the offending text.
func NewPathError(pathText, message string) *Error {
	return &Error{
		Kind:     KindPath,
		Message:  message,
		PathText: pathText,
	}
}

// NewArgumentError creates an argument misuse error.
func NewArgumentError(message string) *Error {
	return &Error{
		Kind:    KindArgument,
		Message: message,
	}
}

// IsKind reports whether err is a library error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
