package errors

import (
	"fmt"
	"strings"
)

// ToyError is the interface implemented by all compiler errors.
type ToyError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during parsing: an unexpected token,
// a missing terminator or keyword, or premature end of input.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// NewSyntaxError creates a SyntaxError at the given position.
func NewSyntaxError(pos Position, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Position: pos,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// --- Display Helpers ---

// DisplayErrors formats a list of errors with a source excerpt and caret
// pointing at the offending column.
func DisplayErrors(errs []ToyError) string {
	var b strings.Builder
	for _, err := range errs {
		b.WriteString(FormatError(err))
	}
	return b.String()
}

// FormatError renders a single error with its source line, when available.
func FormatError(err ToyError) string {
	var b strings.Builder
	pos := err.Pos()

	fmt.Fprintf(&b, "%s Error at %s:%d:%d: %s\n", err.Kind(), displayName(pos), pos.Line, pos.Column, err.Message())

	if pos.Source != nil && pos.Line >= 1 && pos.Line <= len(pos.Source.Lines()) {
		line := pos.Source.Lines()[pos.Line-1]
		fmt.Fprintf(&b, "  %s\n", line)
		if pos.Column >= 1 && pos.Column <= len(line)+1 {
			fmt.Fprintf(&b, "  %s^\n", strings.Repeat(" ", pos.Column-1))
		}
	}

	return b.String()
}

func displayName(pos Position) string {
	if pos.Source == nil {
		return "<unknown>"
	}
	return pos.Source.DisplayPath()
}
