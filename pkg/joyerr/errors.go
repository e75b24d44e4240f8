// Package joyerr gives each error kind of the language's error-handling
// design a distinct Go type, so that the session driver can branch on
// error kind rather than inspecting message strings.
package joyerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// QuitRequested is not an error condition; it is returned by the
// evaluator to signal that `quit` was executed. Evaluator.Run checks
// for it with errors.Is and reports it to the session as a quit flag.
var QuitRequested = errors.New("quit requested")

// ParseError reports that input did not conform to the grammar, or
// left non-whitespace residue after a complete parse.
type ParseError struct {
	Line, Column int
	Msg          string
	cause        error
}

// NewParseError wraps cause (typically a participle error) with a
// Go-native ParseError carrying position information.
func NewParseError(line, column int, msg string, cause error) *ParseError {
	return &ParseError{Line: line, Column: column, Msg: msg, cause: errors.WithStack(cause)}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.cause }

// UndefinedSymbolError reports a symbol that is neither a builtin nor
// present in the environment.
type UndefinedSymbolError struct {
	Name string
}

func NewUndefinedSymbolError(name string) *UndefinedSymbolError {
	return &UndefinedSymbolError{Name: name}
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol: %s", e.Name)
}

// TypeError reports a builtin receiving a stack value of the wrong
// variant.
type TypeError struct {
	Op       string
	Expected string
	Got      string
}

func NewTypeError(op, expected, got string) *TypeError {
	return &TypeError{Op: op, Expected: expected, Got: got}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Op, e.Expected, e.Got)
}

// UnderflowError reports a builtin popping from an empty stack. Per
// the language's error-handling design it is treated identically to
// TypeError by callers that only care about "recoverable runtime
// error", but keeps its own type for precise reporting.
type UnderflowError struct {
	Op string
}

func NewUnderflowError(op string) *UnderflowError {
	return &UnderflowError{Op: op}
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("%s: stack underflow", e.Op)
}

// GasExhaustedError reports that a session-configured step budget ran
// out mid-evaluation. It exists because the language has no tail-call
// optimisation (spec Non-goals); the gas budget is the CLI's guard
// against a runaway recursive combinator, not part of the core error
// taxonomy, so the session driver treats it like TypeError: abort the
// current evaluation, keep the session alive.
type GasExhaustedError struct{}

func NewGasExhaustedError() *GasExhaustedError { return &GasExhaustedError{} }

func (e *GasExhaustedError) Error() string { return "gas exhausted" }

// Wrap attaches a stack trace to a lower-level error using pkg/errors,
// for use at the boundary where the REPL shell reports an error.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
