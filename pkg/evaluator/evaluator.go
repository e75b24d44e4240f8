// Package evaluator executes a parsed program against a stack and an
// environment, dispatching built-ins and user-defined words. It is
// re-entrant: combinators call back into it with derived programs and
// sometimes temporary sub-stacks.
package evaluator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/psil-lang/joy/pkg/env"
	"github.com/psil-lang/joy/pkg/joyerr"
	"github.com/psil-lang/joy/pkg/values"
)

// Evaluator is the language's execution engine: one stack, one
// environment, the builtin dictionary, and the error/gas registers
// that let combinators observe and propagate failure.
type Evaluator struct {
	Stack []values.Value
	Env   *env.Environment

	builtins map[string]func(*Evaluator) error

	// CFlag is set once a runtime error aborts the current evaluation.
	CFlag bool
	// ARegister holds the joyerr error kind responsible for CFlag.
	ARegister error

	// Gas is the remaining step budget; MaxGas == 0 means unlimited.
	Gas, MaxGas int

	Output io.Writer
	Debug  bool
}

// New returns an Evaluator with every builtin and combinator registered.
func New() *Evaluator {
	e := &Evaluator{
		Stack:    make([]values.Value, 0, 64),
		Env:      env.New(),
		builtins: make(map[string]func(*Evaluator) error),
		Output:   os.Stdout,
	}
	e.registerBuiltins()
	e.registerCombinators()
	return e
}

// Reset clears the stack and error/gas registers. The environment and
// the builtin dictionary survive, matching the session's persistence
// contract (stack and environment are session-scoped; Reset clears
// only the stack, and only when a caller asks for it).
func (e *Evaluator) Reset() {
	e.Stack = e.Stack[:0]
	e.ClearError()
	if e.MaxGas > 0 {
		e.Gas = e.MaxGas
	}
}

func (e *Evaluator) setError(err error) error {
	e.CFlag = true
	e.ARegister = err
	return err
}

// ClearError clears the error register without touching the stack.
func (e *Evaluator) ClearError() {
	e.CFlag = false
	e.ARegister = nil
}

// HasError reports whether a runtime error is currently latched.
func (e *Evaluator) HasError() bool { return e.CFlag }

func (e *Evaluator) consumeGas() bool {
	if e.MaxGas == 0 {
		return true
	}
	e.Gas--
	if e.Gas < 0 {
		e.setError(joyerr.NewGasExhaustedError())
		return false
	}
	return true
}

// Push places a value on top of the stack.
func (e *Evaluator) Push(v values.Value) {
	e.Stack = append(e.Stack, v)
}

// Pop removes and returns the top value, failing with UnderflowError
// if the stack is empty.
func (e *Evaluator) Pop() (values.Value, error) {
	if len(e.Stack) == 0 {
		return nil, e.setError(joyerr.NewUnderflowError("pop"))
	}
	v := e.Stack[len(e.Stack)-1]
	e.Stack = e.Stack[:len(e.Stack)-1]
	return v, nil
}

// Peek returns the top value without removing it.
func (e *Evaluator) Peek(op string) (values.Value, error) {
	return e.PeekN(op, 0)
}

// PeekN returns the value n positions below the top (0 is the top).
func (e *Evaluator) PeekN(op string, n int) (values.Value, error) {
	idx := len(e.Stack) - 1 - n
	if idx < 0 {
		return nil, e.setError(joyerr.NewUnderflowError(op))
	}
	return e.Stack[idx], nil
}

// PopQuotation pops a value and requires it to be a Quotation.
func (e *Evaluator) PopQuotation(op string) (*values.Quotation, error) {
	v, err := e.Pop()
	if err != nil {
		return nil, err
	}
	q, ok := v.(*values.Quotation)
	if !ok {
		return nil, e.setError(joyerr.NewTypeError(op, "quotation", v.Type()))
	}
	return q, nil
}

// PopBoolean pops a value and requires it to be a Boolean.
func (e *Evaluator) PopBoolean(op string) (values.Boolean, error) {
	v, err := e.Pop()
	if err != nil {
		return false, err
	}
	b, ok := v.(values.Boolean)
	if !ok {
		return false, e.setError(joyerr.NewTypeError(op, "boolean", v.Type()))
	}
	return b, nil
}

// PopText pops a value and requires it to be Text.
func (e *Evaluator) PopText(op string) (values.Text, error) {
	v, err := e.Pop()
	if err != nil {
		return "", err
	}
	s, ok := v.(values.Text)
	if !ok {
		return "", e.setError(joyerr.NewTypeError(op, "text", v.Type()))
	}
	return s, nil
}

// PopInteger pops a value and requires it to be an Integer.
func (e *Evaluator) PopInteger(op string) (values.Integer, error) {
	v, err := e.Pop()
	if err != nil {
		return 0, err
	}
	n, ok := v.(values.Integer)
	if !ok {
		return 0, e.setError(joyerr.NewTypeError(op, "integer", v.Type()))
	}
	return n, nil
}

// popNumeric pops a value and requires it to be Integer or Decimal,
// returning it coerced to float32 for the floating-point math builtins.
func (e *Evaluator) popNumeric(op string) (float32, error) {
	v, err := e.Pop()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case values.Integer:
		return float32(n), nil
	case values.Decimal:
		return float32(n), nil
	default:
		return 0, e.setError(joyerr.NewTypeError(op, "integer or decimal", v.Type()))
	}
}

// cloneValues deep-copies any Quotation elements so a stored
// environment body, or a combinator's operand, is never mutated by
// the execution it is about to undergo.
func cloneValues(vs []values.Value) []values.Value {
	out := make([]values.Value, len(vs))
	for i, v := range vs {
		if q, ok := v.(*values.Quotation); ok {
			out[i] = q.Clone()
		} else {
			out[i] = v
		}
	}
	return out
}

// cloneStack copies a stack slice for predicate-isolating combinators
// (ifte, linrec, binrec, tailrec) that must not let a sub-evaluation
// leak side effects onto the real stack.
func cloneStack(s []values.Value) []values.Value {
	out := make([]values.Value, len(s))
	copy(out, s)
	return out
}

// execProgram runs a program as a head-first queue: each non-Symbol
// Value is pushed as-is (Quotations included — they are opaque until
// a combinator pops them), and each Symbol dispatches to a builtin or
// an environment entry. `i` and the combinators re-enter this method
// directly, which is what gives splicing and recursion their effect
// without a separate explicit work-list.
func (e *Evaluator) execProgram(prog []values.Value) error {
	for _, v := range prog {
		if e.CFlag {
			return e.ARegister
		}
		if !e.consumeGas() {
			return e.ARegister
		}
		sym, ok := v.(values.Symbol)
		if !ok {
			e.Push(v)
			continue
		}
		name := string(sym)
		if fn, ok := e.builtins[name]; ok {
			if err := fn(e); err != nil {
				return err
			}
			continue
		}
		if body, ok := e.Env.Lookup(name); ok {
			if err := e.execProgram(cloneValues(body)); err != nil {
				return err
			}
			continue
		}
		return e.setError(joyerr.NewUndefinedSymbolError(name))
	}
	return nil
}

// Run executes a top-level program, reporting whether `quit` was
// requested. A non-nil err is always a genuine runtime error; quit is
// reported through the boolean, not through err, matching the
// language's "quit is not an error" error-handling design.
func (e *Evaluator) Run(prog []values.Value) (quit bool, err error) {
	err = e.execProgram(prog)
	if errors.Is(err, joyerr.QuitRequested) {
		return true, nil
	}
	return false, err
}

// Define installs or replaces a user word. No quotation cloning
// happens here; cloning happens at invocation time (execProgram),
// which is the discipline the language calls copy-on-invoke.
func (e *Evaluator) Define(name string, body []values.Value) {
	e.Env.Bind(name, body)
}

// StackString renders the stack bottom-to-top, for the "debug-style
// rendering" the session interface calls sufficient.
func (e *Evaluator) StackString() string {
	if len(e.Stack) == 0 {
		return "[]"
	}
	parts := make([]string, len(e.Stack))
	for i, v := range e.Stack {
		parts[i] = v.String()
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

// registerBuiltin installs fn under name, panicking on a duplicate
// registration — a programming error, never a runtime condition.
func (e *Evaluator) registerBuiltin(name string, fn func(*Evaluator) error) {
	if _, exists := e.builtins[name]; exists {
		panic(fmt.Sprintf("evaluator: duplicate builtin %q", name))
	}
	e.builtins[name] = fn
}

// Builtins returns the currently registered builtin names, unordered.
func (e *Evaluator) Builtins() []string {
	names := make([]string, 0, len(e.builtins))
	for name := range e.builtins {
		names = append(names, name)
	}
	return names
}
