// Package session is the seam between the language core and any
// front end: it owns exactly one Stack and one Environment, parses a
// line with the definition-first-then-expression policy, and reports
// a typed Result instead of writing to any particular stream. Callers
// (a REPL, a file runner, a test) decide how to render it.
package session

import (
	"sort"
	"strings"

	"github.com/psil-lang/joy/pkg/evaluator"
	"github.com/psil-lang/joy/pkg/parser"
)

// Session owns one stack and one environment, persistent across
// successive calls to Eval.
type Session struct {
	eval *evaluator.Evaluator
}

// New returns a Session with an empty stack and empty environment,
// then evaluates each prelude line in order (ignoring its Results'
// stack contents — a prelude is expected to consist of definitions).
// A prelude line that fails to parse or evaluate is a programming
// error in the caller, not a session-time condition, so New panics.
func New(prelude ...string) *Session {
	s := &Session{eval: evaluator.New()}
	for _, line := range prelude {
		res := s.Eval(line)
		if res.Err != nil {
			panic("session: bad prelude line " + line + ": " + res.Err.Error())
		}
	}
	return s
}

// Result reports the outcome of one call to Eval.
type Result struct {
	// Definition is set when the line bound a name rather than running
	// an expression.
	Definition bool
	// DefName is the bound name, when Definition is true.
	DefName string
	// Quit reports that the line executed `quit`.
	Quit bool
	// Err is non-nil for a ParseError or a runtime error kind from
	// pkg/joyerr. It is nil for a successful expression, a successful
	// definition, and for quit.
	Err error

	stack *evaluator.Evaluator
}

// StackString renders the session's stack after the line, in the
// "debug-style rendering" the interface calls sufficient.
func (r Result) StackString() string {
	if r.stack == nil {
		return "[]"
	}
	return r.stack.StackString()
}

// Eval parses and runs one line against the session's stack and
// environment. A ParseError never mutates session state. A runtime
// error aborts the expression but leaves whatever the stack held up
// to the point of failure, per the language's propagation policy.
func (s *Session) Eval(line string) Result {
	if strings.TrimSpace(line) == "" {
		return Result{stack: s.eval}
	}

	parsed, err := parser.ParseLine(line)
	if err != nil {
		return Result{Err: err, stack: s.eval}
	}

	if parsed.IsDefinition {
		s.eval.Define(parsed.DefName, parsed.DefBody)
		return Result{Definition: true, DefName: parsed.DefName, stack: s.eval}
	}

	s.eval.ClearError()
	quit, err := s.eval.Run(parsed.Expr)
	if quit {
		return Result{Quit: true, stack: s.eval}
	}
	return Result{Err: err, stack: s.eval}
}

// Reset clears the stack and error register; the environment survives.
func (s *Session) Reset() { s.eval.Reset() }

// StackString renders the current stack.
func (s *Session) StackString() string { return s.eval.StackString() }

// Words returns the builtin names and the currently user-defined
// names, kept separate so a caller can list them under two headings
// the way the interface's introspection is expected to. Both lists are
// sorted.
func (s *Session) Words() (builtins, defined []string) {
	builtins, defined = s.eval.Builtins(), s.eval.Env.Names()
	sort.Strings(builtins)
	sort.Strings(defined)
	return builtins, defined
}

// DefinitionSource renders name's bound body back into surface syntax,
// for a `:words`-style listing that shows what a user word expands to.
func (s *Session) DefinitionSource(name string) (string, bool) {
	body, ok := s.eval.Env.Lookup(name)
	if !ok {
		return "", false
	}
	parts := make([]string, len(body))
	for i, v := range body {
		parts[i] = v.String()
	}
	return strings.Join(parts, " "), true
}

// SetGas installs a step budget; 0 means unlimited. Exposed so a CLI's
// `--gas` flag and `:gas` command share one code path.
func (s *Session) SetGas(n int) {
	s.eval.MaxGas = n
	s.eval.Gas = n
}

// SetDebug sets the debug flag stored on the evaluator. The evaluator
// itself does not trace; a caller such as the REPL reads the flag and
// prints the stack and error register after each line.
func (s *Session) SetDebug(on bool) { s.eval.Debug = on }

// Debug reports the current debug flag.
func (s *Session) Debug() bool { return s.eval.Debug }

// HasError reports whether a runtime error is currently latched, for
// callers that want to inspect state without having just called Eval.
func (s *Session) HasError() bool { return s.eval.HasError() }

// ErrorRegister returns the latched error, or nil.
func (s *Session) ErrorRegister() error { return s.eval.ARegister }
