// Package env implements the environment: a mapping from user-defined
// names to program trees, persistent across lines within a session.
package env

import "github.com/psil-lang/joy/pkg/values"

// Environment stores definitions introduced by `name == body` lines.
// It never implicitly mutates entries outside of Bind; there is no
// removal operation, matching the language's definition semantics.
type Environment struct {
	defs map[string][]values.Value
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{defs: make(map[string][]values.Value)}
}

// Bind inserts or replaces the body stored under name.
func (e *Environment) Bind(name string, body []values.Value) {
	e.defs[name] = body
}

// Lookup returns the stored body for name and whether it was present.
// The returned slice is the environment's own copy; callers that will
// execute it must clone it first (see values.Quotation.Clone) so that
// concurrent-at-different-depths invocations never alias it.
func (e *Environment) Lookup(name string) ([]values.Value, bool) {
	body, ok := e.defs[name]
	return body, ok
}

// Names returns the currently bound names, unordered.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.defs))
	for name := range e.defs {
		names = append(names, name)
	}
	return names
}
