// Package values defines the tagged value universe shared by the stack,
// programs, and the environment. The same Value type represents both
// data on the stack and code inside a program: quotations are ordinary
// values until a combinator chooses to execute them.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the interface every runtime value implements.
type Value interface {
	// String returns a human-readable, round-trippable-ish representation.
	String() string
	// Type returns the type name used in error messages.
	Type() string
	// Equal reports structural equality with another value.
	Equal(other Value) bool
}

// Integer is a signed 32-bit whole number literal.
type Integer int32

func (n Integer) String() string { return strconv.FormatInt(int64(n), 10) }
func (n Integer) Type() string   { return "integer" }

func (n Integer) Equal(other Value) bool {
	o, ok := other.(Integer)
	return ok && n == o
}

// Decimal is a 32-bit binary floating point literal; it always had a
// fractional dot in its source form.
type Decimal float32

func (d Decimal) String() string { return strconv.FormatFloat(float64(d), 'g', -1, 32) }
func (d Decimal) Type() string   { return "decimal" }

func (d Decimal) Equal(other Value) bool {
	o, ok := other.(Decimal)
	return ok && d == o
}

// Boolean is true or false, produced by the literals or by comparisons.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Boolean) Type() string { return "boolean" }

func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && b == o
}

// Text is a sequence of Unicode scalars from a quoted literal.
type Text string

func (s Text) String() string { return fmt.Sprintf("%q", string(s)) }
func (s Text) Type() string   { return "text" }

func (s Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && s == o
}

// Symbol is an unresolved identifier, dispatched to a builtin or an
// environment entry at evaluation time.
type Symbol string

func (s Symbol) String() string { return string(s) }
func (s Symbol) Type() string   { return "symbol" }

func (s Symbol) Equal(other Value) bool {
	o, ok := other.(Symbol)
	return ok && s == o
}

// Quotation is an ordered, first-class program fragment written `[ ... ]`.
// It is never examined by the evaluator unless a combinator pops it.
type Quotation struct {
	Items []Value
}

// NewQuotation wraps items in a fresh Quotation without copying the
// slice; callers that still need their slice should pass a copy.
func NewQuotation(items []Value) *Quotation {
	return &Quotation{Items: items}
}

// Clone returns a deep copy, so a stored environment body can be
// invoked without the evaluator aliasing the dictionary's copy.
func (q *Quotation) Clone() *Quotation {
	items := make([]Value, len(q.Items))
	for i, item := range q.Items {
		if inner, ok := item.(*Quotation); ok {
			items[i] = inner.Clone()
		} else {
			items[i] = item
		}
	}
	return &Quotation{Items: items}
}

func (q *Quotation) String() string {
	parts := make([]string, len(q.Items))
	for i, item := range q.Items {
		parts[i] = item.String()
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

func (q *Quotation) Type() string { return "quotation" }

func (q *Quotation) Equal(other Value) bool {
	o, ok := other.(*Quotation)
	if !ok || len(q.Items) != len(o.Items) {
		return false
	}
	for i, item := range q.Items {
		if !item.Equal(o.Items[i]) {
			return false
		}
	}
	return true
}
