// Package parser turns one line of source text into either a
// definition (name plus body) or an expression (a flat sequence of
// values), per the language's line grammar. It is built with
// Participle v2 the way the teacher's parser was, but factored as two
// small grammars — Definition and Expression — tried in that order,
// rather than one grammar with an embedded keyword/terminator syntax.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/psil-lang/joy/pkg/joyerr"
	"github.com/psil-lang/joy/pkg/values"
)

// joyLexer tokenizes quoted text, brackets, and a single greedy Atom
// rule that swallows everything else (numbers, booleans, operators,
// and symbols alike). Classification of an Atom's text into a
// concrete Value happens after lexing; Participle's simple lexer picks
// the first matching rule at a position rather than the longest
// match, which makes a single catch-all rule far more robust than
// trying to out-order "true"/"false" against a symbol rule.
var joyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "SQText", Pattern: `'(?:[^'\\]|\\')*'`},
	{Name: "DQText", Pattern: `"(?:[^"\\]|\\")*"`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Atom", Pattern: `[^ \t\r\n\[\]()'"]+`},
})

// Token is one element of an expression: quoted text, a nested
// quotation, or an atom awaiting classification.
type Token struct {
	Text      *string    `  @(SQText|DQText)`
	Quotation *Quotation `| @@`
	Atom      *string    `| @Atom`
}

// Quotation is `[` expression `]`.
type Quotation struct {
	Items []*Token `"[" @@* "]"`
}

// Expression is whitespace-separated tokens, consuming the whole input.
type Expression struct {
	Tokens []*Token `@@*`
}

// Definition is `name == expression`, consuming the whole input.
type Definition struct {
	Name string      `@Atom "=="`
	Body *Expression `@@`
}

var (
	expressionParser = participle.MustBuild[Expression](
		participle.Lexer(joyLexer),
		participle.Elide("Whitespace"),
	)
	definitionParser = participle.MustBuild[Definition](
		participle.Lexer(joyLexer),
		participle.Elide("Whitespace"),
	)
)

var (
	decimalPattern = regexp.MustCompile(`^[+-]?[0-9]+\.[0-9]+$`)
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
)

// classifyAtom applies the ordering of alternatives: decimal, integer,
// boolean, symbol. Floating point is checked before integer so that
// "1.5" is never mistaken for integer "1" followed by stray input.
func classifyAtom(raw string) (values.Value, error) {
	switch {
	case decimalPattern.MatchString(raw):
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, err
		}
		return values.Decimal(f), nil
	case integerPattern.MatchString(raw):
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, err
		}
		return values.Integer(n), nil
	case raw == "true":
		return values.Boolean(true), nil
	case raw == "false":
		return values.Boolean(false), nil
	default:
		return values.Symbol(raw), nil
	}
}

// unquoteText strips the surrounding quote characters and collapses
// the only recognised escape (a backslash before the matching quote).
func unquoteText(raw string, quote byte) string {
	inner := raw[1 : len(raw)-1]
	return strings.ReplaceAll(inner, "\\"+string(quote), string(quote))
}

// ToValue converts a Token into a runtime Value.
func (t *Token) ToValue() (values.Value, error) {
	switch {
	case t.Text != nil:
		raw := *t.Text
		if raw[0] == '\'' {
			return values.Text(unquoteText(raw, '\'')), nil
		}
		return values.Text(unquoteText(raw, '"')), nil
	case t.Quotation != nil:
		items, err := t.Quotation.ToValues()
		if err != nil {
			return nil, err
		}
		return values.NewQuotation(items), nil
	case t.Atom != nil:
		return classifyAtom(*t.Atom)
	}
	return nil, participle.ErrInvalidToken
}

// ToValues converts every token of an Expression into runtime Values.
func (e *Expression) ToValues() ([]values.Value, error) {
	out := make([]values.Value, 0, len(e.Tokens))
	for _, tok := range e.Tokens {
		v, err := tok.ToValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ToValues converts a Quotation's body the same way an Expression does.
func (q *Quotation) ToValues() ([]values.Value, error) {
	return (&Expression{Tokens: q.Items}).ToValues()
}

// ParsedLine is the result of parsing one line: either a definition
// (IsDefinition true) or a plain expression.
type ParsedLine struct {
	IsDefinition bool
	DefName      string
	DefBody      []values.Value
	Expr         []values.Value
}

// ParseLine attempts the definition grammar first, full-line; only on
// failure does it fall back to the expression grammar. An empty or
// whitespace-only line parses to an empty, non-definition ParsedLine.
func ParseLine(line string) (*ParsedLine, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return &ParsedLine{}, nil
	}

	if def, err := definitionParser.ParseString("", trimmed); err == nil {
		body, err := def.Body.ToValues()
		if err != nil {
			return nil, asParseError(err)
		}
		return &ParsedLine{IsDefinition: true, DefName: def.Name, DefBody: body}, nil
	}

	expr, err := expressionParser.ParseString("", trimmed)
	if err != nil {
		return nil, asParseError(err)
	}
	vals, err := expr.ToValues()
	if err != nil {
		return nil, asParseError(err)
	}
	return &ParsedLine{Expr: vals}, nil
}

// asParseError lifts a Participle or classification error into the
// language's own ParseError type, preserving position when available.
func asParseError(err error) error {
	if perr, ok := err.(participle.Error); ok {
		pos := perr.Position()
		return joyerr.NewParseError(pos.Line, pos.Column, perr.Message(), err)
	}
	return joyerr.NewParseError(0, 0, err.Error(), err)
}
