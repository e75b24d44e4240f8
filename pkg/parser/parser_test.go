package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psil-lang/joy/pkg/joyerr"
	"github.com/psil-lang/joy/pkg/values"
)

func TestParseLineEmpty(t *testing.T) {
	p, err := ParseLine("   ")
	require.NoError(t, err)
	assert.False(t, p.IsDefinition)
	assert.Empty(t, p.Expr)
}

func TestParseLineLiterals(t *testing.T) {
	p, err := ParseLine(`42 -3 3.5 true false 'x' "hi" sym`)
	require.NoError(t, err)
	assert.Equal(t, []values.Value{
		values.Integer(42),
		values.Integer(-3),
		values.Decimal(3.5),
		values.Boolean(true),
		values.Boolean(false),
		values.Text("x"),
		values.Text("hi"),
		values.Symbol("sym"),
	}, p.Expr)
}

func TestParseLineQuotation(t *testing.T) {
	p, err := ParseLine("[ dup * ]")
	require.NoError(t, err)
	require.Len(t, p.Expr, 1)
	q, ok := p.Expr[0].(*values.Quotation)
	require.True(t, ok)
	assert.Equal(t, []values.Value{values.Symbol("dup"), values.Symbol("*")}, q.Items)
}

func TestParseLineNestedQuotation(t *testing.T) {
	p, err := ParseLine("[ [ 1 ] [ 2 ] ]")
	require.NoError(t, err)
	require.Len(t, p.Expr, 1)
	outer := p.Expr[0].(*values.Quotation)
	require.Len(t, outer.Items, 2)
	first := outer.Items[0].(*values.Quotation)
	assert.Equal(t, []values.Value{values.Integer(1)}, first.Items)
}

func TestParseLineDefinition(t *testing.T) {
	p, err := ParseLine("square == dup *")
	require.NoError(t, err)
	require.True(t, p.IsDefinition)
	assert.Equal(t, "square", p.DefName)
	assert.Equal(t, []values.Value{values.Symbol("dup"), values.Symbol("*")}, p.DefBody)
}

func TestParseLineDefinitionWithQuotation(t *testing.T) {
	p, err := ParseLine("fact == [ [0 =] [pop 1] [dup 1 -] [*] linrec ]")
	require.NoError(t, err)
	require.True(t, p.IsDefinition)
	assert.Equal(t, "fact", p.DefName)
	require.Len(t, p.DefBody, 1)
	body, ok := p.DefBody[0].(*values.Quotation)
	require.True(t, ok)
	require.Len(t, body.Items, 5)
}

func TestParseLineEscapedQuote(t *testing.T) {
	p, err := ParseLine(`"a\"b"`)
	require.NoError(t, err)
	require.Len(t, p.Expr, 1)
	assert.Equal(t, values.Text(`a"b`), p.Expr[0])
}

func TestParseLineUnbalancedBracket(t *testing.T) {
	_, err := ParseLine("[ dup")
	require.Error(t, err)
	var perr *joyerr.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestDecimalBeforeInteger(t *testing.T) {
	p, err := ParseLine("1.5")
	require.NoError(t, err)
	require.Len(t, p.Expr, 1)
	assert.Equal(t, values.Decimal(1.5), p.Expr[0])
}
