package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psil-lang/joy/pkg/joyerr"
	"github.com/psil-lang/joy/pkg/values"
)

func runOK(t *testing.T, prog []values.Value) *Evaluator {
	t.Helper()
	e := New()
	quit, err := e.Run(prog)
	require.NoError(t, err)
	require.False(t, quit)
	return e
}

func q(items ...values.Value) *values.Quotation {
	return &values.Quotation{Items: items}
}

func TestSelfEvaluation(t *testing.T) {
	e := runOK(t, []values.Value{values.Integer(42)})
	assert.Equal(t, []values.Value{values.Integer(42)}, e.Stack)
}

func TestQuotationOpacity(t *testing.T) {
	e := runOK(t, []values.Value{q(values.Symbol("dup"), values.Symbol("+"))})
	require.Len(t, e.Stack, 1)
	_, ok := e.Stack[0].(*values.Quotation)
	assert.True(t, ok, "an unpopped quotation must stay opaque on the stack")
}

func TestDupLaw(t *testing.T) {
	e := runOK(t, []values.Value{values.Integer(7), values.Symbol("dup")})
	require.Len(t, e.Stack, 2)
	assert.True(t, e.Stack[0].Equal(e.Stack[1]))
}

func TestSwapInvolution(t *testing.T) {
	before := []values.Value{values.Integer(1), values.Integer(2), values.Integer(3)}
	e := runOK(t, append(append([]values.Value{}, before...), values.Symbol("swap"), values.Symbol("swap")))
	assert.Equal(t, before, e.Stack)
}

func TestISpliceEquivalence(t *testing.T) {
	spliced := runOK(t, []values.Value{values.Integer(1), q(values.Integer(2), values.Symbol("+")), values.Symbol("i")})
	inlined := runOK(t, []values.Value{values.Integer(1), values.Integer(2), values.Symbol("+")})
	assert.Equal(t, inlined.Stack, spliced.Stack)
}

func TestDipPreservation(t *testing.T) {
	e := runOK(t, []values.Value{
		values.Integer(1), values.Integer(2), values.Integer(99),
		q(values.Symbol("+")),
		values.Symbol("dip"),
	})
	assert.Equal(t, []values.Value{values.Integer(3), values.Integer(99)}, e.Stack)
}

func TestIftePredicatePurity(t *testing.T) {
	e := runOK(t, []values.Value{
		values.Integer(10),
		q(values.Symbol("dup"), values.Integer(0), values.Symbol(">")),
		q(values.Integer(1)),
		q(values.Integer(0)),
		values.Symbol("ifte"),
	})
	assert.Equal(t, []values.Value{values.Integer(10), values.Integer(1)}, e.Stack)
}

func TestMapLength(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Integer(1), values.Integer(2), values.Integer(3)),
		q(values.Symbol("dup"), values.Symbol("*")),
		values.Symbol("map"),
	})
	require.Len(t, e.Stack, 1)
	out := e.Stack[0].(*values.Quotation)
	assert.Equal(t, []values.Value{values.Integer(1), values.Integer(4), values.Integer(9)}, out.Items)
}

func TestFilterSubset(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Integer(1), values.Integer(2), values.Integer(3), values.Integer(4)),
		q(values.Integer(2), values.Symbol(">")),
		values.Symbol("filter"),
	})
	out := e.Stack[0].(*values.Quotation)
	assert.Equal(t, []values.Value{values.Integer(3), values.Integer(4)}, out.Items)
}

func TestSizeNonDestructive(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Integer(1), values.Integer(2), values.Integer(3)),
		values.Symbol("size"),
	})
	require.Len(t, e.Stack, 2)
	assert.Equal(t, values.Integer(3), e.Stack[1])
	_, ok := e.Stack[0].(*values.Quotation)
	assert.True(t, ok)
}

func TestFoldOrder(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Integer(1), values.Integer(2), values.Integer(3)),
		values.Integer(0),
		q(values.Symbol("+")),
		values.Symbol("fold"),
	})
	assert.Equal(t, []values.Value{values.Integer(6)}, e.Stack)
}

func TestMixedArithmeticIsTypeError(t *testing.T) {
	e := New()
	_, err := e.Run([]values.Value{values.Integer(1), values.Decimal(2), values.Symbol("+")})
	var terr *joyerr.TypeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "+", terr.Op)
}

func TestUnderflowNamesTheOperation(t *testing.T) {
	e := New()
	_, err := e.Run([]values.Value{values.Symbol("dup")})
	var uerr *joyerr.UnderflowError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "dup", uerr.Op)
}

func TestUndefinedSymbol(t *testing.T) {
	e := New()
	_, err := e.Run([]values.Value{values.Symbol("frobnicate")})
	var uerr *joyerr.UndefinedSymbolError
	require.ErrorAs(t, err, &uerr)
}

func TestUserDefinitionCopyOnInvoke(t *testing.T) {
	e := New()
	e.Define("square", []values.Value{values.Symbol("dup"), values.Symbol("*")})

	_, err := e.Run([]values.Value{values.Integer(5), values.Symbol("square")})
	require.NoError(t, err)
	assert.Equal(t, []values.Value{values.Integer(25)}, e.Stack)

	e.Reset()
	_, err = e.Run([]values.Value{values.Integer(6), values.Symbol("square")})
	require.NoError(t, err)
	assert.Equal(t, []values.Value{values.Integer(36)}, e.Stack, "invoking a stored body twice must not mutate the environment's copy")
}

func TestQuitIsNotAnError(t *testing.T) {
	e := New()
	quit, err := e.Run([]values.Value{values.Symbol("quit")})
	require.NoError(t, err)
	assert.True(t, quit)
	assert.False(t, e.HasError())
}

func TestTryCatchesRuntimeError(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Symbol("dup")),
		q(values.Symbol("drop"), values.Text("caught")),
		values.Symbol("try"),
	})
	assert.Equal(t, []values.Value{values.Text("caught")}, e.Stack)
}

func TestOnerrRecoversFromError(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Integer(5), values.Symbol("dup"), values.Symbol("undefined-word")),
		q(values.Symbol("pop"), values.Text("recovered")),
		values.Symbol("onerr"),
	})
	assert.Equal(t, []values.Value{values.Integer(5), values.Text("recovered")}, e.Stack)
	assert.False(t, e.HasError(), "onerr must clear the error register once the handler runs")
}

func TestOnerrPassesThroughWhenBodySucceeds(t *testing.T) {
	e := runOK(t, []values.Value{
		q(values.Integer(1), values.Integer(2), values.Symbol("+")),
		q(values.Symbol("pop"), values.Text("unreached")),
		values.Symbol("onerr"),
	})
	assert.Equal(t, []values.Value{values.Integer(3)}, e.Stack)
}

func TestOnerrPropagatesQuit(t *testing.T) {
	e := New()
	quit, err := e.Run([]values.Value{
		q(values.Symbol("quit")),
		q(values.Text("unreached")),
		values.Symbol("onerr"),
	})
	require.NoError(t, err)
	assert.True(t, quit, "quit inside onerr's body must still terminate the session")
}

func TestTryPropagatesQuit(t *testing.T) {
	e := New()
	quit, err := e.Run([]values.Value{
		q(values.Symbol("quit")),
		q(values.Text("unreached")),
		values.Symbol("try"),
	})
	require.NoError(t, err)
	assert.True(t, quit, "quit inside try's body must still terminate the session")
}

func TestLinrecFactorial(t *testing.T) {
	e := New()
	e.Define("fact", []values.Value{
		q(values.Integer(0), values.Symbol("=")),
		q(values.Symbol("pop"), values.Integer(1)),
		q(values.Symbol("dup"), values.Integer(1), values.Symbol("-")),
		q(values.Symbol("*")),
		values.Symbol("linrec"),
	})
	_, err := e.Run([]values.Value{values.Integer(5), values.Symbol("fact")})
	require.NoError(t, err)
	assert.Equal(t, []values.Value{values.Integer(120)}, e.Stack)
}

func TestGasExhaustion(t *testing.T) {
	e := New()
	e.MaxGas, e.Gas = 5, 5
	_, err := e.Run([]values.Value{q(), values.Symbol("loop")})
	var gerr *joyerr.GasExhaustedError
	require.ErrorAs(t, err, &gerr)
}
