package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioAddition(t *testing.T) {
	s := New()
	res := s.Eval("2 3 +")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ 5 ]", res.StackString())
}

func TestScenarioSubtraction(t *testing.T) {
	s := New()
	res := s.Eval("3 2 -")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ 1 ]", res.StackString())
}

func TestScenarioDefinitionPersistsAcrossLines(t *testing.T) {
	s := New()
	def := s.Eval("square == dup *")
	require.NoError(t, def.Err)
	assert.True(t, def.Definition)
	assert.Equal(t, "square", def.DefName)

	res := s.Eval("5 square")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ 25 ]", res.StackString())
}

func TestScenarioMapFreshSubStack(t *testing.T) {
	s := New()
	res := s.Eval("[1 2 3] [dup *] map")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ [ 1 4 9 ] ]", res.StackString())
}

func TestScenarioFilter(t *testing.T) {
	s := New()
	res := s.Eval("[1 2 3 4] [2 >] filter")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ [ 3 4 ] ]", res.StackString())
}

func TestScenarioIftePredicateIsolation(t *testing.T) {
	s := New()
	res := s.Eval("10 [0 >] [1] [0] ifte")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ 1 ]", res.StackString())
}

func TestScenarioSizeNonDestructive(t *testing.T) {
	s := New()
	res := s.Eval("[1 2 3] size")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ [ 1 2 3 ] 3 ]", res.StackString())
}

func TestParseErrorLeavesStateUntouched(t *testing.T) {
	s := New()
	s.Eval("1 2 +")
	before := s.StackString()

	res := s.Eval("[ unbalanced")
	require.Error(t, res.Err)
	assert.Equal(t, before, s.StackString())
}

func TestRuntimeErrorLeavesPartialStack(t *testing.T) {
	s := New()
	res := s.Eval("1 dup dup undefined-word")
	require.Error(t, res.Err)
	assert.Equal(t, "[ 1 1 1 ]", res.StackString())
}

func TestPreludeWords(t *testing.T) {
	s := New("succ == 1 +")
	res := s.Eval("5 succ")
	require.NoError(t, res.Err)
	assert.Equal(t, "[ 6 ]", res.StackString())
}

func TestQuitReported(t *testing.T) {
	s := New()
	res := s.Eval("quit")
	assert.True(t, res.Quit)
	assert.NoError(t, res.Err)
}

func TestWordsSeparatesBuiltinsAndDefined(t *testing.T) {
	s := New("succ == 1 +")
	builtins, defined := s.Words()
	assert.Contains(t, builtins, "dup")
	assert.Contains(t, defined, "succ")
	assert.NotContains(t, builtins, "succ")
}
