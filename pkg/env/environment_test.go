package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psil-lang/joy/pkg/values"
)

func TestBindAndLookup(t *testing.T) {
	e := New()
	body := []values.Value{values.Integer(1), values.Symbol("+")}
	e.Bind("succ", body)

	got, ok := e.Lookup("succ")
	require.True(t, ok)
	assert.Equal(t, body, got)
}

func TestLookupMissing(t *testing.T) {
	e := New()
	_, ok := e.Lookup("nope")
	assert.False(t, ok)
}

func TestBindReplaces(t *testing.T) {
	e := New()
	e.Bind("x", []values.Value{values.Integer(1)})
	e.Bind("x", []values.Value{values.Integer(2)})

	got, ok := e.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, []values.Value{values.Integer(2)}, got)
}

func TestNames(t *testing.T) {
	e := New()
	e.Bind("a", nil)
	e.Bind("b", nil)
	assert.ElementsMatch(t, []string{"a", "b"}, e.Names())
}
