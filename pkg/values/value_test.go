package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerEquality(t *testing.T) {
	assert.True(t, Integer(3).Equal(Integer(3)))
	assert.False(t, Integer(3).Equal(Integer(4)))
	assert.False(t, Integer(3).Equal(Decimal(3)))
}

func TestDecimalString(t *testing.T) {
	assert.Equal(t, "3.5", Decimal(3.5).String())
}

func TestTextRoundTrip(t *testing.T) {
	assert.Equal(t, `"hi"`, Text("hi").String())
}

func TestQuotationCloneIsDeep(t *testing.T) {
	inner := &Quotation{Items: []Value{Integer(1)}}
	outer := &Quotation{Items: []Value{inner, Integer(2)}}

	clone := outer.Clone()
	clonedInner, ok := clone.Items[0].(*Quotation)
	require.True(t, ok)

	clonedInner.Items[0] = Integer(99)

	assert.Equal(t, Integer(1), inner.Items[0], "mutating the clone's nested quotation must not alias the original")
	assert.True(t, outer.Equal(&Quotation{Items: []Value{&Quotation{Items: []Value{Integer(1)}}, Integer(2)}}))
}

func TestQuotationEqual(t *testing.T) {
	a := &Quotation{Items: []Value{Integer(1), Boolean(true)}}
	b := &Quotation{Items: []Value{Integer(1), Boolean(true)}}
	c := &Quotation{Items: []Value{Integer(1), Boolean(false)}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTypeNames(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Integer(1), "integer"},
		{Decimal(1), "decimal"},
		{Boolean(true), "boolean"},
		{Text("x"), "text"},
		{Symbol("dup"), "symbol"},
		{&Quotation{}, "quotation"},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, tt.v.Type())
	}
}
