package sexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/pct/lexer"
)

func read(t *testing.T, input string) []*SExpr {
	t.Helper()
	toks, err := lexer.Tokenize(input)
	require.NoError(t, err)
	exprs, err := Read(toks)
	require.NoError(t, err)
	return exprs
}

func TestSimpleList(t *testing.T) {
	exprs := read(t, "(foo bar)")
	require.Len(t, exprs, 1)
	items, ok := exprs[0].ListItems()
	require.True(t, ok)
	require.Len(t, items, 2)
	sym, _ := items[0].Symbol()
	assert.Equal(t, "foo", sym)
	sym, _ = items[1].Symbol()
	assert.Equal(t, "bar", sym)
}

func TestNestedList(t *testing.T) {
	exprs := read(t, "(a (b c) d)")
	require.Len(t, exprs, 1)
	items, _ := exprs[0].ListItems()
	require.Len(t, items, 3)
	assert.Equal(t, List, items[1].Kind)
}

func TestVector(t *testing.T) {
	exprs := read(t, "[1 2 3]")
	require.Len(t, exprs, 1)
	items, ok := exprs[0].VectorItems()
	require.True(t, ok)
	require.Len(t, items, 3)
	n, _ := items[0].Int()
	assert.Equal(t, int64(1), n)
}

func TestMapColonSyntax(t *testing.T) {
	exprs := read(t, `{req: "hello", author: "world"}`)
	require.Len(t, exprs, 1)
	entries, ok := exprs[0].MapEntries()
	require.True(t, ok)
	require.Len(t, entries, 2)
	k, _ := entries[0].Key.Symbol()
	v, _ := entries[0].Value.StringValue()
	assert.Equal(t, "req", k)
	assert.Equal(t, "hello", v)
}

func TestMapKeywordSyntax(t *testing.T) {
	exprs := read(t, "{:id uuid}")
	require.Len(t, exprs, 1)
	entries, _ := exprs[0].MapEntries()
	require.Len(t, entries, 1)
	k, ok := entries[0].Key.Keyword()
	require.True(t, ok)
	assert.Equal(t, "id", k)
	v, _ := entries[0].Value.Symbol()
	assert.Equal(t, "uuid", v)
}

func TestMapDuplicateKeysRetained(t *testing.T) {
	exprs := read(t, "{:a 1 :a 2}")
	entries, _ := exprs[0].MapEntries()
	require.Len(t, entries, 2)
}

func TestKeywordArgs(t *testing.T) {
	exprs := read(t, "(fn foo :total true :effects [db-read])")
	items, _ := exprs[0].ListItems()
	require.Len(t, items, 6)
	kw, _ := items[2].Keyword()
	assert.Equal(t, "total", kw)
	b, ok := items[3].Bool()
	require.True(t, ok)
	assert.True(t, b)
	assert.Equal(t, Vector, items[5].Kind)
}

func TestComplexNested(t *testing.T) {
	exprs := read(t, `(module test
		:version 1
		(type User
			(field id UUID :immutable)))`)
	require.Len(t, exprs, 1)
	items, _ := exprs[0].ListItems()
	assert.Equal(t, "module", exprs[0].Head())
	typeItems, _ := items[4].ListItems()
	assert.Equal(t, "type", items[4].Head())
	name, _ := typeItems[1].Symbol()
	assert.Equal(t, "User", name)
}

func TestUnexpectedClosingDelimiter(t *testing.T) {
	toks, err := lexer.Tokenize(")")
	require.NoError(t, err)
	_, err = Read(toks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected closing delimiter")
}

func TestPrematureEOF(t *testing.T) {
	toks, err := lexer.Tokenize("(a b")
	require.NoError(t, err)
	_, err = Read(toks)
	require.Error(t, err)
}

func TestContainerSpans(t *testing.T) {
	exprs := read(t, "  (a b)")
	require.Len(t, exprs, 1)
	assert.Equal(t, 2, exprs[0].Span.Start)
	assert.Equal(t, 7, exprs[0].Span.End)
}

func TestFormatCanonical(t *testing.T) {
	exprs := read(t, "(> (strlen name) 0)")
	assert.Equal(t, "(> (strlen name) 0)", Format(exprs[0]))

	exprs = read(t, "{req:\"x\",author:\"y\"}")
	assert.Equal(t, `{req: "x", author: "y"}`, Format(exprs[0]))

	exprs = read(t, "[1   2\n3]")
	assert.Equal(t, "[1 2 3]", Format(exprs[0]))

	exprs = read(t, `(matches email #/.+@.+\..+/)`)
	assert.Equal(t, `(matches email #/.+@.+\..+/)`, Format(exprs[0]))
}

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"(module m :version 1 (type User (field id UUID :immutable :generated)))",
		"{a: [1 2 3], b: (c d)}",
		"(let [x 1 y 2] (if true x y))",
		"[:reads user-store :writes user-store]",
	}
	for _, in := range inputs {
		first := read(t, in)
		require.Len(t, first, 1)
		again := read(t, Format(first[0]))
		require.Len(t, again, 1)
		assert.True(t, Equal(first[0], again[0]), "round trip mismatch for %q", in)
	}
}
