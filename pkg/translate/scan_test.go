package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteralMask(t *testing.T) {
	q := `MATCH (n {name: 'a--b'}) RETURN n`
	mask := literalMask(q)

	dash := 18 // first '-' inside the literal
	assert.Equal(t, byte('-'), q[dash])
	assert.True(t, mask[dash])
	assert.False(t, mask[0], "MATCH keyword is outside literals")
}

func TestLiteralMaskEscapedQuote(t *testing.T) {
	q := `RETURN 'it\'s' + x`
	mask := literalMask(q)

	plus := len(q) - 3
	assert.Equal(t, byte('+'), q[plus])
	assert.False(t, mask[plus], "escaped quote must not end the literal early")
}

func TestLiteralMaskMixedQuotes(t *testing.T) {
	q := `RETURN "don't" + y`
	mask := literalMask(q)

	plus := len(q) - 3
	assert.Equal(t, byte('+'), q[plus])
	assert.False(t, mask[plus])
}

func TestKeywordIndex(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		keyword string
		want    int
	}{
		{"simple", "MATCH (n) RETURN n", "RETURN", 10},
		{"case insensitive", "match (n) return n", "RETURN", 10},
		{"inside literal skipped", `MATCH (n {t: 'RETURN'}) RETURN n`, "RETURN", 24},
		{"label not keyword", "MATCH (n:Return) RETURN n", "RETURN", 17},
		{"substring not keyword", "MATCH (n) RETURNS x RETURN n", "RETURN", 20},
		{"absent", "MATCH (n)", "RETURN", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordIndex(tt.query, tt.keyword, 0))
		})
	}
}

func TestLastKeywordIndex(t *testing.T) {
	q := "MATCH (n) WITH n RETURN n.a AS a RETURN a"
	assert.Equal(t, 33, lastKeywordIndex(q, "RETURN"))
	assert.Equal(t, -1, lastKeywordIndex(q, "DELETE"))
}

func TestIndexOutsideLiterals(t *testing.T) {
	q := `MATCH (a)--(b) WHERE a.s = 'x--y' RETURN a`
	first := indexOutsideLiterals(q, "--", 0)
	assert.Equal(t, 9, first)

	// The only other occurrence is inside the literal.
	assert.Equal(t, -1, indexOutsideLiterals(q, "--", first+2))
}

func TestReplaceOutsideLiterals(t *testing.T) {
	q := `MATCH (a)--(b)--(c) WHERE a.s = '--' RETURN a`
	got := replaceOutsideLiterals(q, "--", "-[]-")
	assert.Equal(t, `MATCH (a)-[]-(b)-[]-(c) WHERE a.s = '--' RETURN a`, got)
}

func TestSplitProjection(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "a, b, c", []string{"a", "b", "c"}},
		{"nested call", "count(a), collect(b, c)", []string{"count(a)", "collect(b, c)"}},
		{"map literal", "{x: 1, y: 2} AS m, n", []string{"{x: 1, y: 2} AS m", "n"}},
		{"comma in string", "'a,b' AS s, n", []string{"'a,b' AS s", "n"}},
		{"single", "n", []string{"n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitProjection(tt.in))
		})
	}
}
