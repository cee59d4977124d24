package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConformWrapsBareQuery(t *testing.T) {
	got, err := Conform("MATCH (n:Person) RETURN n", "social")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM cypher('social', $$ MATCH (n:Person) RETURN n $$) AS (n agtype);",
		got)
}

func TestConformColumnDerivation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			"aliases",
			"MATCH (n:Person) RETURN n.name AS name, count(n) AS total",
			"SELECT * FROM cypher('g', $$ MATCH (n:Person) RETURN n.name AS name, count(n) AS total $$) AS (name agtype, total agtype);",
		},
		{
			"property shorthand",
			"MATCH (n:Person) RETURN n.name, n.age",
			"SELECT * FROM cypher('g', $$ MATCH (n:Person) RETURN n.name, n.age $$) AS (name agtype, age agtype);",
		},
		{
			"expression falls back to positional",
			"MATCH (n) RETURN n.age + 1",
			"SELECT * FROM cypher('g', $$ MATCH (n) RETURN n.age + 1 $$) AS (col1 agtype);",
		},
		{
			"order by and limit excluded from columns",
			"MATCH (n:Person) RETURN n.name ORDER BY n.name LIMIT 5",
			"SELECT * FROM cypher('g', $$ MATCH (n:Person) RETURN n.name ORDER BY n.name LIMIT 5 $$) AS (name agtype);",
		},
		{
			"distinct stripped",
			"MATCH (n:Person) RETURN DISTINCT n.city",
			"SELECT * FROM cypher('g', $$ MATCH (n:Person) RETURN DISTINCT n.city $$) AS (city agtype);",
		},
		{
			"duplicate names disambiguated",
			"MATCH (a:Person)-[]->(b:Person) RETURN a.name, b.name",
			"SELECT * FROM cypher('g', $$ MATCH (a:Person)-[]->(b:Person) RETURN a.name, b.name $$) AS (name agtype, name_2 agtype);",
		},
		{
			"write without return",
			"CREATE (n:Person {name: 'Ann'})",
			"SELECT * FROM cypher('g', $$ CREATE (n:Person {name: 'Ann'}) $$) AS (result agtype);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Conform(tt.query, "g")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConformRepairsAnonymousRelationships(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		wants string
	}{
		{"undirected", "MATCH (a)--(b) RETURN a", "MATCH (a)-[]-(b) RETURN a"},
		{"right arrow", "MATCH (a)-->(b) RETURN a", "MATCH (a)-[]->(b) RETURN a"},
		{"left arrow", "MATCH (a)<--(b) RETURN a", "MATCH (a)<-[]-(b) RETURN a"},
		{"chained", "MATCH (a)-->(b)--(c) RETURN a", "MATCH (a)-[]->(b)-[]-(c) RETURN a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Conform(tt.in, "g")
			require.NoError(t, err)
			assert.Contains(t, got, tt.wants)
		})
	}
}

func TestConformLeavesLiteralDashesAlone(t *testing.T) {
	got, err := Conform(`MATCH (n) WHERE n.code = 'a--b' RETURN n`, "g")
	require.NoError(t, err)
	assert.Contains(t, got, `'a--b'`)
}

func TestConformRewritesSize(t *testing.T) {
	got, err := Conform("MATCH p = (a)-[]->(b) RETURN size(p)", "g")
	require.NoError(t, err)
	assert.Contains(t, got, "length(p)")
	assert.NotContains(t, got, "size(")

	// size as part of a longer identifier is untouched.
	got, err = Conform("MATCH (n) RETURN n.shirt_size(", "g")
	require.NoError(t, err)
	assert.Contains(t, got, "shirt_size(")
}

func TestConformRejectsTypeAlternation(t *testing.T) {
	_, err := Conform("MATCH (a)-[r:KNOWS|LIKES]->(b) RETURN a", "g")
	require.ErrorIs(t, err, ErrDialect)
	assert.Contains(t, err.Error(), "alternation")

	_, err = Conform("MATCH (a)-[:A|B|C]->(b) RETURN a", "g")
	require.ErrorIs(t, err, ErrDialect)

	// Variable-length patterns are not alternation.
	_, err = Conform("MATCH (a)-[r*1..3]->(b) RETURN a", "g")
	require.NoError(t, err)
}

func TestConformRetargetsWrappedQuery(t *testing.T) {
	in := "SELECT * FROM cypher('wrong_graph', $$ MATCH (n) RETURN n $$) AS (n agtype);"
	got, err := Conform(in, "actual")
	require.NoError(t, err)
	assert.Contains(t, got, "cypher('actual'")
	assert.NotContains(t, got, "wrong_graph")
}

func TestConformEmptyQuery(t *testing.T) {
	_, err := Conform("   ", "g")
	assert.ErrorIs(t, err, ErrDialect)
}
