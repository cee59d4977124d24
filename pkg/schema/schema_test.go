package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbridge/agegraph/pkg/agtype"
	"github.com/graphbridge/agegraph/pkg/graph"
)

// fakeQuerier serves canned rows and records the statements it saw.
type fakeQuerier struct {
	nodes []graph.Row
	edges []graph.Row
	seen  []string
}

func (f *fakeQuerier) Graph() string { return "g1" }

func (f *fakeQuerier) Execute(_ context.Context, query string) ([]graph.Row, error) {
	f.seen = append(f.seen, query)
	if strings.Contains(query, "-[r]->") {
		return f.edges, nil
	}
	return f.nodes, nil
}

func nodeRow(label string, props ...string) graph.Row {
	p := map[string]agtype.Value{}
	for _, k := range props {
		p[k] = agtype.StringValue("x")
	}
	return graph.Row{"node": graph.Cell{Node: &graph.Node{ID: 1, Label: label, Properties: p}}}
}

func edgeRow(label string, props ...string) graph.Row {
	p := map[string]agtype.Value{}
	for _, k := range props {
		p[k] = agtype.IntValue(1)
	}
	return graph.Row{"edge": graph.Cell{Edge: &graph.Edge{ID: 1, Label: label, StartID: 1, EndID: 2, Properties: p}}}
}

func TestSummarizeUnionsPropertiesPerLabel(t *testing.T) {
	q := &fakeQuerier{
		nodes: []graph.Row{
			nodeRow("Person", "name", "age"),
			nodeRow("Person", "name", "city"),
			nodeRow("City", "name"),
		},
		edges: []graph.Row{
			edgeRow("KNOWS", "since"),
			edgeRow("KNOWS", "closeness"),
			edgeRow("LIVES_IN"),
		},
	}

	summary, err := NewSampler(q).Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city", "name"}, summary.NodeLabels["Person"])
	assert.Equal(t, []string{"name"}, summary.NodeLabels["City"])
	assert.Equal(t, []string{"closeness", "since"}, summary.EdgeLabels["KNOWS"])
	assert.Empty(t, summary.EdgeLabels["LIVES_IN"])
}

func TestSummarizeUsesSampleBounds(t *testing.T) {
	q := &fakeQuerier{}
	s := NewSampler(q)
	s.NodeSample = 7
	s.EdgeSample = 3

	_, err := s.Summarize(context.Background())
	require.NoError(t, err)

	require.Len(t, q.seen, 2)
	assert.Contains(t, q.seen[0], "LIMIT 7")
	assert.Contains(t, q.seen[0], "cypher('g1'")
	assert.Contains(t, q.seen[1], "LIMIT 3")
}

func TestFormatDeterministic(t *testing.T) {
	q := &fakeQuerier{
		nodes: []graph.Row{nodeRow("Person", "name", "age"), nodeRow("City", "name", "population")},
		edges: []graph.Row{edgeRow("KNOWS", "since")},
	}

	first, err := NewSampler(q).Summarize(context.Background())
	require.NoError(t, err)
	text := first.Format()

	// Repeated formatting of resampled data stays byte-identical, which
	// keeps the translation prompt cache-friendly.
	for i := 0; i < 5; i++ {
		again, err := NewSampler(q).Summarize(context.Background())
		require.NoError(t, err)
		assert.Equal(t, text, again.Format())
	}

	assert.Contains(t, text, "Node Types:\n")
	assert.Contains(t, text, "  - City: properties = {name, population}\n")
	assert.Contains(t, text, "  - Person: properties = {age, name}\n")
	assert.Contains(t, text, "Relationship Types:\n")
	assert.Contains(t, text, "  - KNOWS: properties = {since}\n")
}
