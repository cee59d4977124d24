// Package schema derives a sampled summary of a graph's labels and
// property names for use as translation context.
//
// The summary is built from a bounded sample of live nodes and edges,
// so it never claims completeness: a label or property that only occurs
// outside the sample is silently absent. The approximation keeps the
// cost of a translation request bounded on large graphs.
// The formatting, unlike the sampling, is deterministic: labels
// and property names are sorted so repeated calls over the same data
// produce byte-identical prompt text.
package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/graphbridge/agegraph/pkg/graph"
)

// Default sample bounds, matching the cost/precision trade-off the
// summary is designed around.
const (
	DefaultNodeSample = 50
	DefaultEdgeSample = 50
)

// Querier executes Cypher against one graph. *graph.Session satisfies
// it.
type Querier interface {
	Graph() string
	Execute(ctx context.Context, query string) ([]graph.Row, error)
}

// Summary maps observed node and edge labels to the union of property
// names seen on sampled members. Property slices are sorted.
type Summary struct {
	NodeLabels map[string][]string
	EdgeLabels map[string][]string
}

// Format renders the summary as deterministic human-readable text for
// embedding in a translation prompt.
func (s *Summary) Format() string {
	var sb strings.Builder
	sb.WriteString("Node Types:\n")
	for _, label := range sortedKeys(s.NodeLabels) {
		fmt.Fprintf(&sb, "  - %s: properties = {%s}\n", label, strings.Join(s.NodeLabels[label], ", "))
	}
	sb.WriteString("\nRelationship Types:\n")
	for _, label := range sortedKeys(s.EdgeLabels) {
		if props := s.EdgeLabels[label]; len(props) > 0 {
			fmt.Fprintf(&sb, "  - %s: properties = {%s}\n", label, strings.Join(props, ", "))
		} else {
			fmt.Fprintf(&sb, "  - %s\n", label)
		}
	}
	return sb.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sampler builds Summaries from bounded samples of a live graph.
type Sampler struct {
	q          Querier
	NodeSample int
	EdgeSample int
}

// NewSampler returns a Sampler with the default 50/50 bounds.
func NewSampler(q Querier) *Sampler {
	return &Sampler{q: q, NodeSample: DefaultNodeSample, EdgeSample: DefaultEdgeSample}
}

// Summarize fetches up to NodeSample nodes and EdgeSample edges, in no
// guaranteed order, and unions property-key sets per observed label.
func (s *Sampler) Summarize(ctx context.Context) (*Summary, error) {
	nodeStmt := fmt.Sprintf(
		"SELECT * FROM cypher('%s', $$ MATCH (n) RETURN n LIMIT %d $$) AS (node agtype);",
		s.q.Graph(), s.NodeSample)
	nodeRows, err := s.q.Execute(ctx, nodeStmt)
	if err != nil {
		return nil, fmt.Errorf("sampling nodes: %w", err)
	}

	edgeStmt := fmt.Sprintf(
		"SELECT * FROM cypher('%s', $$ MATCH ()-[r]->() RETURN r LIMIT %d $$) AS (edge agtype);",
		s.q.Graph(), s.EdgeSample)
	edgeRows, err := s.q.Execute(ctx, edgeStmt)
	if err != nil {
		return nil, fmt.Errorf("sampling edges: %w", err)
	}

	summary := &Summary{
		NodeLabels: map[string][]string{},
		EdgeLabels: map[string][]string{},
	}

	nodeProps := map[string]map[string]struct{}{}
	for _, row := range nodeRows {
		node := row["node"].Node
		if node == nil {
			continue
		}
		set, ok := nodeProps[node.Label]
		if !ok {
			set = map[string]struct{}{}
			nodeProps[node.Label] = set
		}
		for k := range node.Properties {
			set[k] = struct{}{}
		}
	}
	edgeProps := map[string]map[string]struct{}{}
	for _, row := range edgeRows {
		edge := row["edge"].Edge
		if edge == nil {
			continue
		}
		set, ok := edgeProps[edge.Label]
		if !ok {
			set = map[string]struct{}{}
			edgeProps[edge.Label] = set
		}
		for k := range edge.Properties {
			set[k] = struct{}{}
		}
	}

	for label, set := range nodeProps {
		summary.NodeLabels[label] = sortedSet(set)
	}
	for label, set := range edgeProps {
		summary.EdgeLabels[label] = sortedSet(set)
	}
	return summary, nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
