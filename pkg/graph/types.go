// Package graph provides typed access to property graphs stored in
// Apache AGE, the graph extension for PostgreSQL.
//
// A Store owns the database pool and the graph catalog operations
// (list, create, drop). A Session binds a Store to one active graph and
// exposes node/edge CRUD, raw Cypher execution, and bounded snapshots
// for visualization. Every operation runs as a single transaction with
// the ag_catalog search path set locally, committing on success and
// rolling back on any failure.
//
// Sessions hold only the active graph name. They are cheap to create,
// one per logical caller session; a single Session must not be shared
// mutably across concurrent callers.
package graph

import (
	"fmt"
	"regexp"

	"github.com/graphbridge/agegraph/pkg/agtype"
)

// Node is a graph vertex: an extension-assigned id, one label, and a
// property map. The id is opaque and never reused within a graph.
type Node struct {
	ID         int64                   `json:"id"`
	Label      string                  `json:"label"`
	Properties map[string]agtype.Value `json:"properties"`
}

// Edge is a directed relationship between two nodes in the same graph.
type Edge struct {
	ID         int64                   `json:"id"`
	Label      string                  `json:"label"`
	StartID    int64                   `json:"start_id"`
	EndID      int64                   `json:"end_id"`
	Properties map[string]agtype.Value `json:"properties"`
}

// Triple is an edge together with both endpoint nodes, as returned by
// Session.Edges.
type Triple struct {
	From *Node `json:"from"`
	Edge *Edge `json:"edge"`
	To   *Node `json:"to"`
}

// GraphData is a bounded snapshot for visualization. Every edge in the
// snapshot has both endpoints present in Nodes; edges reaching outside
// the node cap are filtered out, never truncated to dangling references.
type GraphData struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Cell is one decoded result column. Value is always set; Node or Edge
// is additionally set when the column carried a ::vertex or ::edge
// annotation.
type Cell struct {
	Value agtype.Value `json:"value"`
	Node  *Node        `json:"node,omitempty"`
	Edge  *Edge        `json:"edge,omitempty"`
}

// Row maps result column names to decoded cells.
type Row map[string]Cell

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier checks that a label, property key, or graph name is
// a safe dialect identifier. Values are always literal-encoded, so
// identifiers are the only place untrusted text could reach query
// structure; anything with quotes, terminators, or other punctuation is
// rejected with ErrInvalidIdentifier.
func ValidateIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// nodeFromValue converts a decoded ::vertex map into a Node.
func nodeFromValue(v agtype.Value) (*Node, error) {
	m, ok := v.Map()
	if !ok {
		return nil, fmt.Errorf("%w: vertex payload is %s, not a map", ErrExtension, v.Kind())
	}
	id, ok := m["id"].Int()
	if !ok {
		return nil, fmt.Errorf("%w: vertex without integer id", ErrExtension)
	}
	label, _ := m["label"].Text()
	props, _ := m["properties"].Map()
	if props == nil {
		props = map[string]agtype.Value{}
	}
	return &Node{ID: id, Label: label, Properties: props}, nil
}

// edgeFromValue converts a decoded ::edge map into an Edge.
func edgeFromValue(v agtype.Value) (*Edge, error) {
	m, ok := v.Map()
	if !ok {
		return nil, fmt.Errorf("%w: edge payload is %s, not a map", ErrExtension, v.Kind())
	}
	id, ok := m["id"].Int()
	if !ok {
		return nil, fmt.Errorf("%w: edge without integer id", ErrExtension)
	}
	start, ok := m["start_id"].Int()
	if !ok {
		return nil, fmt.Errorf("%w: edge without start_id", ErrExtension)
	}
	end, ok := m["end_id"].Int()
	if !ok {
		return nil, fmt.Errorf("%w: edge without end_id", ErrExtension)
	}
	label, _ := m["label"].Text()
	props, _ := m["properties"].Map()
	if props == nil {
		props = map[string]agtype.Value{}
	}
	return &Edge{ID: id, Label: label, StartID: start, EndID: end, Properties: props}, nil
}

// cellFromText decodes one raw result column into a Cell.
func cellFromText(text string) (Cell, error) {
	v, err := agtype.Decode(text)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %v", ErrExtension, err)
	}
	cell := Cell{Value: v}
	switch v.Annotation() {
	case "vertex":
		node, err := nodeFromValue(v)
		if err != nil {
			return Cell{}, err
		}
		cell.Node = node
	case "edge":
		edge, err := edgeFromValue(v)
		if err != nil {
			return Cell{}, err
		}
		cell.Edge = edge
	}
	return cell, nil
}
