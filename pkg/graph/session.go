package graph

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/graphbridge/agegraph/pkg/agtype"
)

// DefaultGraphDataCap bounds GraphData snapshots when the caller passes
// no cap of its own.
const DefaultGraphDataCap = 200

// Session binds a Store to one active graph. The graph name is
// request-scoped state: create one Session per logical caller session
// and do not share it mutably across concurrent callers.
type Session struct {
	store *Store
	graph string
}

// Graph returns the active graph name.
func (s *Session) Graph() string { return s.graph }

// query executes one pre-built statement in its own transaction and
// decodes the result set. Each column comes back as agtype text and is
// parsed into a typed Cell.
func (s *Session) query(ctx context.Context, stmt string) ([]Row, error) {
	var out []Row
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, stmt)
		if err != nil {
			return extensionErr(err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return extensionErr(err)
		}
		for rows.Next() {
			raw := make([]sql.NullString, len(cols))
			ptrs := make([]any, len(cols))
			for i := range raw {
				ptrs[i] = &raw[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return extensionErr(err)
			}
			row := make(Row, len(cols))
			for i, col := range cols {
				if !raw[i].Valid {
					row[col] = Cell{}
					continue
				}
				cell, err := cellFromText(raw[i].String)
				if err != nil {
					return err
				}
				row[col] = cell
			}
			out = append(out, row)
		}
		return extensionErr(rows.Err())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Execute runs a pre-built Cypher statement verbatim against the active
// graph and returns the decoded rows. This is the trust boundary for
// translated queries: no semantic validation happens here beyond what
// the extension itself rejects.
func (s *Session) Execute(ctx context.Context, query string) ([]Row, error) {
	return s.query(ctx, query)
}

// CreateNode creates one node and returns it with its assigned id.
// Label and property keys must be safe identifiers.
func (s *Session) CreateNode(ctx context.Context, label string, props map[string]agtype.Value) (*Node, error) {
	if err := ValidateIdentifier(label); err != nil {
		return nil, err
	}
	if err := validateKeys(props); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, createNodeStmt(s.graph, label, props))
	if err != nil {
		return nil, err
	}
	return singleNode(rows, "node")
}

// Nodes returns nodes in the active graph, optionally filtered by an
// exact label match. A limit of zero or less returns all matches; this
// layer applies no implicit cap.
func (s *Session) Nodes(ctx context.Context, label string, limit int) ([]*Node, error) {
	if label != "" {
		if err := ValidateIdentifier(label); err != nil {
			return nil, err
		}
	}
	rows, err := s.query(ctx, matchNodesStmt(s.graph, label, limit))
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(rows))
	for _, row := range rows {
		cell, ok := row["node"]
		if !ok || cell.Node == nil {
			return nil, fmt.Errorf("%w: expected vertex column", ErrExtension)
		}
		nodes = append(nodes, cell.Node)
	}
	return nodes, nil
}

// UpdateNode merges the given properties into the node: mentioned keys
// are replaced, unmentioned keys are left untouched. Fails with
// ErrNodeNotFound if the id does not resolve in the active graph.
func (s *Session) UpdateNode(ctx context.Context, id int64, props map[string]agtype.Value) (*Node, error) {
	if err := validateKeys(props); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, updateNodeStmt(s.graph, id, props))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	return singleNode(rows, "node")
}

// DeleteNode removes the node and all incident edges. Deleting a
// nonexistent id is a zero-effect success, mirroring the extension's
// own semantics.
func (s *Session) DeleteNode(ctx context.Context, id int64) error {
	_, err := s.query(ctx, deleteNodeStmt(s.graph, id))
	return err
}

// CreateEdge creates a directed edge between two existing nodes. Fails
// with ErrNodeNotFound if either endpoint does not exist in the active
// graph; in that case no edge is created.
func (s *Session) CreateEdge(ctx context.Context, fromID, toID int64, label string, props map[string]agtype.Value) (*Edge, error) {
	if err := ValidateIdentifier(label); err != nil {
		return nil, err
	}
	if err := validateKeys(props); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, createEdgeStmt(s.graph, fromID, toID, label, props))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: endpoints %d -> %d", ErrNodeNotFound, fromID, toID)
	}
	return singleEdge(rows, "edge")
}

// Edges returns all edges with their endpoint nodes, optionally
// filtered by an exact label match.
func (s *Session) Edges(ctx context.Context, label string) ([]Triple, error) {
	if label != "" {
		if err := ValidateIdentifier(label); err != nil {
			return nil, err
		}
	}
	rows, err := s.query(ctx, matchEdgesStmt(s.graph, label))
	if err != nil {
		return nil, err
	}
	triples := make([]Triple, 0, len(rows))
	for _, row := range rows {
		from, edge, to := row["from_node"], row["edge"], row["to_node"]
		if from.Node == nil || edge.Edge == nil || to.Node == nil {
			return nil, fmt.Errorf("%w: malformed edge row", ErrExtension)
		}
		triples = append(triples, Triple{From: from.Node, Edge: edge.Edge, To: to.Node})
	}
	return triples, nil
}

// UpdateEdge merges properties into an edge, with the same semantics as
// UpdateNode. Fails with ErrEdgeNotFound if the id does not resolve.
func (s *Session) UpdateEdge(ctx context.Context, id int64, props map[string]agtype.Value) (*Edge, error) {
	if err := validateKeys(props); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, updateEdgeStmt(s.graph, id, props))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrEdgeNotFound, id)
	}
	return singleEdge(rows, "edge")
}

// DeleteEdge removes an edge without touching its endpoints. Idempotent
// like DeleteNode.
func (s *Session) DeleteEdge(ctx context.Context, id int64) error {
	_, err := s.query(ctx, deleteEdgeStmt(s.graph, id))
	return err
}

// GraphData returns a bounded snapshot for visualization: up to
// nodeCap nodes, then only the edges whose both endpoints fall inside
// that node set. Nodes are capped, edges are filtered by membership, so
// the snapshot never contains a dangling edge. A cap of zero or less
// uses DefaultGraphDataCap.
func (s *Session) GraphData(ctx context.Context, nodeCap int) (*GraphData, error) {
	if nodeCap <= 0 {
		nodeCap = DefaultGraphDataCap
	}
	nodes, err := s.Nodes(ctx, "", nodeCap)
	if err != nil {
		return nil, err
	}
	data := &GraphData{Nodes: nodes, Edges: []*Edge{}}
	if len(nodes) == 0 {
		return data, nil
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	rows, err := s.query(ctx, edgesAmongStmt(s.graph, ids))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		cell := row["edge"]
		if cell.Edge == nil {
			return nil, fmt.Errorf("%w: expected edge column", ErrExtension)
		}
		data.Edges = append(data.Edges, cell.Edge)
	}
	return data, nil
}

func validateKeys(props map[string]agtype.Value) error {
	for k := range props {
		if err := ValidateIdentifier(k); err != nil {
			return err
		}
	}
	return nil
}

func singleNode(rows []Row, col string) (*Node, error) {
	if len(rows) == 0 || rows[0][col].Node == nil {
		return nil, fmt.Errorf("%w: expected a vertex result", ErrExtension)
	}
	return rows[0][col].Node, nil
}

func singleEdge(rows []Row, col string) (*Edge, error) {
	if len(rows) == 0 || rows[0][col].Edge == nil {
		return nil, fmt.Errorf("%w: expected an edge result", ErrExtension)
	}
	return rows[0][col].Edge, nil
}
