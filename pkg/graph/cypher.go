package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphbridge/agegraph/pkg/agtype"
)

// Statement builders. Each produces the full SQL statement AGE expects:
//
//	SELECT * FROM cypher('<graph>', $$ <body> $$) AS (<col> agtype, ...);
//
// The column declaration list must match the RETURN projection in count
// and order; the extension rejects the statement otherwise. Property
// values are always literal-encoded through agtype; labels, keys, and
// graph names pass through ValidateIdentifier before reaching these
// builders.

func cypherStatement(graph, body string, columns ...string) string {
	decls := make([]string, len(columns))
	for i, c := range columns {
		decls[i] = c + " agtype"
	}
	return fmt.Sprintf("SELECT * FROM cypher('%s', $$ %s $$) AS (%s);",
		graph, body, strings.Join(decls, ", "))
}

func createNodeStmt(graph, label string, props map[string]agtype.Value) string {
	body := fmt.Sprintf("CREATE (n:%s) RETURN n", label)
	if encoded := agtype.EncodeMap(props); encoded != "{}" {
		body = fmt.Sprintf("CREATE (n:%s %s) RETURN n", label, encoded)
	}
	return cypherStatement(graph, body, "node")
}

func matchNodesStmt(graph, label string, limit int) string {
	pattern := "(n)"
	if label != "" {
		pattern = fmt.Sprintf("(n:%s)", label)
	}
	body := fmt.Sprintf("MATCH %s RETURN n", pattern)
	if limit > 0 {
		body += fmt.Sprintf(" LIMIT %d", limit)
	}
	return cypherStatement(graph, body, "node")
}

// setClauses renders a merge-style property update: only the mentioned
// keys are assigned, unmentioned keys are untouched. Null values are
// skipped, consistent with the encoder's absence-means-no-property rule.
// Keys are sorted so identical updates produce identical query text.
func setClauses(varName string, props map[string]agtype.Value) string {
	keys := make([]string, 0, len(props))
	for k, v := range props {
		if v.IsNull() {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s.%s = %s", varName, k, agtype.Encode(props[k]))
	}
	return strings.Join(parts, ", ")
}

// updateNodeStmt merges props into a node. An empty merge (no keys, or
// only null values) degenerates to a plain match, so the caller still
// gets the current node and the not-found check.
func updateNodeStmt(graph string, id int64, props map[string]agtype.Value) string {
	body := fmt.Sprintf("MATCH (n) WHERE id(n) = %d RETURN n", id)
	if clauses := setClauses("n", props); clauses != "" {
		body = fmt.Sprintf("MATCH (n) WHERE id(n) = %d SET %s RETURN n", id, clauses)
	}
	return cypherStatement(graph, body, "node")
}

func deleteNodeStmt(graph string, id int64) string {
	// DETACH DELETE cascades to all incident edges. Matching zero nodes
	// is not an error; deletion is idempotent.
	body := fmt.Sprintf("MATCH (n) WHERE id(n) = %d DETACH DELETE n RETURN true", id)
	return cypherStatement(graph, body, "deleted")
}

func createEdgeStmt(graph string, fromID, toID int64, label string, props map[string]agtype.Value) string {
	propPart := ""
	if encoded := agtype.EncodeMap(props); encoded != "{}" {
		propPart = " " + encoded
	}
	body := fmt.Sprintf(
		"MATCH (a), (b) WHERE id(a) = %d AND id(b) = %d CREATE (a)-[r:%s%s]->(b) RETURN r",
		fromID, toID, label, propPart)
	return cypherStatement(graph, body, "edge")
}

func matchEdgesStmt(graph, label string) string {
	rel := "-[r]->"
	if label != "" {
		rel = fmt.Sprintf("-[r:%s]->", label)
	}
	body := fmt.Sprintf("MATCH (a)%s(b) RETURN a, r, b", rel)
	return cypherStatement(graph, body, "from_node", "edge", "to_node")
}

func updateEdgeStmt(graph string, id int64, props map[string]agtype.Value) string {
	body := fmt.Sprintf("MATCH ()-[r]->() WHERE id(r) = %d RETURN r", id)
	if clauses := setClauses("r", props); clauses != "" {
		body = fmt.Sprintf("MATCH ()-[r]->() WHERE id(r) = %d SET %s RETURN r", id, clauses)
	}
	return cypherStatement(graph, body, "edge")
}

func deleteEdgeStmt(graph string, id int64) string {
	body := fmt.Sprintf("MATCH ()-[r]->() WHERE id(r) = %d DELETE r RETURN true", id)
	return cypherStatement(graph, body, "deleted")
}

func edgesAmongStmt(graph string, ids []int64) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = fmt.Sprintf("%d", id)
	}
	list := strings.Join(strs, ", ")
	body := fmt.Sprintf(
		"MATCH (a)-[r]->(b) WHERE id(a) IN [%s] AND id(b) IN [%s] RETURN r", list, list)
	return cypherStatement(graph, body, "edge")
}
