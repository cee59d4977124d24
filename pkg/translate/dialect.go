package translate

import (
	"fmt"
	"regexp"
	"strings"
)

// Conform normalizes a model-produced query into an AGE-executable SQL
// statement against graphName. It repairs the known dialect gaps where
// a mechanical rewrite exists and returns ErrDialect for constructs
// that have no safe rewrite.
//
// Repairs:
//   - anonymous relationship shorthand: ()--(), ()-->(), ()<--() become
//     the bracketed forms ()-[]-() etc.
//   - size(...) on paths/lists becomes length(...)
//   - a bare Cypher body is wrapped in the cypher() table function with
//     a column list derived from its RETURN projection
//   - a cypher('other_graph', ...) call is retargeted at graphName
//
// Rejections:
//   - relationship type alternation [r:A|B], which AGE does not parse
func Conform(query, graphName string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("%w: empty query", ErrDialect)
	}

	if pos := alternationIndex(q); pos != -1 {
		return "", fmt.Errorf(
			"%w: relationship type alternation %q is not supported; match a single type, or use an untyped pattern with a WHERE type(r) IN [...] filter",
			ErrDialect, snippet(q, pos))
	}

	// Order matters: the directed arrows contain "--" as a substring.
	q = replaceOutsideLiterals(q, "-->", "-[]->")
	q = replaceOutsideLiterals(q, "<--", "<-[]-")
	q = rewriteBareDashes(q)
	q = rewriteSizeCalls(q)

	if isWrapped(q) {
		return retargetGraph(q, graphName), nil
	}
	return wrapCypher(q, graphName)
}

// alternationRe matches a type alternation inside a relationship
// pattern, e.g. [r:KNOWS|LIKES] or [:A|B|C]. Quantified patterns like
// [*1..3] contain no ':' and never match.
var alternationRe = regexp.MustCompile(`\[\s*\w*\s*:\s*\w+(\s*\|\s*\w+)+`)

func alternationIndex(q string) int {
	mask := literalMask(q)
	for _, loc := range alternationRe.FindAllStringIndex(q, -1) {
		if !mask[loc[0]] {
			return loc[0]
		}
	}
	return -1
}

func snippet(q string, pos int) string {
	end := pos + 24
	if end > len(q) {
		end = len(q)
	}
	return q[pos:end]
}

// rewriteBareDashes turns remaining "--" occurrences into "-[]-". At
// this point directed arrows are already bracketed, so a surviving "--"
// is the undirected anonymous shorthand.
func rewriteBareDashes(q string) string {
	for {
		pos := indexOutsideLiterals(q, "--", 0)
		if pos == -1 {
			return q
		}
		q = q[:pos] + "-[]-" + q[pos+2:]
	}
}

var sizeCallRe = regexp.MustCompile(`(?i)\bsize\s*\(`)

func rewriteSizeCalls(q string) string {
	mask := literalMask(q)
	var sb strings.Builder
	last := 0
	for _, loc := range sizeCallRe.FindAllStringIndex(q, -1) {
		if mask[loc[0]] {
			continue
		}
		if loc[0] > 0 && !isWordBoundary(rune(q[loc[0]-1])) {
			continue
		}
		sb.WriteString(q[last:loc[0]])
		sb.WriteString("length(")
		last = loc[1]
	}
	sb.WriteString(q[last:])
	return sb.String()
}

// isWrapped reports whether the query is already a SQL statement using
// the cypher() table function rather than a bare Cypher body.
func isWrapped(q string) bool {
	sel := keywordIndex(q, "SELECT", 0)
	if sel == -1 {
		return false
	}
	cy := indexOutsideLiterals(strings.ToLower(q), "cypher", sel)
	return cy != -1
}

var cypherGraphRe = regexp.MustCompile(`(?i)(cypher\s*\(\s*')([^']*)(')`)

// retargetGraph rewrites the graph argument of an existing cypher()
// call so the statement runs against the session's active graph even
// when the model hallucinated a different name.
func retargetGraph(q, graphName string) string {
	return cypherGraphRe.ReplaceAllString(q, "${1}"+graphName+"${3}")
}

// wrapCypher wraps a bare Cypher body in the cypher() table function
// with a column definition list derived from the RETURN projection.
// Bodies without RETURN (pure writes) get a single dummy column, which
// AGE requires even when no rows come back.
func wrapCypher(body, graphName string) (string, error) {
	body = strings.TrimSuffix(strings.TrimSpace(body), ";")

	cols := []string{"result"}
	if ret := lastKeywordIndex(body, "RETURN"); ret != -1 {
		proj := body[ret+len("RETURN"):]
		proj = trimProjectionTail(proj)
		proj = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(proj), "DISTINCT "))
		if proj != "" {
			cols = projectionColumns(proj)
		}
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c + " agtype"
	}
	return fmt.Sprintf("SELECT * FROM cypher('%s', $$ %s $$) AS (%s);",
		graphName, body, strings.Join(defs, ", ")), nil
}

// trimProjectionTail cuts ORDER BY / SKIP / LIMIT off a projection so
// only the returned expressions remain.
func trimProjectionTail(proj string) string {
	cut := len(proj)
	for _, kw := range []string{"ORDER BY", "SKIP", "LIMIT"} {
		if pos := keywordIndex(proj, kw, 0); pos != -1 && pos < cut {
			cut = pos
		}
	}
	return proj[:cut]
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// projectionColumns derives one column name per projected expression:
// the AS alias when present, the expression itself when it is a plain
// identifier, a property name for n.prop, and colN otherwise. Names are
// deduplicated because AGE rejects repeated column names.
func projectionColumns(proj string) []string {
	parts := splitProjection(proj)
	cols := make([]string, 0, len(parts))
	used := map[string]int{}
	for i, part := range parts {
		name := columnName(part, i)
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[name]++
		cols = append(cols, name)
	}
	return cols
}

func columnName(expr string, idx int) string {
	if pos := lastKeywordIndex(expr, "AS"); pos != -1 {
		alias := strings.TrimSpace(expr[pos+2:])
		alias = strings.Trim(alias, "`\"")
		if identRe.MatchString(alias) {
			return alias
		}
	}
	if identRe.MatchString(expr) {
		return expr
	}
	if dot := strings.LastIndexByte(expr, '.'); dot != -1 {
		prop := strings.TrimSpace(expr[dot+1:])
		if identRe.MatchString(prop) {
			return prop
		}
	}
	return fmt.Sprintf("col%d", idx+1)
}
