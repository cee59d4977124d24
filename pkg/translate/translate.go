// Package translate turns natural-language questions into executable
// Cypher statements for a target graph, using a chat-completion model
// and a post-pass that repairs or rejects dialect violations.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse means the model's reply could not be decoded into a
	// query.
	ErrParse = errors.New("unparseable model response")
	// ErrTimeout means the model did not answer within the deadline.
	ErrTimeout = errors.New("translation timed out")
	// ErrDialect means the produced query uses a construct the graph
	// engine cannot run and no mechanical repair exists.
	ErrDialect = errors.New("unsupported dialect construct")
)

// Result is the outcome of one translation. It is always returned with
// a nil error from Translate: failures are reported through Success and
// Error so callers can hand the result straight to an API response.
type Result struct {
	Success     bool     `json:"success"`
	Query       string   `json:"query,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Assumptions []string `json:"assumptions,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Completer produces one assistant reply for a system+user prompt pair.
// *ChatClient satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Translator builds prompts, calls the model, and conforms the answer
// to the target dialect.
type Translator struct {
	completer Completer
}

// NewTranslator wraps a completer.
func NewTranslator(c Completer) *Translator {
	return &Translator{completer: c}
}

const systemPrompt = `You translate natural-language questions about a property graph into Cypher queries for Apache AGE (PostgreSQL).

Rules:
- Use only the node labels, relationship types, and property names listed in the schema.
- Every relationship pattern must use brackets: ()-[]->(), never ()-->() or ()--().
- Match exactly one relationship type per pattern; alternation like [r:A|B] is not supported. Filter with WHERE type(r) IN [...] instead.
- Use length() instead of size() for paths and lists.
- Use LIMIT when appropriate to avoid returning too much data.
- Return a plain Cypher query body; do not wrap it in SQL.

Shortest path and route questions (graphs with distance/time properties):
- Always bound variable-length patterns: (a)-[r*1..6]-(b) for up to 6 hops, never an unbounded *.
- Aggregate the edge weights: MATCH paths = (a)-[r*1..6]-(b) WITH paths, relationships(paths) AS rels UNWIND rels AS rel WITH nodes(paths) AS nodes, sum(rel.property) AS total
- Order ascending by the summed weight and cap the results: RETURN nodes, total ORDER BY total LIMIT 5

Answer with a JSON object:
{"query": "<cypher>", "explanation": "<one sentence>", "assumptions": ["<assumption>", ...]}`

// Translate answers question against the graph described by
// schemaSummary. It never returns an error: every failure mode is
// folded into the Result so a bad model reply cannot take down the
// caller.
func (t *Translator) Translate(ctx context.Context, question, schemaSummary, graphName string) *Result {
	user := fmt.Sprintf("Graph schema:\n%s\nQuestion: %s", schemaSummary, question)

	reply, err := t.completer.Complete(ctx, systemPrompt, user)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failure(fmt.Errorf("%w: %v", ErrTimeout, err))
		}
		return failure(err)
	}

	parsed, err := parseReply(reply)
	if err != nil {
		return failure(err)
	}

	query, err := Conform(parsed.query, graphName)
	if err != nil {
		return failure(err)
	}

	return &Result{
		Success:     true,
		Query:       query,
		Explanation: parsed.explanation,
		Assumptions: parsed.assumptions,
	}
}

func failure(err error) *Result {
	return &Result{Success: false, Error: err.Error()}
}

type modelReply struct {
	query       string
	explanation string
	assumptions []string
}

// parseReply decodes the model's JSON answer. Models sometimes fence
// the object in markdown or use "cypher" instead of "query"; both are
// tolerated, and assumptions may be a string or an array.
func parseReply(reply string) (*modelReply, error) {
	text := stripFences(reply)

	var raw struct {
		Query       string          `json:"query"`
		Cypher      string          `json:"cypher"`
		Explanation string          `json:"explanation"`
		Assumptions json.RawMessage `json:"assumptions"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	query := raw.Query
	if query == "" {
		query = raw.Cypher
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: no query field in reply", ErrParse)
	}

	out := &modelReply{query: query, explanation: raw.Explanation}
	if len(raw.Assumptions) > 0 {
		var list []string
		if err := json.Unmarshal(raw.Assumptions, &list); err == nil {
			out.assumptions = list
		} else {
			var one string
			if err := json.Unmarshal(raw.Assumptions, &one); err == nil && one != "" {
				out.assumptions = []string{one}
			}
		}
	}
	return out, nil
}

// stripFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		first := strings.TrimSpace(s[:nl])
		if first == "json" || first == "" {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
