package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	// captured prompts
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.reply, f.err
}

const sampleSchema = "Node Types:\n  - Person: properties = {age, name}\n"

func TestTranslateSuccess(t *testing.T) {
	f := &fakeCompleter{
		reply: `{"query": "MATCH (n:Person) WHERE n.age > 30 RETURN n.name", "explanation": "Finds people over thirty.", "assumptions": ["age is stored in years"]}`,
	}

	res := NewTranslator(f).Translate(context.Background(), "who is over 30?", sampleSchema, "social")
	require.True(t, res.Success, "error: %s", res.Error)

	assert.Equal(t,
		"SELECT * FROM cypher('social', $$ MATCH (n:Person) WHERE n.age > 30 RETURN n.name $$) AS (name agtype);",
		res.Query)
	assert.Equal(t, "Finds people over thirty.", res.Explanation)
	assert.Equal(t, []string{"age is stored in years"}, res.Assumptions)

	// Prompt carries the schema and the question.
	assert.Contains(t, f.user, sampleSchema)
	assert.Contains(t, f.user, "who is over 30?")
	assert.Contains(t, f.system, "Apache AGE")
}

func TestTranslateRouteQuestion(t *testing.T) {
	f := &fakeCompleter{
		reply: `{"query": "MATCH paths = (a:City {name: 'Boston'})-[r*1..6]-(b:City {name: 'Denver'}) WITH paths, relationships(paths) AS rels UNWIND rels AS rel WITH nodes(paths) AS nodes, sum(rel.time) AS total RETURN nodes, total ORDER BY total LIMIT 5"}`,
	}

	res := NewTranslator(f).Translate(context.Background(), "fastest route from Boston to Denver?", sampleSchema, "road")
	require.True(t, res.Success, "error: %s", res.Error)

	// Bounded pattern and result cap survive conformance untouched.
	assert.Contains(t, res.Query, "[r*1..6]")
	assert.Contains(t, res.Query, "ORDER BY total LIMIT 5")
	assert.Contains(t, res.Query, "AS (nodes agtype, total agtype);")

	// The prompt steers route questions toward bounded hops, summed
	// weights, ascending order, and a small result cap.
	assert.Contains(t, f.system, "(a)-[r*1..6]-(b)")
	assert.Contains(t, f.system, "never an unbounded *")
	assert.Contains(t, f.system, "sum(rel.property)")
	assert.Contains(t, f.system, "ORDER BY total LIMIT 5")
	assert.Contains(t, f.system, "Use LIMIT when appropriate")
}

func TestTranslateToleratesReplyVariants(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"cypher key", `{"cypher": "MATCH (n) RETURN n"}`},
		{"fenced", "```json\n{\"query\": \"MATCH (n) RETURN n\"}\n```"},
		{"bare fence", "```\n{\"query\": \"MATCH (n) RETURN n\"}\n```"},
		{"string assumptions", `{"query": "MATCH (n) RETURN n", "assumptions": "none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCompleter{reply: tt.reply}
			res := NewTranslator(f).Translate(context.Background(), "q", "", "g")
			require.True(t, res.Success, "error: %s", res.Error)
			assert.Contains(t, res.Query, "MATCH (n) RETURN n")
		})
	}
}

func TestTranslateNeverRaises(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		err      error
		errMatch string
	}{
		{"not json", "here is your query: MATCH (n) RETURN n", nil, "unparseable"},
		{"json without query", `{"explanation": "sorry"}`, nil, "unparseable"},
		{"empty query", `{"query": "  "}`, nil, "unparseable"},
		{"dialect violation", `{"query": "MATCH (a)-[r:A|B]->(b) RETURN a"}`, nil, "alternation"},
		{"transport error", "", errors.New("connection refused"), "connection refused"},
		{"deadline", "", fmt.Errorf("doing request: %w", context.DeadlineExceeded), "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCompleter{reply: tt.reply, err: tt.err}
			res := NewTranslator(f).Translate(context.Background(), "q", "", "g")
			require.False(t, res.Success)
			assert.Empty(t, res.Query)
			assert.Contains(t, res.Error, tt.errMatch)
		})
	}
}

func TestChatClientOpenAI(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"query\": \"MATCH (n) RETURN n\"}"}}]}`)
	}))
	defer srv.Close()

	cfg := DefaultClientConfig()
	cfg.Endpoint = srv.URL
	cfg.APIKey = "sk-test"
	client, err := NewChatClient(cfg)
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Contains(t, reply, "MATCH (n) RETURN n")

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "gpt-4o", gotReq["model"])
	assert.InDelta(t, 0.3, gotReq["temperature"].(float64), 1e-9)
	rf := gotReq["response_format"].(map[string]any)
	assert.Equal(t, "json_object", rf["type"])
}

func TestChatClientAzure(t *testing.T) {
	var gotKey, gotPath, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		gotPath = r.URL.Path
		gotVersion = r.URL.Query().Get("api-version")
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
	}))
	defer srv.Close()

	cfg := DefaultClientConfig()
	cfg.Endpoint = srv.URL
	cfg.APIKey = "azure-key"
	cfg.Deployment = "gpt4o-prod"
	client, err := NewChatClient(cfg)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)

	assert.Equal(t, "azure-key", gotKey)
	assert.Equal(t, "/openai/deployments/gpt4o-prod/chat/completions", gotPath)
	assert.Equal(t, "2024-02-01", gotVersion)
}

func TestChatClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "invalid api key", "type": "auth"}}`)
	}))
	defer srv.Close()

	cfg := DefaultClientConfig()
	cfg.Endpoint = srv.URL
	cfg.APIKey = "bad"
	client, err := NewChatClient(cfg)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "sys", "usr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestTranslateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := DefaultClientConfig()
	cfg.Endpoint = srv.URL
	cfg.APIKey = "k"
	client, err := NewChatClient(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := NewTranslator(client).Translate(ctx, "q", "", "g")
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
}

func TestNewChatClientValidation(t *testing.T) {
	_, err := NewChatClient(ClientConfig{APIKey: "k"})
	assert.Error(t, err)
	_, err = NewChatClient(ClientConfig{Endpoint: "http://x"})
	assert.Error(t, err)
}
