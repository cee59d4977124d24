package server

import (
	"net/http"
	"strconv"

	"github.com/graphbridge/agegraph/pkg/agtype"
	"github.com/graphbridge/agegraph/pkg/graph"
	"github.com/graphbridge/agegraph/pkg/schema"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	graphs, err := s.store.ListGraphs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if graphs == nil {
		graphs = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"graphs": graphs})
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	sess, err := s.store.CreateGraph(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"graph": sess.Graph()})
}

func (s *Server) handleDropGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DropGraph(r.Context(), r.PathValue("graph")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateIndexes(w http.ResponseWriter, r *http.Request) {
	created, err := s.store.CreateIndexes(r.Context(), r.PathValue("graph"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if created == nil {
		created = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"indexes": created})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (Session, bool) {
	sess, err := s.store.Session(r.Context(), r.PathValue("graph"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func pathID(w http.ResponseWriter, r *http.Request, s *Server) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.badRequest(w, "id must be an integer")
		return 0, false
	}
	return id, true
}

func properties(w http.ResponseWriter, s *Server, raw map[string]any) (map[string]agtype.Value, bool) {
	props, err := agtype.FromNativeMap(raw)
	if err != nil {
		s.badRequest(w, err.Error())
		return nil, false
	}
	return props, true
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.badRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}
	nodes, err := sess.Nodes(r.Context(), r.URL.Query().Get("label"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if nodes == nil {
		nodes = []*graph.Node{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Label      string         `json:"label"`
		Properties map[string]any `json:"properties"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	props, ok := properties(w, s, req.Properties)
	if !ok {
		return
	}
	node, err := sess.CreateNode(r.Context(), req.Label, props)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, s)
	if !ok {
		return
	}
	var req struct {
		Properties map[string]any `json:"properties"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	props, ok := properties(w, s, req.Properties)
	if !ok {
		return
	}
	node, err := sess.UpdateNode(r.Context(), id, props)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, s)
	if !ok {
		return
	}
	if err := sess.DeleteNode(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEdges(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	triples, err := sess.Edges(r.Context(), r.URL.Query().Get("label"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if triples == nil {
		triples = []graph.Triple{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"edges": triples})
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		From       int64          `json:"from"`
		To         int64          `json:"to"`
		Label      string         `json:"label"`
		Properties map[string]any `json:"properties"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	props, ok := properties(w, s, req.Properties)
	if !ok {
		return
	}
	edge, err := sess.CreateEdge(r.Context(), req.From, req.To, req.Label, props)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleUpdateEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, s)
	if !ok {
		return
	}
	var req struct {
		Properties map[string]any `json:"properties"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	props, ok := properties(w, s, req.Properties)
	if !ok {
		return
	}
	edge, err := sess.UpdateEdge(r.Context(), id, props)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, edge)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, s)
	if !ok {
		return
	}
	if err := sess.DeleteEdge(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuery executes caller-supplied SQL verbatim. The endpoint
// inherits the facade's trust model: it is for operators, not untrusted
// input.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if req.Query == "" {
		s.badRequest(w, "query is required")
		return
	}
	rows, err := sess.Execute(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rows == nil {
		rows = []graph.Row{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if s.translator == nil {
		s.writeJSON(w, http.StatusServiceUnavailable,
			map[string]any{"error": "translation is not configured"})
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Question string `json:"question"`
		Execute  bool   `json:"execute"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if req.Question == "" {
		s.badRequest(w, "question is required")
		return
	}

	sampler := schema.NewSampler(sess)
	sampler.NodeSample = s.config.NodeSample
	sampler.EdgeSample = s.config.EdgeSample
	summary, err := sampler.Summarize(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := s.translator.Translate(r.Context(), req.Question, summary.Format(), sess.Graph())

	resp := map[string]any{"translation": result}
	if result.Success && req.Execute {
		rows, err := sess.Execute(r.Context(), result.Query)
		if err != nil {
			resp["execution_error"] = err.Error()
		} else {
			if rows == nil {
				rows = []graph.Row{}
			}
			resp["rows"] = rows
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraphData(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	nodeCap := s.config.GraphDataCap
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.badRequest(w, "limit must be a positive integer")
			return
		}
		nodeCap = n
	}
	data, err := sess.GraphData(r.Context(), nodeCap)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}
