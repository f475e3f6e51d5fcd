package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/effects"
	"github.com/matzehuels/metagraph/pkg/errors"
	"github.com/matzehuels/metagraph/pkg/graph"
	"github.com/matzehuels/metagraph/pkg/pipeline"
	"github.com/matzehuels/metagraph/pkg/render/nodelink"
	"github.com/matzehuels/metagraph/pkg/session"
)

// maxBodyBytes bounds request bodies; inline definitions are the largest.
const maxBodyBytes = 1 << 20

type effectInfo struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Params      []dag.Param `json:"params"`
}

type createRequest struct {
	Effect     string          `json:"effect,omitempty"`
	Definition *dag.Definition `json:"definition,omitempty"`
	Values     map[string]any  `json:"values,omitempty"`
	Mode       string          `json:"mode,omitempty"`
}

type createResponse struct {
	ID    string      `json:"id"`
	Graph graph.Graph `json:"graph"`
}

type valueRequest struct {
	Value any `json:"value"`
}

type modeResponse struct {
	Value  string `json:"value"`
	Active string `json:"active"`
}

type validateResponse struct {
	OK     bool        `json:"ok"`
	Issues []dag.Issue `json:"issues"`
}

func (s *Server) listEffects(w http.ResponseWriter, r *http.Request) {
	var out []effectInfo
	for _, e := range effects.All() {
		out = append(out, effectInfo{
			Name:        e.Name,
			Title:       e.Title,
			Category:    e.Category,
			Description: e.Description,
			Params:      e.Definition().Params,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}

	opts := pipeline.Options{
		Effect:     req.Effect,
		Definition: req.Definition,
		Mode:       req.Mode,
		Debug:      s.cfg.Debug,
	}
	if err := opts.ValidateForLoad(); err != nil {
		writeError(w, err)
		return
	}
	def, err := pipeline.LoadDefinition(opts)
	if err != nil {
		writeError(w, err)
		return
	}
	g, err := s.runner.Configure(r.Context(), def, req.Values, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := session.New(g, def, s.cfg.SessionTTL)
	if err := s.store.Set(r.Context(), sess); err != nil {
		g.Close()
		writeError(w, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID, "graph", def.Name)
	writeJSON(w, http.StatusCreated, createResponse{ID: sess.ID, Graph: graph.FromDAG(g)})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	dot := nodelink.ToDOT(snap, nodelink.Options{
		Detailed:   queryBool(r, "detailed"),
		HideParked: queryBool(r, "hide_parked"),
	})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dot))
}

func (s *Server) renderGraph(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	opts := pipeline.Options{
		Formats:    []string{format},
		Detailed:   queryBool(r, "detailed"),
		HideParked: queryBool(r, "hide_parked"),
	}
	if scale := r.URL.Query().Get("scale"); scale != "" {
		v, err := strconv.ParseFloat(scale, 64)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", scale))
			return
		}
		opts.Scale = v
	}
	artifacts, err := s.runner.Render(r.Context(), snap, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) validateGraph(w http.ResponseWriter, r *http.Request) {
	var res dag.ValidationResult
	if !s.with(w, r, func(g *dag.Graph) error {
		res = g.Validate()
		return nil
	}) {
		return
	}
	issues := res.Issues
	if issues == nil {
		issues = []dag.Issue{}
	}
	writeJSON(w, http.StatusOK, validateResponse{OK: res.OK(), Issues: issues})
}

func (s *Server) setParam(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !decode(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")

	var snap graph.Graph
	if !s.with(w, r, func(g *dag.Graph) error {
		if err := pipeline.ApplyValues(r.Context(), g, map[string]any{name: req.Value}); err != nil {
			return err
		}
		snap = graph.FromDAG(g)
		return nil
	}) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) setParams(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !decode(w, r, &values) {
		return
	}

	var snap graph.Graph
	if !s.with(w, r, func(g *dag.Graph) error {
		if err := pipeline.ApplyValues(r.Context(), g, values); err != nil {
			return err
		}
		snap = graph.FromDAG(g)
		return nil
	}) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// setMode answers 200 for unknown values too, in debug mode as well; the
// graph falls back to the first alternative and the response names the
// node that ended up active.
func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !decode(w, r, &req) {
		return
	}
	value, ok := req.Value.(string)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "mode value must be a string, got %T", req.Value))
		return
	}

	var resp modeResponse
	if !s.with(w, r, func(g *dag.Graph) error {
		active, err := pipeline.SwitchMode(r.Context(), g, value)
		if err != nil {
			return err
		}
		resp.Value, _ = g.Mode()
		resp.Active = active
		return nil
	}) {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// with runs fn under the session lock, writing any error as the response.
func (s *Server) with(w http.ResponseWriter, r *http.Request, fn func(g *dag.Graph) error) bool {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return false
	}
	if err := sess.Do(fn); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (graph.Graph, bool) {
	var snap graph.Graph
	ok := s.with(w, r, func(g *dag.Graph) error {
		snap = graph.FromDAG(g)
		return nil
	})
	return snap, ok
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
