package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// CreateRequest is the body of POST /v1/layouts.
type CreateRequest struct {
	Graph graph.Graph `json:"graph"`

	// Options is a flat option object: "defaultLayout" and keys such as
	// "appBoxLayout" select algorithms, everything else goes to the outer
	// layout. Missing entries fall back to the server configuration.
	Options layout.Params `json:"options,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`
}

// CreateResponse is returned by POST /v1/layouts. Artifacts are base64
// encoded by encoding/json.
type CreateResponse struct {
	ID        string             `json:"id"`
	Layout    graph.Layout       `json:"layout"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Stats     pipeline.Stats     `json:"stats"`
}

// Summary describes a stored layout in listings.
type Summary struct {
	ID        string    `json:"id"`
	Algorithm string    `json:"algorithm"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Anomalies int       `json:"anomalies,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	"svg":               "image/svg+xml",
	"png":               "image/png",
	"jpg":               "image/jpeg",
	"dot":               "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string][]string{"algorithms": s.runner.Registry.Names()})
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
			return
		}
		s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	g, err := graph.ToCompound(req.Graph)
	if err != nil {
		s.fail(w, err)
		return
	}
	opts, err := s.options(req)
	if err != nil {
		s.fail(w, err)
		return
	}

	ctx := r.Context()
	if s.cfg.LayoutTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LayoutTimeout)
		defer cancel()
	}

	res, err := s.runner.Execute(ctx, g, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	l := res.Layout
	id, err := s.store.Save(r.Context(), &l)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("stored layout", "id", id, "nodes", res.Stats.NodeCount, "cached", res.CacheInfo.LayoutHit)

	w.Header().Set("Location", "/v1/layouts/"+id)
	s.respond(w, http.StatusCreated, CreateResponse{
		ID:        id,
		Layout:    l,
		Artifacts: res.Artifacts,
		Cache:     res.CacheInfo,
		Stats:     res.Stats,
	})
}

// options overlays the request's option object on the server defaults.
func (s *Server) options(req CreateRequest) (pipeline.Options, error) {
	opts := s.defaults
	opts.Boxes = maps.Clone(s.defaults.Boxes)
	opts.Formats = req.Formats
	opts.Detailed = req.Detailed
	opts.Refresh = req.Refresh
	opts.Logger = nil

	if len(req.Options) == 0 {
		return opts, nil
	}
	ro, err := pipeline.OptionsFromParams(req.Options)
	if err != nil {
		return pipeline.Options{}, err
	}
	if !ro.Default.IsZero() {
		opts.Default = ro.Default
	}
	if len(ro.Boxes) > 0 && opts.Boxes == nil {
		opts.Boxes = make(map[string]layout.Config, len(ro.Boxes))
	}
	maps.Copy(opts.Boxes, ro.Boxes)
	if len(ro.Params) > 0 {
		opts.Params = opts.Params.Merge(ro.Params)
	}
	return opts, nil
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	layouts, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]Summary, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, Summary{
			ID:        l.ID,
			Algorithm: l.Algorithm,
			Nodes:     len(l.Graph.Nodes),
			Edges:     len(l.Graph.Edges),
			Width:     l.Width,
			Height:    l.Height,
			Anomalies: len(l.Anomalies),
			CreatedAt: l.CreatedAt,
		})
	}
	s.respond(w, http.StatusOK, map[string][]Summary{"layouts": out})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderLayout(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, err)
		return
	}
	l, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	g, err := graph.ToCompound(l.Graph)
	if err != nil {
		s.fail(w, err)
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	artifacts, err := s.runner.Render(r.Context(), g, *l, pipeline.Options{
		Formats:  []string{format},
		Detailed: detailed,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[format]); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondError(w, status, code, "%s", errors.UserMessage(err))
}

func (s *Server) respondError(w http.ResponseWriter, status int, code errors.Code, format string, args ...any) {
	s.respond(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
	}})
}
