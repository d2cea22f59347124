// Package api serves box layouts over HTTP.
//
// # Routes
//
//	GET    /healthz
//	GET    /v1/version
//	GET    /v1/algorithms
//	POST   /v1/layouts                     lay out a graph and store the record
//	GET    /v1/layouts                     newest records first (?limit=n)
//	GET    /v1/layouts/{id}
//	DELETE /v1/layouts/{id}
//	GET    /v1/layouts/{id}/render/{format}
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status given by errors.HTTPStatus.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/boxlayout/pkg/config"
	"github.com/matzehuels/boxlayout/pkg/observability"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API. Handlers share one runner and one store.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	defaults pipeline.Options
	cfg      config.Server
	logger   *log.Logger
}

// New creates a server. Request options are overlaid on defaults.
func New(runner *pipeline.Runner, st store.Store, defaults pipeline.Options, cfg config.Server, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		store:    st,
		defaults: defaults,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/algorithms", s.handleAlgorithms)
		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.handleCreateLayout)
			r.Get("/", s.handleListLayouts)
			r.Get("/{id}", s.handleGetLayout)
			r.Delete("/{id}", s.handleDeleteLayout)
			r.Get("/{id}/render/{format}", s.handleRenderLayout)
		})
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// instrument reports every request to the HTTP hooks and logs it at debug
// level.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", elapsed, "request_id", middleware.GetReqID(r.Context()))
	})
}
