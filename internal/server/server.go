// Package server exposes live graph sessions over HTTP.
//
// Every POST /graphs builds a graph and parks it in a session; later
// requests edit that graph in place. Mutations on one session are
// serialized by the session's lock, and sessions never share state.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/metagraph/pkg/pipeline"
	"github.com/matzehuels/metagraph/pkg/session"
)

// Config holds server settings.
type Config struct {
	Addr       string
	SessionTTL time.Duration
	// SweepInterval is how often expired sessions are collected.
	SweepInterval time.Duration
	// Debug makes an unknown mode value an error instead of a fallback.
	Debug  bool
	Logger *log.Logger
}

const (
	DefaultAddr          = "127.0.0.1:8080"
	DefaultSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

// Server serves the graph session API.
type Server struct {
	runner *pipeline.Runner
	store  session.Store
	cfg    Config
	logger *log.Logger
}

// New creates a server. A nil store means an in-memory store.
func New(runner *pipeline.Runner, store session.Store, cfg Config) *Server {
	if store == nil {
		store = session.NewMemoryStore()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: store, cfg: cfg, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/effects", s.listEffects)
	r.Route("/graphs", func(r chi.Router) {
		r.Post("/", s.createGraph)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getGraph)
			r.Delete("/", s.deleteGraph)
			r.Get("/dot", s.getDOT)
			r.Get("/render/{format}", s.renderGraph)
			r.Get("/validate", s.validateGraph)
			r.Put("/params", s.setParams)
			r.Put("/params/{name}", s.setParam)
			r.Put("/mode", s.setMode)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.store.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.store.Close()
	return err
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.store.Cleanup(ctx); err != nil {
				s.logger.Warn("session sweep failed", "err", err)
			} else if n > 0 {
				s.logger.Debug("expired sessions closed", "count", n)
			}
		}
	}
}
