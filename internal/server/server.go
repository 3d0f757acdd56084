// Package server exposes comparison and text diffing over HTTP.
//
//	GET  /healthz        liveness, and history database reachability
//	POST /v1/compare     two snapshot documents in, labelled diffs and DDL out
//	POST /v1/textdiff    two texts and a tokenizer in, LCS runs out
//	GET  /v1/history     recorded comparisons, paged by limit and offset
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/config"
	"github.com/koustreak/schemadiff/internal/history"
	"github.com/koustreak/schemadiff/internal/logger"
)

// History is the part of history.Store the server uses.
type History interface {
	Record(ctx context.Context, res *compare.Result, ddl string) (history.Run, error)
	Recent(ctx context.Context, databaseA string, limit, offset int) ([]history.Run, error)
}

// Pinger is implemented by backends /healthz checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the HTTP routes to the comparison engine.
type Server struct {
	cfg      config.ServerConfig
	log      *logger.Logger
	comparer *compare.Comparer
	history  History
	checks   map[string]Pinger
	router   chi.Router
}

// Option configures optional collaborators.
type Option func(*Server)

// WithHistory records every /v1/compare call and enables /v1/history.
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// WithHealthCheck adds a backend pinged by /healthz.
func WithHealthCheck(name string, p Pinger) Option {
	return func(s *Server) { s.checks[name] = p }
}

// New builds a Server. A nil log discards output.
func New(cfg config.ServerConfig, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:      cfg,
		log:      log.Component("server"),
		comparer: compare.New(log),
		checks:   make(map[string]Pinger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/compare", s.handleCompare)
		r.Post("/textdiff", s.handleTextDiff)
		r.Get("/history", s.handleHistory)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger writes one info line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.HTTPEvent().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		next.ServeHTTP(w, r)
	})
}
