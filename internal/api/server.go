// Package api serves the diagram pipeline and override store over HTTP.
//
// # Routes
//
//	POST   /v1/layout                          geometry JSON for a document
//	POST   /v1/render?format=svg|png|pdf|json  one rendered artifact
//	GET    /v1/diagrams/{key}/overrides        the diagram's override set
//	PUT    /v1/diagrams/{key}/overrides/{rec}  replace one override record
//	DELETE /v1/diagrams/{key}/overrides        delete every record
//	GET    /healthz                            liveness
//
// Layout and render requests carry the flow document, pipeline options and
// optional TOML rules:
//
//	{"input": {...}, "options": {"width": 1200}, "rules": "gap = 12"}
//
// Failures are answered with {"error": CODE, "message": "..."}. Input and
// validation errors map to 400, missing resources to 404, everything else
// to 500.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/alluvial/pkg/observability"
	"github.com/matzehuels/alluvial/pkg/pipeline"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 8 << 20

	shutdownTimeout = 10 * time.Second
)

// Server routes API requests to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server backed by runner. The runner's override repository
// serves the /v1/diagrams routes.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{runner: runner, logger: runner.Logger}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Route("/diagrams/{key}/overrides", func(r chi.Router) {
			r.Get("/", s.handleGetOverrides)
			r.Delete("/", s.handleResetOverrides)
			r.Put("/{record}", s.handlePutRecord)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NOT_FOUND", Message: "no such route"})
	})
	return r
}

// observe reports every request to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
