// Package server exposes the bundling pipeline over HTTP.
//
// Routes:
//
//	GET  /health   liveness and build information
//	GET  /stats    pipeline and cache counters
//	POST /order    package.json body, returns the resolved order as JSON
//	POST /bundle   package.json body, returns the concatenated JSCAD source
//
// All packages are resolved inside the single project directory the server
// was configured with. Errors are JSON objects carrying a machine-readable
// code from pkg/errors.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/jscadpack/pkg/observability"
	"github.com/matzehuels/jscadpack/pkg/pipeline"
)

const (
	// maxManifestSize bounds request bodies.
	maxManifestSize = 1 << 20

	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Runner  *pipeline.Runner        // Required
	Options pipeline.Options        // Base options for every request
	Header  bool                    // Per-file header comments in /bundle output
	Stats   *observability.Counters // Served on /stats; nil disables the route
	Logger  *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	header bool
	stats  *observability.Counters
	logger *log.Logger
}

// New creates a server from cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: cfg.Runner,
		opts:   cfg.Options.WithDefaults(),
		header: cfg.Header,
		stats:  cfg.Stats,
		logger: logger,
	}
}

// Handler returns the chi mux with all routes wired.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth())
	if s.stats != nil {
		r.Get("/stats", s.handleStats())
		r.Method(http.MethodGet, "/metrics", metricsHandler(s.stats))
	}
	r.Post("/order", s.handleOrder())
	r.Post("/bundle", s.handleBundle())

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String(), "dir", s.opts.Dir)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
