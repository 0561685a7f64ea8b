// Package server implements the layoutview HTTP service.
//
// The service accepts a design upload (LEF and DEF files plus a JSON
// description of each file), runs it through the pipeline and answers with
// the gzip-compressed snapshot JSON the browser viewer reads. Snapshots are
// cached by file content and can be fetched again by key.
//
// Routes:
//
//	POST /api/design        multipart upload, returns gzip JSON
//	POST /                  same as POST /api/design
//	GET  /api/design/{key}  a previously built snapshot
//	GET  /healthz           liveness and version
//	GET  /metrics           Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/matzehuels/layoutview/pkg/pipeline"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultPort is used when neither the config nor $PORT name one.
	DefaultPort = "8080"

	// DefaultMaxUploadBytes bounds the size of an upload request.
	DefaultMaxUploadBytes int64 = 100 << 20

	// DefaultFormMemoryBytes is how much of a multipart form is held in
	// memory; larger parts are spooled to disk.
	DefaultFormMemoryBytes int64 = 2 << 20

	// DefaultRequestTimeout bounds one request, including the design load.
	DefaultRequestTimeout = 60 * time.Second

	shutdownTimeout = 5 * time.Second
)

// DefaultAllowedOrigins are the viewer origins allowed by CORS.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost",
}

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Empty means ":" + $PORT, or
	// ":" + DefaultPort when PORT is unset.
	Addr string

	MaxUploadBytes  int64
	FormMemoryBytes int64
	RequestTimeout  time.Duration
	AllowedOrigins  []string

	// UploadDir is where uploads are stored while a request runs. Empty
	// means the system temporary directory.
	UploadDir string

	// Metrics serves /metrics. Nil means promhttp.Handler().
	Metrics http.Handler

	Logger *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		port, ok := os.LookupEnv("PORT")
		if !ok || port == "" {
			port = DefaultPort
		}
		c.Addr = ":" + port
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.FormMemoryBytes <= 0 {
		c.FormMemoryBytes = DefaultFormMemoryBytes
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = DefaultAllowedOrigins
	}
	if c.UploadDir == "" {
		c.UploadDir = os.TempDir()
	}
	if c.Metrics == nil {
		c.Metrics = promhttp.Handler()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}

// =============================================================================
// Server
// =============================================================================

// Server serves design uploads.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner.
func New(cfg Config, runner *pipeline.Runner) *Server {
	cfg.setDefaults()
	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
		ExposedHeaders:   []string{headerDesignKey, headerCache},
	}).Handler)

	// The viewer posts uploads to the root path.
	r.Post("/", s.handleUpload)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.cfg.Metrics)
	r.Route("/api/design", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/{key}", s.handleGetDesign)
	})
	return r
}

// Run listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
