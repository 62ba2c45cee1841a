// Package server exposes generation and catalog administration over HTTP.
//
// Routes:
//
//	GET  /                  service banner and route list
//	GET  /cards             catalog grouped by brand and category
//	GET  /template          template name, modification time and size
//	POST /template          replace the template (multipart field "template")
//	GET  /catalog/download  the catalog database file
//	POST /catalog/upload    replace the catalog (multipart field "database")
//	POST /generate          build a diagram (multipart: points, modules, params)
//	GET  /generations       recent generations, newest first
//	GET  /metrics           Prometheus metrics, when configured
//
// Errors are JSON objects {error, code, details} whose status follows
// errors.HTTPStatus.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/drawio"
	"github.com/matzehuels/ioschema/pkg/journal"
	"github.com/matzehuels/ioschema/pkg/pipeline"
)

// DefaultMaxUpload bounds multipart request bodies.
const DefaultMaxUpload = 50 << 20

// CatalogFile is the administrable catalog database.
// catalog.SQLiteStore satisfies it.
type CatalogFile interface {
	WriteTo(w io.Writer) (int64, error)
	Replace(ctx context.Context, r io.Reader) (int64, error)
}

// Config wires the server to its backends.
type Config struct {
	Runner    *pipeline.Runner
	Catalog   catalog.Gateway
	Templates drawio.Repository
	Journal   journal.Store

	// CatalogFile enables the catalog transfer routes. Without it they
	// answer 501.
	CatalogFile CatalogFile
	// OnCatalogReplaced runs after a successful catalog upload, typically
	// to drop cached lookups.
	OnCatalogReplaced func(ctx context.Context) error

	// Metrics is mounted on /metrics when set.
	Metrics http.Handler

	MaxUpload int64
	Logger    *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Discard{}
	}
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/cards", s.handleCards)
	r.Get("/template", s.handleTemplateInfo)
	r.Post("/template", s.handleTemplateUpload)
	r.Get("/catalog/download", s.handleCatalogDownload)
	r.Post("/catalog/upload", s.handleCatalogUpload)
	r.Post("/generate", s.handleGenerate)
	r.Get("/generations", s.handleGenerations)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
