// Package server exposes mounted artwork tables over HTTP. Each view is a
// viewer.Presenter addressed by a random id; the table is rendered server
// side and every interaction is a plain form post.
package server

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/metrics"
	"github.com/Sternrassler/artwork-table/pkg/pagination"
)

//go:embed templates/*.html static/*
var assets embed.FS

// PaginatorLinks is the number of page links the paginator shows.
const PaginatorLinks = 5

// Options configures the server.
type Options struct {
	// PageSize is the fixed number of rows per page.
	PageSize int

	// BulkRateLimit is the number of bulk selections one client IP may
	// submit per minute. Zero disables the limit.
	BulkRateLimit int

	// ViewIdleTimeout is how long an untouched view is kept. Zero keeps
	// views until closed.
	ViewIdleTimeout time.Duration
}

// DefaultOptions returns the server defaults.
func DefaultOptions() Options {
	return Options{
		PageSize:        pagination.DefaultConfig().PageSize,
		BulkRateLimit:   30,
		ViewIdleTimeout: 30 * time.Minute,
	}
}

// Server routes table requests to the views it owns.
type Server struct {
	opts    Options
	fetcher pagination.PageFetcher
	views   *ViewStore
	tmpl    *template.Template
	router  chi.Router
	logger  zerolog.Logger
}

// New creates a server whose views fetch their pages from fetcher.
func New(fetcher pagination.PageFetcher, opts Options) (*Server, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultOptions().PageSize
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:    opts,
		fetcher: fetcher,
		views:   NewViewStore(opts.ViewIdleTimeout),
		tmpl:    tmpl,
		logger:  logging.NewLogger(logging.ComponentServer),
	}
	s.router = s.routes()

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Views returns the view store.
func (s *Server) Views() *ViewStore {
	return s.views
}

// Sweeper returns the service that removes idle views.
func (s *Server) Sweeper() *Sweeper {
	interval := s.opts.ViewIdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	return &Sweeper{store: s.views, interval: interval}
}

// Sweeper sweeps a view store periodically. It implements suture.Service.
type Sweeper struct {
	store    *ViewStore
	interval time.Duration
}

// Serve sweeps until ctx is done. With sweeping disabled it just waits.
func (w *Sweeper) Serve(ctx context.Context) error {
	w.store.RunSweeper(ctx, w.interval)
	<-ctx.Done()
	return ctx.Err()
}

func (w *Sweeper) String() string {
	return "view-sweeper"
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(observe)
	r.Use(chimiddleware.Recoverer)

	static, _ := fs.Sub(assets, "static")

	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Get("/", s.handleMount)
	r.Route("/views/{id}", func(r chi.Router) {
		r.Get("/", s.handleView)
		r.Get("/state", s.handleState)
		r.Post("/selection", s.handleSelection)
		r.With(s.bulkLimiter()).Post("/bulk", s.handleBulk)
		r.Post("/close", s.handleClose)
	})

	r.NotFound(s.handleNotFound)

	return r
}

// bulkLimiter limits bulk selections per client IP. Each one can fetch many
// pages from the listing API.
func (s *Server) bulkLimiter() func(http.Handler) http.Handler {
	if s.opts.BulkRateLimit <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		s.opts.BulkRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Warn().
				Str("view_id", chi.URLParam(r, "id")).
				Str("remote_addr", r.RemoteAddr).
				Msg("Bulk selection rate limited")
			http.Error(w, "Too many bulk selections, try again later", http.StatusTooManyRequests)
		}),
	)
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	return template.New("").Funcs(funcs).ParseFS(assets, "templates/*.html")
}
