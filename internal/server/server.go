// Package server serves a read-only preview of a book over HTTP.
//
// The book file is read from disk on every request, so edits made by the
// shell or by hand show up on the next reload without restarting.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/apocalyptech/choosable/pkg/book"
	"github.com/apocalyptech/choosable/pkg/cache"
	bookio "github.com/apocalyptech/choosable/pkg/io"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

const shutdownTimeout = 10 * time.Second

// Options configures a [Server].
type Options struct {
	// Book is the path of the book file to serve.
	Book string
	// DOT controls graph generation.
	DOT nodelink.Options
	// Cache stores rendered SVG. Nil disables caching.
	Cache cache.Cache
	// TTL is how long rendered SVG stays cached.
	TTL time.Duration
	// Logger receives request and lifecycle logs. Nil discards them.
	Logger *log.Logger
}

// Server renders one book file on request.
type Server struct {
	opts   Options
	cache  cache.Cache
	logger *log.Logger
	render func(ctx context.Context, dot string) ([]byte, error)
}

// New creates a server for the book at opts.Book.
func New(opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		opts:   opts,
		cache:  cache.NewScoped(c, "book:"+cache.Hash([]byte(opts.Book))+":"),
		logger: logger,
		render: nodelink.RenderSVG,
	}
}

// Router returns the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/book.dot", s.handleDOT)
	r.Get("/book.svg", s.handleSVG)
	r.Get("/book.json", s.handleJSON)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Serving preview", "addr", "http://"+ln.Addr().String(), "book", s.opts.Book)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Debug("Shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Shutdown failed", "err", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) load() (*book.Book, error) {
	return bookio.Load(s.opts.Book)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond))
	})
}
