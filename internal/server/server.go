// Package server serves the rendered pages and the data endpoint.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"graphview/internal/render"
	"graphview/internal/source"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Config holds what the server exposes. Nil renderers or a nil source leave
// their routes unmounted.
type Config struct {
	Addr   string
	Graph  *render.GraphRenderer
	List   *render.ListRenderer
	Source source.Source
	Logger *log.Logger
}

// Server is the HTTP server.
type Server struct {
	addr   string
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(logger),
		middleware.Recoverer,
	)
	setupRoutes(r, &handlers{graph: cfg.Graph, list: cfg.List, source: cfg.Source})

	return &Server{
		addr:   cfg.Addr,
		logger: logger,
		router: r,
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
