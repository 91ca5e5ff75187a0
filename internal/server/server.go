// Package server exposes the conversion engine over HTTP as a thin JSON
// adapter. It owns no conversion logic of its own.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlbridge/internal/state"
	"github.com/leapstack-labs/sqlbridge/pkg/convert"
)

const profileSessionName = "sqlbridge"

// Server serves the conversion API.
type Server struct {
	engine   *convert.Engine
	history  state.HistoryStore
	sessions *sessions.CookieStore
	port     int
	log      *slog.Logger
}

// Config holds the server's dependencies. History may be nil, in which case
// conversions are not recorded.
type Config struct {
	Engine        *convert.Engine
	History       state.HistoryStore
	Port          int
	SessionSecret string
	Logger        *slog.Logger
}

// New builds a server from cfg.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(86400 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		engine:   cfg.Engine,
		history:  cfg.History,
		sessions: store,
		port:     cfg.Port,
		log:      log,
	}
}

// Router assembles the HTTP routes. Exposed separately so tests can drive
// the handlers without a listener.
func (s *Server) Router() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/validate", s.handleValidate)
		r.Get("/dialects", s.handleDialects)
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleSetProfile)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("starting API server", "addr", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.log.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
