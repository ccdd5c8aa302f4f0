// Package web serves the analytics service as a JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
)

// Server wires the API routes onto a chi router.
type Server struct {
	service  *analytics.Service
	router   *chi.Mux
	addr     string
	log      zerolog.Logger
	now      func() time.Time
	readOnly bool
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the clock used to resolve named periods.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithReadOnly rejects every route that would change observations, rules or
// preferences.
func WithReadOnly() Option {
	return func(s *Server) { s.readOnly = true }
}

// NewServer creates the API server. Routes are mounted immediately.
func NewServer(service *analytics.Service, addr string, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		service: service,
		router:  chi.NewRouter(),
		addr:    addr,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(exposeRequestID)
	s.router.Use(accessLog(s.log, time.Second))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/categories", s.handleCategories)
		r.Get("/disruptors", s.handleDisruptors)
		r.Get("/timeline", s.handleTimeline)
		r.Get("/heatmap", s.handleHeatmap)
		r.Get("/weeks", s.handleWeeks)
		r.Get("/dashboard", s.handleDashboard)

		r.Get("/rules", s.handleGetRules)
		r.Get("/tracking", s.handleGetTracking)
		r.Get("/settings", s.handleGetSettings)

		r.Group(func(r chi.Router) {
			r.Use(s.writable)
			r.Post("/observations", s.handleRecord)
			r.Put("/rules", s.handlePutRules)
			r.Put("/tracking", s.handlePutTracking)
			r.Put("/settings", s.handlePutSettings)
		})
	})
}

func (s *Server) writable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.readOnly {
			respondError(w, r, errReadOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down within shutdownTimeout.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("server shutdown")
		}
	}()

	s.log.Info().Str("addr", s.addr).Msg("http listening")
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
