// Package http assembles the Chi router and HTTP server around the habit API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rezkam/stride/internal/infrastructure/http/handler"
	mw "github.com/rezkam/stride/internal/infrastructure/http/middleware"
)

// Default configuration values for the HTTP server.
const (
	DefaultPort              = 8080
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1MB
	DefaultMaxBodyBytes      = 1 << 20 // 1MB
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	ServiceName       string
}

// applyDefaults sets default values for any unset (zero) fields.
func (cfg *ServerConfig) applyDefaults() {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "stride"
	}
}

// APIServer wraps the HTTP server with router and all HTTP concerns.
type APIServer struct {
	server *http.Server
}

// NewAPIServer creates the HTTP server with router, middleware, and routes
// configured. Applies defaults for zero or invalid config values.
func NewAPIServer(habits *handler.HabitHandler, auth *mw.Auth, cfg ServerConfig) *APIServer {
	cfg.applyDefaults()

	router := setupRouter(habits, auth, cfg)

	return &APIServer{
		server: &http.Server{
			Addr:              cfg.Host + ":" + strconv.Itoa(cfg.Port),
			Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}
}

// setupRouter creates and configures the Chi router with all middleware and
// routes.
func setupRouter(habits *handler.HabitHandler, auth *mw.Auth, cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (applied to all routes)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	// Health check endpoint (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.ErrorContext(r.Context(), "failed to write health check response", "error", err)
		}
	})

	// API routes with authentication
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Validate)

		r.Route("/habits", func(r chi.Router) {
			r.Post("/", habits.CreateHabit)
			r.Get("/", habits.ListHabits)
			r.Get("/{habit_id}", habits.GetHabit)
			r.Patch("/{habit_id}", habits.UpdateHabit)
			r.Delete("/{habit_id}", habits.DeleteHabit)
			r.Post("/{habit_id}/complete", habits.CompleteHabit)
		})

		r.Get("/reminders/upcoming", habits.UpcomingReminders)
	})

	return r
}

// Start starts the HTTP server.
func (s *APIServer) Start() error {
	slog.InfoContext(context.Background(), "starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
// The provided context controls the timeout for outstanding requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying router for tests.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
