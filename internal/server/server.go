// Package server provides the HTTP server for inspecting and overriding the
// running controller.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Controller is the application surface the server exposes.
type Controller interface {
	api.Controller
	Subscribe(buffer int) (<-chan app.Action, func())
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       Controller
	Logger    *slog.Logger
}

// Server represents the HTTP server for the controller.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if ctl := s.config.App; ctl != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(ctl))
		s.mux.Handle("/api/mode", api.NewModeHandler(ctl))
		s.mux.Handle("/api/pause", api.NewPauseHandler(ctl, true))
		s.mux.Handle("/api/resume", api.NewPauseHandler(ctl, false))
		s.mux.Handle("/api/calibration", api.NewCalibrationHandler(ctl))
		s.mux.Handle("/api/events", NewEventsHandler(ctl, s.logger))
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/journal", api.NewJournalHandler(s.config.Store))
		sessions := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
