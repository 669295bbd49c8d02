package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marketsim/internal/config"
)

// Server runs the dashboard's HTTP/websocket listener. Unlike a live
// trading engine, a backtest has no separate event-producing goroutine
// to fan events in from a channel: cmd/backtest drives the replay loop
// directly and calls Broadcast* on the hub itself after each Tick, so
// there is no event-consumer goroutine here.
type Server struct {
	cfg      config.DashboardConfig
	hub      *Hub
	handlers *Handlers
	server   *http.Server
	logger   *slog.Logger
}

// NewServer creates a dashboard server. Call Hub() to obtain the hub
// that a replay loop should broadcast to.
func NewServer(cfg config.DashboardConfig, logger *slog.Logger) *Server {
	hub := NewHub(logger)
	handlers := NewHandlers(cfg, hub, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/ws", handlers.HandleWebSocket)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		cfg:      cfg,
		hub:      hub,
		handlers: handlers,
		server:   server,
		logger:   logger.With("component", "dashboard-server"),
	}
}

// Hub returns the websocket hub a replay loop broadcasts events to.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start starts the hub loop and the HTTP listener. It blocks until the
// listener stops; run it in a goroutine.
func (s *Server) Start() error {
	go s.hub.Run()

	s.logger.Info("dashboard server starting", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.logger.Info("stopping dashboard server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
