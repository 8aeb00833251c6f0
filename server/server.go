package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
)

// Server exposes a simulation over HTTP and WebSocket.
type Server struct {
	runner *Runner
	hub    *Hub
	addr   string
	logger *slog.Logger
}

// New wires a runner and hub around sim using the server section of cfg.
func New(sim *game.Simulation, cfg config.ServerConfig) *Server {
	hub := NewHub()
	return &Server{
		runner: NewRunner(sim, cfg.TickRate, cfg.BroadcastEvery, hub.Publish),
		hub:    hub,
		addr:   cfg.Addr,
		logger: slog.Default(),
	}
}

// Runner returns the runner that serialises access to the simulation.
func (s *Server) Runner() *Runner {
	return s.runner
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes:
//
//	/ws        WebSocket stream and command channel
//	/snapshot  full JSON snapshot, pheromone grids included
//	/stats     current counters
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.ServeWS(s.runner))
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.runner.Snapshot())
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		var stats game.Stats
		s.runner.Do(func(sim *game.Simulation) { stats = sim.Stats() })
		writeJSON(w, stats)
	})
	return mux
}

// ListenAndServe runs the simulation loop, the broadcaster and the HTTP
// server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	go s.hub.Run(ctx)
	go s.runner.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
