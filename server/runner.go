package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

// Runner owns a simulation and serialises every access to it. Ticks,
// commands and snapshot reads all take the same lock, so a resize never
// overlaps a tick.
type Runner struct {
	mu  sync.Mutex
	sim *game.Simulation

	tickInterval   time.Duration
	broadcastEvery int32
	publish        func(*telemetry.Snapshot)
	logger         *slog.Logger

	ticks int32
}

// NewRunner wraps sim. tickRate is in ticks per second; publish receives a
// light snapshot every broadcastEvery ticks and may be nil.
func NewRunner(sim *game.Simulation, tickRate float64, broadcastEvery int, publish func(*telemetry.Snapshot)) *Runner {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &Runner{
		sim:            sim,
		tickInterval:   time.Duration(float64(time.Second) / tickRate),
		broadcastEvery: int32(max(broadcastEvery, 1)),
		publish:        publish,
		logger:         slog.Default(),
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *slog.Logger) {
	r.logger = l
}

// TickInterval is the wall-clock time between ticks.
func (r *Runner) TickInterval() time.Duration {
	return r.tickInterval
}

// Do runs fn with exclusive access to the simulation.
func (r *Runner) Do(fn func(*game.Simulation)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.sim)
}

// Step advances one tick and publishes a snapshot on the broadcast cadence.
func (r *Runner) Step() game.Stats {
	r.mu.Lock()
	stats := r.sim.Tick()
	r.ticks++
	var snap *telemetry.Snapshot
	if r.publish != nil && r.ticks%r.broadcastEvery == 0 {
		snap = r.sim.LightSnapshot()
	}
	r.mu.Unlock()

	if snap != nil {
		r.publish(snap)
	}
	return stats
}

// Run ticks at the configured rate until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	r.logger.Info("runner started", "tick_interval", r.tickInterval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
}

// Handle applies a client command and returns the reply.
func (r *Runner) Handle(cmd Command) Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch cmd.Type {
	case CmdPlace:
		var ok bool
		switch cmd.Kind {
		case KindFood:
			ok = r.sim.PlaceFood(cmd.X, cmd.Y)
		case KindObstacle:
			ok = r.sim.PlaceObstacle(cmd.X, cmd.Y)
		case KindPredator:
			ok = r.sim.PlacePredator(cmd.X, cmd.Y)
		default:
			return ack(cmd.Type, false, "unknown kind "+cmd.Kind)
		}
		if !ok {
			return ack(cmd.Type, false, "placement rejected")
		}
		return ack(cmd.Type, true, "")

	case CmdConfigure:
		if cmd.Options == nil {
			return ack(cmd.Type, false, "missing options")
		}
		r.sim.Configure(*cmd.Options)
		opts := r.sim.Options()
		msg := ack(cmd.Type, true, "")
		msg.Options = &opts
		return msg

	case CmdReset:
		opts := r.sim.Options()
		if cmd.Options != nil {
			opts = *cmd.Options
		}
		msg := ack(cmd.Type, true, "")
		msg.Snapshot = r.sim.Reset(opts)
		return msg

	case CmdPause:
		r.sim.SetPaused(cmd.Paused)
		return ack(cmd.Type, true, "")

	case CmdResize:
		if cmd.Width <= 0 || cmd.Height <= 0 {
			return ack(cmd.Type, false, "invalid size")
		}
		r.sim.Resize(cmd.Width, cmd.Height)
		return ack(cmd.Type, true, "")

	case CmdSnapshot:
		msg := Message{Type: MsgSnapshot, Snapshot: r.sim.Snapshot()}
		stats := r.sim.Stats()
		msg.Stats = &stats
		return msg
	}
	return ack(cmd.Type, false, "unknown command")
}

// Snapshot returns a full snapshot under the lock.
func (r *Runner) Snapshot() *telemetry.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.Snapshot()
}
