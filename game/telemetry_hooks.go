package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// TelemetryOptions configures windowed stats and where they go.
type TelemetryOptions struct {
	StatsWindowSec float64
	PerfWindow     int
	LogStats       bool
	OutputDir      string // CSV + config.yaml, empty disables
	DBPath         string // SQLite run archive, empty disables
	SnapshotDir    string // JSON snapshot on every window, empty disables
	StatsCallback  func(telemetry.WindowStats)
}

// EnableTelemetry attaches collectors and outputs to the simulation. The
// current run is registered with the archive when DBPath is set.
func (s *Simulation) EnableTelemetry(opts TelemetryOptions) error {
	s.collector = telemetry.NewCollector(opts.StatsWindowSec, float32(s.dt))
	s.collector.Restart(s.tick)
	s.perfCollector = telemetry.NewPerfCollector(opts.PerfWindow)
	s.logStats = opts.LogStats
	s.snapshotDir = opts.SnapshotDir
	s.statsCallback = opts.StatsCallback

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("output manager: %w", err)
	}
	s.outputManager = om
	if err := om.WriteConfig(s.cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if opts.DBPath != "" {
		store, err := telemetry.OpenStore(opts.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		run := &telemetry.RunRecord{
			Seed:              s.seed,
			AgentTarget:       s.opts.AgentTarget,
			FoodSourceTarget:  s.opts.FoodSourceTarget,
			PheromoneStrength: s.opts.PheromoneStrength,
			EvaporationRate:   s.opts.EvaporationRate,
			AgentSpeed:        s.opts.AgentSpeed,
			DayNight:          s.opts.DayNightEnabled,
		}
		if err := store.BeginRun(run); err != nil {
			store.Close()
			return err
		}
		s.store = store
		s.runID = run.ID
		s.logger.Info("run registered", "run_id", run.ID, "db", opts.DBPath)
	}
	return nil
}

// RunID returns the archive identifier of the current run, or "".
func (s *Simulation) RunID() string {
	return s.runID
}

// PerfStats returns the rolling tick timings, or zero stats when disabled.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	if s.perfCollector == nil {
		return telemetry.PerfStats{}
	}
	return s.perfCollector.Stats()
}

// RecordFrame marks a rendered frame for the frame-time stat.
func (s *Simulation) RecordFrame() {
	if s.perfCollector != nil {
		s.perfCollector.RecordFrame()
	}
}

// flushTelemetry emits a window of stats when one is due.
func (s *Simulation) flushTelemetry() {
	if s.collector == nil || !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sample())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if err := s.store.SaveWindow(s.runID, stats); err != nil {
		slog.Error("failed to archive window", "error", err)
	}

	if s.snapshotDir != "" {
		s.saveSnapshot()
	}
}

// sample gathers the end-of-window state for the collector.
func (s *Simulation) sample() telemetry.Sample {
	smp := telemetry.Sample{
		Agents:        s.activeAgents,
		FoodCollected: s.foodCollected,
		Efficiency:    s.Efficiency(),
		HomeMass:      float64(s.field.Total(systems.Home)),
		FoodMass:      float64(s.field.Total(systems.FoodTrail)),
		HomePeak:      float64(s.field.Peak(systems.Home)),
		FoodPeak:      float64(s.field.Peak(systems.FoodTrail)),
		Daylight:      float64(s.dayNight.Daylight()),
		Obstacles:     len(s.view.Obstacles),
		Predators:     len(s.view.Predators),
	}

	query := s.antFilter.Query()
	for query.Next() {
		_, _, ant, _ := query.Get()
		if ant.State == components.Returning {
			smp.Returning++
		}
		smp.Energies = append(smp.Energies, float64(ant.Energy))
		smp.Ages = append(smp.Ages, float64(ant.Age))
	}

	for _, f := range s.view.Foods {
		smp.FoodSources++
		smp.FoodRemaining += int(f.Food.Amount)
	}
	return smp
}

// SaveSnapshot writes the full state as JSON to dir.
func (s *Simulation) SaveSnapshot(dir string) (string, error) {
	return telemetry.SaveSnapshot(s.Snapshot(), dir)
}

func (s *Simulation) saveSnapshot() {
	path, err := s.SaveSnapshot(s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	s.logger.Info("snapshot saved", "path", path, "tick", s.tick)
}

// Close finalises the run archive and flushes output files.
func (s *Simulation) Close() error {
	var firstErr error
	if s.store != nil {
		if err := s.store.FinishRun(s.runID, s.tick, s.foodCollected, s.Efficiency()); err != nil {
			firstErr = err
		}
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.store = nil
	}
	if err := s.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.outputManager = nil
	return firstErr
}
