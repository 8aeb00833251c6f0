package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/app"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/server"
	"github.com/pthm-cable/colony/telemetry"
	"github.com/pthm-cable/colony/termview"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "gui", "Front end: gui, headless, term or serve")
	headless := flag.Bool("headless", false, "Shorthand for -mode headless")
	addr := flag.String("addr", "", "Listen address for -mode serve (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite file archiving runs and stats windows")
	listRuns := flag.Int("list-runs", 0, "Print the N most efficient archived runs from -db and exit")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()
	if *headless {
		*mode = "headless"
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *listRuns > 0 {
		if err := printBestRuns(*dbPath, *listRuns); err != nil {
			slog.Error("failed to list runs", "error", err)
			os.Exit(1)
		}
		return
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// The terminal view owns stdout, so logs go to stderr there.
	logOut := os.Stdout
	if *mode == "term" {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	sim := game.New(cfg, game.OptionsFromConfig(cfg), rngSeed)
	sim.SetLogger(logger)

	err := sim.EnableTelemetry(game.TelemetryOptions{
		StatsWindowSec: statsWindowSec,
		PerfWindow:     cfg.Telemetry.PerfCollectorWindow,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		DBPath:         *dbPath,
		SnapshotDir:    *snapshotDir,
	})
	if err != nil {
		slog.Error("failed to enable telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sim.Close(); err != nil {
			slog.Error("failed to close telemetry", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"mode", *mode,
		"seed", rngSeed,
		"run_id", sim.RunID(),
		"max_ticks", *maxTicks,
	)

	switch *mode {
	case "headless":
		runHeadless(ctx, sim, *maxTicks, *stepsPerUpdate)
	case "gui":
		runGUI(cfg, sim, *maxTicks, *stepsPerUpdate)
	case "term":
		err = runTerminal(ctx, cfg, sim)
	case "serve":
		sc := cfg.Server
		if *addr != "" {
			sc.Addr = *addr
		}
		err = server.New(sim, sc).ListenAndServe(ctx)
	default:
		slog.Error("unknown mode", "mode", *mode)
		return
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "mode", *mode, "error", err)
	}
}

// runHeadless ticks as fast as possible until maxTicks or a signal.
func runHeadless(ctx context.Context, sim *game.Simulation, maxTicks, steps int) {
	steps = max(steps, 1)
	for ctx.Err() == nil {
		for i := 0; i < steps; i++ {
			sim.Tick()
		}
		if maxTicks > 0 && int(sim.CurrentTick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", sim.CurrentTick())
			break
		}
	}

	stats := sim.Stats()
	slog.Info("simulation finished",
		"tick", sim.CurrentTick(),
		"food_collected", stats.FoodCollected,
		"active_agents", stats.ActiveAgents,
		"efficiency", stats.Efficiency,
		"elapsed", stats.Clock(),
	)
}

func runGUI(cfg *config.Config, sim *game.Simulation, maxTicks, steps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ant Colony")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	a := app.New(cfg, sim, steps)
	defer a.Unload()

	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()

		if maxTicks > 0 && int(a.Tick()) >= maxTicks {
			break
		}
	}
}

func runTerminal(ctx context.Context, cfg *config.Config, sim *game.Simulation) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	runner := server.NewRunner(sim, cfg.Terminal.TickRate, 1, nil)
	view := termview.New(screen, runner, cfg.Terminal, float32(cfg.Pheromone.Max))
	return view.Run(ctx)
}

func printBestRuns(path string, limit int) error {
	if path == "" {
		return errors.New("-list-runs needs -db")
	}
	store, err := telemetry.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.BestRuns(limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  seed=%d  eff=%d%%  food=%s  ticks=%s  strength=%.1f  evap=%.3f  speed=%.1f\n",
			r.ID, r.Seed, r.Efficiency, humanize.Comma(int64(r.FoodCollected)), humanize.Comma(int64(r.FinalTick)),
			r.PheromoneStrength, r.EvaporationRate, r.AgentSpeed)
	}
	return nil
}
