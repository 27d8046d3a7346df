package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pool/config"
	"github.com/pthm-cable/pool/game"
	"github.com/pthm-cable/pool/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	restore := flag.String("restore", "", "Snapshot file to resume from")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Frames per update call (higher = faster headless runs)")
	backend := flag.String("backend", "", "Integrator backend: cpu or opencl (empty = use config)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Options: sim.Options{
			Seed:           rngSeed,
			LogStats:       *logStats,
			StatsWindowSec: *statsWindow,
			SnapshotDir:    *snapshotDir,
			OutputDir:      *outputDir,
			StepsPerUpdate: *stepsPerUpdate,
			Backend:        *backend,
			MetricsAddr:    *metricsAddr,
			RestorePath:    *restore,
		},
		Headless: *headless,
	}

	if *headless {
		// Headless mode - no window, no textures
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to start simulation", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"grid_size", cfg.Water.GridSize,
			"backend", g.Sim().Field().Integrator().Name(),
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for {
			g.UpdateHeadless()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Pool")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyQ)

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		rl.CloseWindow()
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting simulation", "seed", rngSeed, "backend", g.Sim().Field().Integrator().Name())

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}
