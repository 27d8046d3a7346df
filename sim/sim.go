// Package sim owns the water surface, its consumers and the strict per-frame
// pipeline that drives them. It has no graphics dependency, so headless runs
// and tests use it directly.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/config"
	"github.com/pthm-cable/pool/systems"
	"github.com/pthm-cable/pool/telemetry"
)

// Options configures a simulation run.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = config telemetry.stats_window
	SnapshotDir    string
	OutputDir      string
	StepsPerUpdate int    // frames advanced per Update call
	Backend        string // "" = config gpu.backend
	MetricsAddr    string // "" = config metrics.addr when metrics.enabled
	RestorePath    string // snapshot to resume from

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// pointerDrop is a pointer disturbance queued for the next frame.
type pointerDrop struct {
	x, z float32
}

// Simulation holds the complete surface state.
type Simulation struct {
	rng     *rand.Rand
	rngSeed int64
	world   *ecs.World

	field     *systems.HeightField
	scheduler *systems.DisturbanceScheduler
	caustics  *systems.CausticsProjector
	cache     *systems.ReadbackCache
	floaters  *systems.FloaterController

	driftMap *ecs.Map[components.Drift]

	// Tunables are edited between frames and copied by value into each frame.
	tunables systems.Tunables
	defaults systems.Tunables
	pending  []pointerDrop

	tick           int32
	paused         bool
	stepsPerUpdate int
	lastFrame      FrameCounts

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	metrics          *telemetry.Metrics
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
}

// FrameCounts summarizes the disturbances and steps of the last frame.
type FrameCounts struct {
	AmbientDrops int
	PointerDrops int
	Steps        int
}

// New builds a simulation from config.Cfg() and opts.
// The startup drops are injected before New returns.
func New(opts Options) (*Simulation, error) {
	cfg := config.Cfg()

	integ, err := newIntegrator(cfg, opts.Backend)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	s := &Simulation{
		rng:     rand.New(rand.NewSource(opts.Seed)),
		rngSeed: opts.Seed,
		world:   world,

		field: systems.NewHeightField(cfg.Water.GridSize, integ),
		caustics: systems.NewCausticsProjector(
			cfg.Caustics.TextureSize,
			mgl32.Vec3(cfg.Derived.Light),
			systems.CausticsOptions{
				IOR:       float32(cfg.Caustics.IOR),
				PoolDepth: float32(cfg.Caustics.PoolDepth),
				Workers:   cfg.Caustics.Workers,
			},
		),
		cache: systems.NewReadbackCache(cfg.Water.GridSize),
		floaters: systems.NewFloaterController(
			world,
			systems.SquareBounds(float32(cfg.Floaters.Bounds)),
			float32(cfg.Floaters.Margin),
		),

		driftMap: ecs.NewMap[components.Drift](world),

		tunables:       systems.TunablesFromConfig(cfg),
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),

		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		statsCallback: opts.StatsCallback,
	}
	s.defaults = s.tunables
	s.cache.GradientStep = float32(cfg.Floaters.GradientStep)
	s.scheduler = systems.NewDisturbanceScheduler(s.rng)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	s.collector = telemetry.NewCollector(statsWindow, cfg.Derived.FrameDT32)
	s.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	s.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	s.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.field.Close()
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	metricsAddr := opts.MetricsAddr
	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		s.metrics = telemetry.NewMetrics(cfg.Metrics.Namespace)
		s.metrics.Serve(metricsAddr)
	}

	s.floaters.Spawn(s.rng, systems.FloaterOptionsFromConfig(cfg))
	s.scheduler.Startup(
		s.field,
		cfg.Drops.StartupCount,
		float32(cfg.Drops.StartupRadius),
		float32(cfg.Drops.StartupStrength),
	)

	if opts.RestorePath != "" {
		if err := s.RestoreSnapshot(opts.RestorePath); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// newIntegrator creates the configured backend, falling back to the CPU when
// OpenCL cannot be initialized.
func newIntegrator(cfg *config.Config, backend string) (systems.Integrator, error) {
	if backend == "" {
		backend = cfg.GPU.Backend
	}
	integ, err := systems.NewIntegrator(backend, cfg.GPU.Workers)
	if err == nil {
		return integ, nil
	}
	if backend != systems.BackendOpenCL {
		return nil, fmt.Errorf("creating integrator: %w", err)
	}
	slog.Warn("OpenCL unavailable, falling back to CPU", "error", err)
	return systems.NewCPUIntegrator(cfg.GPU.Workers), nil
}

// Close releases the integrator, output files and metrics server.
func (s *Simulation) Close() {
	if err := s.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if err := s.metrics.Close(); err != nil {
		slog.Warn("failed to stop metrics server", "error", err)
	}
	if err := s.field.Close(); err != nil {
		slog.Warn("failed to release integrator", "error", err)
	}
}

// Tick returns the number of completed frames.
func (s *Simulation) Tick() int32 { return s.tick }

// Field returns the height field. Consumers must not mutate it.
func (s *Simulation) Field() *systems.HeightField { return s.field }

// Caustics returns the caustics projector.
func (s *Simulation) Caustics() *systems.CausticsProjector { return s.caustics }

// Cache returns the readback cache.
func (s *Simulation) Cache() *systems.ReadbackCache { return s.cache }

// Floaters returns the floater controller.
func (s *Simulation) Floaters() *systems.FloaterController { return s.floaters }

// World returns the ECS world holding the floaters.
func (s *Simulation) World() *ecs.World { return s.world }

// Scheduler returns the disturbance scheduler.
func (s *Simulation) Scheduler() *systems.DisturbanceScheduler { return s.scheduler }

// Perf returns the perf collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perfCollector }

// LastFrame returns the counts of the most recent frame.
func (s *Simulation) LastFrame() FrameCounts { return s.lastFrame }

// Tunables returns a pointer to the live tunables. Edits apply from the next frame.
func (s *Simulation) Tunables() *systems.Tunables { return &s.tunables }

// ResetTunables restores the configured defaults.
func (s *Simulation) ResetTunables() { s.tunables = s.defaults }

// Paused reports whether Update is suspended.
func (s *Simulation) Paused() bool { return s.paused }

// SetPaused suspends or resumes Update.
func (s *Simulation) SetPaused(p bool) { s.paused = p }

// ResetSurface flattens the water. Floaters keep their state.
func (s *Simulation) ResetSurface() { s.field.Reset() }

// QueuePointer schedules a pointer drop at pool coordinate (x, z) for the next frame.
func (s *Simulation) QueuePointer(x, z float32) {
	s.pending = append(s.pending, pointerDrop{x: x, z: z})
}
