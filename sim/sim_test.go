package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/config"
	"github.com/pthm-cable/pool/systems"
	"github.com/pthm-cable/pool/telemetry"
)

func init() {
	// Initialize config for tests, shrunk so frames stay cheap
	config.MustInit("")
	cfg := config.Cfg()
	cfg.Water.GridSize = 32
	cfg.Caustics.TextureSize = 64
	cfg.GPU.Workers = 2
	cfg.Caustics.Workers = 2
}

func newTestSim(t *testing.T, opts Options) *Simulation {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func runFrames(t *testing.T, s *Simulation, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Frame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}

type floaterPos struct{ x, y, z float32 }

func floaterPositions(s *Simulation) map[uint16]floaterPos {
	out := make(map[uint16]floaterPos)
	s.Floaters().Each(func(_ ecs.Entity, pos *components.Position, _ *components.Orientation, app *components.Appearance) {
		out[app.Index] = floaterPos{pos.X, pos.Y, pos.Z}
	})
	return out
}

func TestFrameRunsPipelineInOrder(t *testing.T) {
	s := newTestSim(t, Options{Seed: 1})

	if s.Cache().Ready() {
		t.Fatal("cache should be cold before the first frame")
	}

	runFrames(t, s, 3)

	if s.Tick() != 3 {
		t.Errorf("tick = %d, want 3", s.Tick())
	}
	if !s.Field().NormalsCurrent() {
		t.Error("normals should be current after a frame")
	}
	if got, want := s.Caustics().SourceGeneration(), s.Field().Generation(); got != want {
		t.Errorf("caustics built from generation %d, field at %d", got, want)
	}
	if s.Cache().Refreshes() != 3 {
		t.Errorf("cache refreshed %d times, want 3", s.Cache().Refreshes())
	}
	if total := s.Caustics().Total(); total < 64*64-1e-2 || total > 64*64+1e-2 {
		t.Errorf("caustics total = %v, want %d", total, 64*64)
	}
}

func TestDeterministicRuns(t *testing.T) {
	a := newTestSim(t, Options{Seed: 7})
	b := newTestSim(t, Options{Seed: 7})

	runFrames(t, a, 60)
	runFrames(t, b, 60)

	if a.Field().Energy() != b.Field().Energy() {
		t.Errorf("energy differs: %v vs %v", a.Field().Energy(), b.Field().Energy())
	}
	pa, pb := floaterPositions(a), floaterPositions(b)
	if len(pa) != 5 {
		t.Fatalf("expected 5 floaters, got %d", len(pa))
	}
	for idx, p := range pa {
		if pb[idx] != p {
			t.Errorf("floater %d: %+v vs %+v", idx, p, pb[idx])
		}
	}

	aa, ap, as := a.Scheduler().Counts()
	ba, bp, bs := b.Scheduler().Counts()
	if aa != ba || ap != bp || as != bs {
		t.Errorf("scheduler counts differ: (%d,%d,%d) vs (%d,%d,%d)", aa, ap, as, ba, bp, bs)
	}
}

func TestPointerDropsApplyNextFrame(t *testing.T) {
	s := newTestSim(t, Options{Seed: 3})
	s.Tunables().DropFrequency = 0

	s.QueuePointer(0, 0)
	s.QueuePointer(0.5, -0.5)
	runFrames(t, s, 1)

	if got := s.LastFrame().PointerDrops; got != 2 {
		t.Errorf("pointer drops = %d, want 2", got)
	}
	if _, pointer, _ := s.Scheduler().Counts(); pointer != 2 {
		t.Errorf("scheduler pointer count = %d, want 2", pointer)
	}

	runFrames(t, s, 1)
	if got := s.LastFrame().PointerDrops; got != 0 {
		t.Errorf("queue should drain, got %d drops on second frame", got)
	}
}

func TestTunablesAppliedAtFrameBoundary(t *testing.T) {
	s := newTestSim(t, Options{Seed: 3})
	tun := s.Tunables()
	tun.DropFrequency = 0
	tun.StepsPerFrame = 0

	gen := s.Field().Generation()
	runFrames(t, s, 2)
	if s.Field().Generation() != gen {
		t.Errorf("no drops and no steps must not swap: generation %d -> %d", gen, s.Field().Generation())
	}

	tun.StepsPerFrame = 3
	runFrames(t, s, 1)
	if got := s.Field().Generation() - gen; got != 3 {
		t.Errorf("expected 3 swaps, got %d", got)
	}
	if s.LastFrame().Steps != 3 {
		t.Errorf("last frame steps = %d, want 3", s.LastFrame().Steps)
	}

	s.ResetTunables()
	if *s.Tunables() != systems.TunablesFromConfig(config.Cfg()) {
		t.Error("ResetTunables should restore the configured defaults")
	}
}

func TestUpdateHonoursPauseAndSteps(t *testing.T) {
	s := newTestSim(t, Options{Seed: 1, StepsPerUpdate: 3})

	s.SetPaused(true)
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.Tick() != 0 {
		t.Errorf("paused update advanced to tick %d", s.Tick())
	}

	s.SetPaused(false)
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.Tick() != 3 {
		t.Errorf("tick = %d, want 3", s.Tick())
	}
}

func TestStatsWindowsFlush(t *testing.T) {
	var windows []telemetry.WindowStats
	dir := t.TempDir()
	s := newTestSim(t, Options{
		Seed:           5,
		StatsWindowSec: 0.161, // 10 frames at the default frame_dt
		OutputDir:      dir,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})

	runFrames(t, s, 25)

	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	for i, w := range windows {
		if w.Steps != 10 {
			t.Errorf("window %d steps = %d, want 10", i, w.Steps)
		}
		if w.FloaterCount != 5 {
			t.Errorf("window %d floaters = %d, want 5", i, w.FloaterCount)
		}
		if w.CausticMin < 0 {
			t.Errorf("window %d caustic min %v < 0", i, w.CausticMin)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "surface.csv"))
	if err != nil {
		t.Fatalf("reading surface.csv: %v", err)
	}
	if len(data) == 0 {
		t.Error("surface.csv is empty")
	}
}

func TestSnapshotRestore(t *testing.T) {
	dir := t.TempDir()
	src := newTestSim(t, Options{Seed: 11})
	runFrames(t, src, 20)

	path, err := src.SaveSnapshot(dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := newTestSim(t, Options{Seed: 99, RestorePath: path})
	if dst.Tick() != src.Tick() {
		t.Errorf("tick = %d, want %d", dst.Tick(), src.Tick())
	}
	sh, dh := src.Field().Active().Height, dst.Field().Active().Height
	for k := range sh {
		if sh[k] != dh[k] {
			t.Fatalf("height %d differs after restore", k)
		}
	}
	ps, pd := floaterPositions(src), floaterPositions(dst)
	for idx, p := range ps {
		if pd[idx] != p {
			t.Errorf("floater %d: restored %+v, want %+v", idx, pd[idx], p)
		}
	}
}

func TestRestoreRejectsOtherGrid(t *testing.T) {
	dir := t.TempDir()
	snap := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		GridSize: 4,
		Height:   make([]float32, 16),
		Velocity: make([]float32, 16),
	}
	path, err := telemetry.SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(Options{RestorePath: path}); err == nil {
		t.Fatal("expected grid size mismatch error")
	}
}

func TestBackendSelection(t *testing.T) {
	if _, err := New(Options{Backend: "vulkan"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	s := newTestSim(t, Options{Backend: systems.BackendOpenCL})
	if name := s.Field().Integrator().Name(); name != systems.BackendCPU && name != systems.BackendOpenCL {
		t.Errorf("unexpected backend %q", name)
	}
}

func TestUnstableTunablesKeepRunning(t *testing.T) {
	s := newTestSim(t, Options{Seed: 3, StatsWindowSec: 0.5})
	tun := s.Tunables()
	tun.WaveSpeed = 50
	tun.Damping = 1

	runFrames(t, s, 300)

	if s.Tick() != 300 {
		t.Errorf("tick = %d, want 300", s.Tick())
	}
	n := s.Caustics().Size()
	if total := s.Caustics().Total(); total < float64(n*n)-1 || total > float64(n*n)+1 {
		t.Errorf("caustics total = %g, want %d", total, n*n)
	}
}
