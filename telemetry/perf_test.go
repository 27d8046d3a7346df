package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorBasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseStep)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseCaustics)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame(1)
	}

	stats := pc.Stats()
	if stats.Frames != 5 {
		t.Errorf("frames = %d, want 5", stats.Frames)
	}
	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration")
	}
	if stats.PhaseAvg[PhaseStep] <= 0 || stats.PhaseAvg[PhaseCaustics] <= 0 {
		t.Errorf("expected step and caustics phases to be timed: %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseNormals] != 0 {
		t.Errorf("normals never ran, got %v", stats.PhaseAvg[PhaseNormals])
	}
	if stats.MaxFrame < stats.AvgFrame {
		t.Errorf("max frame %v below average %v", stats.MaxFrame, stats.AvgFrame)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseStep)
		pc.EndFrame(i)
	}

	stats := pc.Stats()
	if stats.Frames != 5 {
		t.Errorf("frames = %d, want window size 5", stats.Frames)
	}
	// Only frames 5..9 remain.
	if stats.StepsPerFrame != 7 {
		t.Errorf("steps per frame = %v, want 7", stats.StepsPerFrame)
	}
}

func TestPerfCollectorStepCost(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 4; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseStep)
		time.Sleep(400 * time.Microsecond)
		pc.StartPhase(PhaseNormals)
		pc.EndFrame(4)
	}

	stats := pc.Stats()
	if stats.StepsPerFrame != 4 {
		t.Fatalf("steps per frame = %v, want 4", stats.StepsPerFrame)
	}
	if want := stats.PhaseAvg[PhaseStep] / 4; stats.StepCost != want {
		t.Errorf("step cost = %v, want step phase / 4 = %v", stats.StepCost, want)
	}
}

func TestPerfCollectorZeroStepsHasNoStepCost(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.StartFrame()
	pc.StartPhase(PhaseStep)
	pc.EndFrame(0)

	if stats := pc.Stats(); stats.StepCost != 0 {
		t.Errorf("step cost = %v, want 0 without steps", stats.StepCost)
	}
}

func TestPerfCollectorPhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseReadback)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseCaustics)
		time.Sleep(500 * time.Microsecond)
		pc.EndFrame(1)
	}

	stats := pc.Stats()
	if stats.PhasePct[PhaseCaustics] <= stats.PhasePct[PhaseReadback] {
		t.Errorf("expected caustics (%v%%) > readback (%v%%)", stats.PhasePct[PhaseCaustics], stats.PhasePct[PhaseReadback])
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.Frames != 0 || stats.AvgFrame != 0 || stats.StepCost != 0 {
		t.Errorf("expected zero stats for empty collector, got %+v", stats)
	}
}

func TestPerfCollectorPresentTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordPresent()
	time.Sleep(16 * time.Millisecond)
	pc.RecordPresent()

	stats := pc.Stats()
	// ~60 fps, loose bounds for scheduler jitter
	if stats.FPS < 20 || stats.FPS > 80 {
		t.Errorf("expected FPS between 20-80 with 16ms frames, got %v", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseCaustics.String() != "caustics" {
		t.Errorf("PhaseCaustics = %q", PhaseCaustics.String())
	}
	if Phase(200).String() != "unknown" {
		t.Errorf("out of range phase = %q", Phase(200).String())
	}
	if len(Phases) != int(numPhases) {
		t.Errorf("Phases lists %d of %d phases", len(Phases), numPhases)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	stats := PerfStats{
		AvgFrame:      2 * time.Millisecond,
		StepsPerFrame: 2,
		StepCost:      1500 * time.Microsecond,
	}
	stats.PhasePct[PhaseStep] = 40
	stats.PhasePct[PhaseCaustics] = 50
	stats.PhasePct[PhaseFloaters] = 1

	row := stats.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgFrameUS != 2000 || row.StepUS != 1500 || row.StepsPerFrame != 2 {
		t.Errorf("row = %+v", row)
	}
	if row.StepPct != 40 || row.CausticsPct != 50 || row.FloatersPct != 1 || row.NormalsPct != 0 {
		t.Errorf("phase columns not mapped: %+v", row)
	}
}
