package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowing(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("ticks per window = %d, want 4", c.WindowDurationTicks())
	}
	if c.ShouldFlush(3) {
		t.Error("should not flush before the window is complete")
	}
	if !c.ShouldFlush(4) {
		t.Error("should flush at the window boundary")
	}
}

func TestCollectorFlushResetsCounters(t *testing.T) {
	c := NewCollector(1.0, 0.5)
	c.RecordAmbientDrops(2)
	c.RecordAmbientDrops(0)
	c.RecordPointerDrop()
	c.RecordSteps(6)

	stats := c.Flush(2, SurfaceSample{
		Energy:    0.5,
		MaxHeight: 0.3,
		Heights:   []float32{-0.3, 0.1, 0.2, 0},
		Caustics:  []float32{0.5, 1, 1, 1.5},
		FloaterYs: []float32{0.02, 0.04},
	})

	if stats.AmbientDrops != 2 || stats.PointerDrops != 1 || stats.Steps != 6 {
		t.Errorf("counters = %d/%d/%d, want 2/1/6", stats.AmbientDrops, stats.PointerDrops, stats.Steps)
	}
	if stats.SimTimeSec != 1.0 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}
	if math.Abs(stats.HeightMean) > 1e-6 {
		t.Errorf("height mean = %v, want 0", stats.HeightMean)
	}
	if math.Abs(stats.CausticMean-1) > 1e-9 || stats.CausticMin != 0.5 || stats.CausticMax != 1.5 {
		t.Errorf("caustics = %v [%v,%v], want 1 [0.5,1.5]", stats.CausticMean, stats.CausticMin, stats.CausticMax)
	}
	if stats.FloaterCount != 2 || math.Abs(stats.FloaterMeanY-0.03) > 1e-6 {
		t.Errorf("floaters = %d mean y %v", stats.FloaterCount, stats.FloaterMeanY)
	}
	if math.Abs(stats.AbsHeightP90-0.27) > 1e-6 {
		t.Errorf("abs height p90 = %v, want 0.27", stats.AbsHeightP90)
	}

	next := c.Flush(4, SurfaceSample{})
	if next.AmbientDrops != 0 || next.PointerDrops != 0 || next.Steps != 0 {
		t.Error("counters not reset after flush")
	}
	if next.WindowStartTick != 2 {
		t.Errorf("window start = %d, want 2", next.WindowStartTick)
	}
}
