// Package telemetry provides surface statistics, perf timing, bookmarks, snapshots and metrics export.
package telemetry

// SurfaceSample is the state handed to Flush at a window boundary.
// Slices are read, not retained.
type SurfaceSample struct {
	Energy    float64
	MaxHeight float64
	Heights   []float32
	Caustics  []float32
	FloaterYs []float32
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	ambientDrops int
	pointerDrops int
	steps        int

	// Scratch reused between flushes
	scratch []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per frame (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordAmbientDrops records n scheduler drops.
func (c *Collector) RecordAmbientDrops(n int) {
	c.ambientDrops += n
}

// RecordPointerDrop records a pointer drop.
func (c *Collector) RecordPointerDrop() {
	c.pointerDrops++
}

// RecordSteps records n integration steps.
func (c *Collector) RecordSteps(n int) {
	c.steps += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample SurfaceSample) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		AmbientDrops: c.ambientDrops,
		PointerDrops: c.pointerDrops,
		Steps:        c.steps,

		Energy:    sample.Energy,
		MaxHeight: sample.MaxHeight,

		FloaterCount: len(sample.FloaterYs),
	}

	if len(sample.Heights) > 0 {
		c.scratch = float32sTo64(c.scratch, sample.Heights, false)
		h := ComputeDistribution(c.scratch)
		stats.HeightMean = h.Mean
		stats.HeightStd = h.Std

		c.scratch = float32sTo64(c.scratch, sample.Heights, true)
		abs := ComputeDistribution(c.scratch)
		stats.AbsHeightP50 = abs.P50
		stats.AbsHeightP90 = abs.P90
	}

	if len(sample.Caustics) > 0 {
		c.scratch = float32sTo64(c.scratch, sample.Caustics, false)
		d := ComputeDistribution(c.scratch)
		stats.CausticMin = d.Min
		stats.CausticMax = d.Max
		stats.CausticMean = d.Mean
		stats.CausticStd = d.Std
		stats.CausticP90 = d.P90
	}

	if len(sample.FloaterYs) > 0 {
		c.scratch = float32sTo64(c.scratch, sample.FloaterYs, false)
		d := ComputeDistribution(c.scratch)
		stats.FloaterMeanY = d.Mean
		stats.FloaterMaxY = d.Max
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.ambientDrops = 0
	c.pointerDrops = 0
	c.steps = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
