package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of the frame pipeline.
type Phase uint8

// Pipeline phases in execution order.
const (
	PhaseDisturb Phase = iota
	PhaseStep
	PhaseNormals
	PhaseCaustics
	PhaseReadback
	PhaseFloaters
	PhaseTelemetry

	numPhases
)

var phaseNames = [numPhases]string{
	PhaseDisturb:   "disturb",
	PhaseStep:      "step",
	PhaseNormals:   "normals",
	PhaseCaustics:  "caustics",
	PhaseReadback:  "readback",
	PhaseFloaters:  "floaters",
	PhaseTelemetry: "telemetry",
}

// Phases lists the pipeline phases in execution order.
var Phases = []Phase{
	PhaseDisturb, PhaseStep, PhaseNormals, PhaseCaustics,
	PhaseReadback, PhaseFloaters, PhaseTelemetry,
}

func (p Phase) String() string {
	if p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PhaseDurations holds one duration per phase, indexed by Phase.
type PhaseDurations [numPhases]time.Duration

// frameSample is the timing of one simulated frame.
type frameSample struct {
	total  time.Duration
	phases PhaseDurations
	steps  int
}

// PerfCollector times the frame pipeline over a rolling window of frames.
// Integration steps are counted per frame so the step phase can be reported
// per step as well as per frame.
type PerfCollector struct {
	window  []frameSample
	next    int
	filled  int
	current frameSample

	frameStart time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	// Presentation timing, driven by the render loop.
	lastPresent time.Time
	presentDur  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{window: make([]frameSample, windowSize)}
}

// StartFrame begins timing a simulated frame.
func (p *PerfCollector) StartFrame() {
	now := time.Now()
	p.frameStart = now
	p.current = frameSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = ph < numPhases
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndFrame closes the running phase and records the frame with the number of
// integration steps it ran.
func (p *PerfCollector) EndFrame(steps int) {
	now := time.Now()
	p.closePhase(now)
	p.current.total = now.Sub(p.frameStart)
	p.current.steps = max(steps, 0)

	p.window[p.next] = p.current
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

// RecordPresent marks a presented frame in graphical mode.
func (p *PerfCollector) RecordPresent() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.presentDur = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats aggregates the frames in the window.
type PerfStats struct {
	Frames   int
	AvgFrame time.Duration
	MaxFrame time.Duration

	PhaseAvg PhaseDurations
	PhasePct [numPhases]float64

	StepsPerFrame float64
	StepCost      time.Duration // step phase time per integration step

	FPS float64 // presented frames per second, 0 when headless
}

// Stats computes the window aggregates.
func (p *PerfCollector) Stats() PerfStats {
	var stats PerfStats
	if p.presentDur > 0 {
		stats.FPS = float64(time.Second) / float64(p.presentDur)
	}
	if p.filled == 0 {
		return stats
	}

	var total time.Duration
	var sums PhaseDurations
	steps := 0
	for _, s := range p.window[:p.filled] {
		total += s.total
		stats.MaxFrame = max(stats.MaxFrame, s.total)
		for ph, d := range s.phases {
			sums[ph] += d
		}
		steps += s.steps
	}

	n := time.Duration(p.filled)
	stats.Frames = p.filled
	stats.AvgFrame = total / n
	for ph, sum := range sums {
		stats.PhaseAvg[ph] = sum / n
		if stats.AvgFrame > 0 {
			stats.PhasePct[ph] = float64(stats.PhaseAvg[ph]) / float64(stats.AvgFrame) * 100
		}
	}
	stats.StepsPerFrame = float64(steps) / float64(p.filled)
	if steps > 0 {
		stats.StepCost = sums[PhaseStep] / time.Duration(steps)
	}
	return stats
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("steps_per_frame", s.StepsPerFrame),
		slog.Int64("step_us", s.StepCost.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgFrameUS    int64   `csv:"avg_frame_us"`
	MaxFrameUS    int64   `csv:"max_frame_us"`
	StepsPerFrame float64 `csv:"steps_per_frame"`
	StepUS        float64 `csv:"step_us"`
	FPS           float64 `csv:"fps"`
	DisturbPct    float64 `csv:"disturb_pct"`
	StepPct       float64 `csv:"step_pct"`
	NormalsPct    float64 `csv:"normals_pct"`
	CausticsPct   float64 `csv:"caustics_pct"`
	ReadbackPct   float64 `csv:"readback_pct"`
	FloatersPct   float64 `csv:"floaters_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgFrameUS:    s.AvgFrame.Microseconds(),
		MaxFrameUS:    s.MaxFrame.Microseconds(),
		StepsPerFrame: s.StepsPerFrame,
		StepUS:        float64(s.StepCost) / float64(time.Microsecond),
		FPS:           s.FPS,
		DisturbPct:    s.PhasePct[PhaseDisturb],
		StepPct:       s.PhasePct[PhaseStep],
		NormalsPct:    s.PhasePct[PhaseNormals],
		CausticsPct:   s.PhasePct[PhaseCaustics],
		ReadbackPct:   s.PhasePct[PhaseReadback],
		FloatersPct:   s.PhasePct[PhaseFloaters],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
