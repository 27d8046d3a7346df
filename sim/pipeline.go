package sim

import (
	"fmt"
	"time"

	"github.com/pthm-cable/pool/telemetry"
)

// Update advances stepsPerUpdate frames unless paused.
func (s *Simulation) Update() error {
	if s.paused {
		return nil
	}
	for i := 0; i < s.stepsPerUpdate; i++ {
		if err := s.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// Frame runs one frame of the pipeline in its fixed order:
// disturbances, integration steps, normals, caustics, readback, floaters.
// Tunables are read once at the start so mid-frame edits cannot leak in.
func (s *Simulation) Frame() error {
	start := time.Now()
	t := s.tunables

	steps := 0
	s.perfCollector.StartFrame()
	defer func() { s.perfCollector.EndFrame(steps) }()

	s.perfCollector.StartPhase(telemetry.PhaseDisturb)
	ambient := s.scheduler.Frame(s.field, t)
	for _, p := range s.pending {
		s.scheduler.Pointer(s.field, p.x, p.z, t)
		s.collector.RecordPointerDrop()
	}
	pointer := len(s.pending)
	s.pending = s.pending[:0]
	s.collector.RecordAmbientDrops(ambient)

	s.perfCollector.StartPhase(telemetry.PhaseStep)
	for i := 0; i < t.StepsPerFrame; i++ {
		if err := s.field.Step(t.Damping, t.WaveSpeed); err != nil {
			return fmt.Errorf("frame %d: %w", s.tick, err)
		}
		steps++
	}
	s.collector.RecordSteps(max(t.StepsPerFrame, 0))

	s.perfCollector.StartPhase(telemetry.PhaseNormals)
	s.field.UpdateNormals()

	s.perfCollector.StartPhase(telemetry.PhaseCaustics)
	if err := s.caustics.Update(s.field); err != nil {
		return fmt.Errorf("frame %d: %w", s.tick, err)
	}

	s.perfCollector.StartPhase(telemetry.PhaseReadback)
	s.cache.Refresh(s.field)

	s.perfCollector.StartPhase(telemetry.PhaseFloaters)
	s.floaters.Update(s.cache)

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.tick++
	s.lastFrame = FrameCounts{AmbientDrops: ambient, PointerDrops: pointer, Steps: max(t.StepsPerFrame, 0)}
	s.observeFrame(time.Since(start))
	s.flushTelemetry()

	return nil
}

// observeFrame publishes per-frame metrics when the exporter is enabled.
func (s *Simulation) observeFrame(elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	_, causticMax, _ := s.caustics.Stats()
	s.metrics.ObserveFrame(telemetry.FrameSample{
		Energy:       s.field.Energy(),
		MaxHeight:    float64(s.field.MaxAbsHeight()),
		CausticMax:   float64(causticMax),
		Floaters:     s.floaters.Count(),
		AmbientDrops: s.lastFrame.AmbientDrops,
		PointerDrops: s.lastFrame.PointerDrops,
		Steps:        s.lastFrame.Steps,
		FrameSeconds: elapsed.Seconds(),
	})
}
