package game

import (
	"math"

	"github.com/pthm-cable/pool/camera"
	"github.com/pthm-cable/pool/ui"
)

// sliders binds the tunables panel to the simulation's live tunables.
func (g *Game) sliders() []ui.SliderDescriptor {
	t := g.sim.Tunables()
	f32 := func(label, format string, lo, hi float32, p *float32) ui.SliderDescriptor {
		return ui.SliderDescriptor{
			Label:  label,
			Format: format,
			Min:    lo,
			Max:    hi,
			Value:  func() float32 { return *p },
			Set:    func(v float32) { *p = v },
		}
	}

	return []ui.SliderDescriptor{
		f32("Drop frequency", "%.3f", 0, 1, &t.DropFrequency),
		f32("Drop radius", "%.3f", 0.005, 0.2, &t.DropRadius),
		f32("Drop strength", "%.3f", 0, 0.1, &t.DropStrength),
		f32("Mouse radius", "%.3f", 0.005, 0.2, &t.MouseRadius),
		f32("Mouse strength", "%.3f", 0, 0.2, &t.MouseStrength),
		f32("Wave speed", "%.2f", 0, 2, &t.WaveSpeed),
		f32("Damping", "%.4f", 0.9, 1, &t.Damping),
		{
			Label:  "Steps / frame",
			Format: "%.0f",
			Min:    0,
			Max:    8,
			Value:  func() float32 { return float32(t.StepsPerFrame) },
			Set:    func(v float32) { t.StepsPerFrame = int(math.Round(float64(v))) },
		},
		f32("Camera height", "%.2f", camera.MinHeight, camera.MaxHeight, &t.CameraHeight),
	}
}

// applyPanelAction handles a tunables panel button.
func (g *Game) applyPanelAction(action ui.PanelAction) {
	switch action {
	case ui.ActionPause:
		g.sim.SetPaused(!g.sim.Paused())
	case ui.ActionResetSurface:
		g.sim.ResetSurface()
	case ui.ActionDefaults:
		g.sim.ResetTunables()
	}
}
