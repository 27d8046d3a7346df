package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// cameraWheelStep is the eye height change per mouse wheel notch.
const cameraWheelStep = 0.1

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.sim.SetPaused(!g.sim.Paused())
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.sim.ResetSurface()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.panel.Toggle()
		g.layout()
	}
	if rl.IsKeyPressed(rl.KeyEscape) || rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		g.inspector.Deselect()
	}
	g.overlays.HandleKeys()

	mouse := rl.GetMousePosition()
	if g.panel.Contains(mouse) {
		return
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		t := g.sim.Tunables()
		t.CameraHeight -= wheel * cameraWheelStep
		g.view.SetHeight(t.CameraHeight)
		t.CameraHeight = g.view.Height
	}

	x, z, ok := g.view.ScreenToPool(mouse.X, mouse.Y)
	if !ok {
		return
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if e, hit := g.sim.Floaters().Pick(x, z); hit {
			g.inspector.Select(e)
		}
	}

	// Every pointer move over the pool disturbs the surface.
	delta := rl.GetMouseDelta()
	if delta.X != 0 || delta.Y != 0 {
		g.sim.QueuePointer(x, z)
	}
}
