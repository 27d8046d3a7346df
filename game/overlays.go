package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/ui"
)

const (
	normalSamples = 24   // samples per side for the normals overlay
	normalScale   = 0.6  // pool units per unit of horizontal normal
	driftScale    = 1000 // pool units per unit of drift
)

// drawActiveOverlays renders all currently enabled debug overlays.
func (g *Game) drawActiveOverlays() {
	if g.overlays.IsEnabled(ui.OverlayBounds) {
		g.drawBounds()
	}
	if g.overlays.IsEnabled(ui.OverlayNormals) {
		g.drawNormals()
	}
	if g.overlays.IsEnabled(ui.OverlayDrift) {
		g.drawDrift()
	}
	if g.overlays.IsEnabled(ui.OverlayHeightReadout) {
		g.drawReadout()
	}
}

// drawNormals draws the horizontal normal components on a coarse grid.
func (g *Game) drawNormals() {
	field := g.sim.Field()
	if !field.NormalsCurrent() {
		return
	}
	n := field.Size()
	stride := max(n/normalSamples, 1)

	for j := stride / 2; j < n; j += stride {
		for i := stride / 2; i < n; i += stride {
			nx, nz := field.NormalAt(i, j)
			x := (float32(i)+0.5)/float32(n)*2 - 1
			z := (float32(j)+0.5)/float32(n)*2 - 1

			sx, sy := g.view.PoolToScreen(x, z)
			ex, ey := g.view.PoolToScreen(x+nx*normalScale, z+nz*normalScale)
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 1, rl.Fade(rl.Yellow, 0.8))
		}
	}
}

// drawDrift draws each floater's drift vector, exaggerated.
func (g *Game) drawDrift() {
	g.sim.Floaters().Each(func(e ecs.Entity, pos *components.Position, _ *components.Orientation, _ *components.Appearance) {
		d := g.driftMap.Get(e)
		sx, sy := g.view.Project(pos.X, pos.Y, pos.Z)
		ex, ey := g.view.Project(pos.X+d.X*driftScale, pos.Y, pos.Z+d.Z*driftScale)
		rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 2, rl.SkyBlue)
		rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, 3, rl.SkyBlue)
	})
}

// drawBounds outlines the rectangle floaters are confined to.
func (g *Game) drawBounds() {
	b, margin := g.sim.Floaters().Bounds()
	x0, y0 := g.view.PoolToScreen(b.MinX+margin, b.MinZ+margin)
	x1, y1 := g.view.PoolToScreen(b.MaxX-margin, b.MaxZ-margin)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 1, rl.Orange)
}
