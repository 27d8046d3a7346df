package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pool/ui"
)

var backgroundColor = rl.Color{R: 10, G: 14, B: 20, A: 255}

const controlsText = "[Space] Pause  [R] Reset  [Tab] Panel  [Wheel] Zoom  [Click] Inspect  [W/I/N/H/D/B/F] Overlays"

// Draw renders the game.
func (g *Game) Draw() {
	s := g.sim
	g.pool.Update(s.Field(), s.Caustics())

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	g.pool.Draw(g.view, g.overlays.IsEnabled(ui.OverlayWater))

	selected, hasSelection := g.inspector.Selected()
	g.floaters.Draw(g.view, s.Floaters(), selected, hasSelection)

	g.drawActiveOverlays()
	g.drawHUD()

	if g.overlays.IsEnabled(ui.OverlayFloaterInfo) {
		g.inspectorPanel.Draw(g.inspector.Sections())
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfData())
	}

	g.applyPanelAction(g.panel.Draw(s.Paused(), g.overlays))

	rl.EndDrawing()
}

// drawHUD renders the status text over the pool viewport.
func (g *Game) drawHUD() {
	s := g.sim
	_, causticMax, _ := s.Caustics().Stats()
	ambient, pointer, _ := s.Scheduler().Counts()

	x := int32(g.view.ViewportX)
	g.hud.Draw(x, ui.HUDData{
		Title:        "Pool",
		Tick:         s.Tick(),
		FPS:          rl.GetFPS(),
		Paused:       s.Paused(),
		Backend:      s.Field().Integrator().Name(),
		GridSize:     s.Field().Size(),
		Energy:       s.Field().Energy(),
		MaxHeight:    s.Field().MaxAbsHeight(),
		CausticMax:   causticMax,
		Floaters:     s.Floaters().Count(),
		AmbientDrops: ambient,
		PointerDrops: pointer,
	})
	g.hud.DrawControls(x, g.screenH, controlsText)
}

// drawReadout prints the cached height and gradient under the cursor.
func (g *Game) drawReadout() {
	mouse := rl.GetMousePosition()
	x, z, ok := g.view.ScreenToPool(mouse.X, mouse.Y)
	if !ok {
		return
	}
	cache := g.sim.Cache()
	h := cache.HeightAt(x, z)
	gx, gz := cache.GradientAt(x, z)

	text := fmt.Sprintf("(%.2f, %.2f) h=%+.4f g=(%+.3f, %+.3f)", x, z, h, gx, gz)
	rl.DrawText(text, int32(mouse.X)+14, int32(mouse.Y)+10, 12, rl.White)
}
