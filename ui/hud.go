package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pool/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Tick         int32
	FPS          int32
	Paused       bool
	Backend      string
	GridSize     int
	Energy       float64
	MaxHeight    float32
	CausticMax   float32
	Floaters     int
	AmbientDrops int
	PointerDrops int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD at the top-left of the viewport starting at x.
func (h *HUD) Draw(x int32, data HUDData) {
	rl.DrawText(data.Title, x+10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Grid: %d | Backend: %s", data.Tick, data.FPS, data.GridSize, data.Backend),
		x+10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Energy: %.4f | Max |h|: %.4f | Caustic peak: %.2f", data.Energy, data.MaxHeight, data.CausticMax),
		x+10, 55, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Floaters: %d | Drops: %d ambient, %d pointer", data.Floaters, data.AmbientDrops, data.PointerDrops),
		x+10, 75, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", x+10, 95, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the viewport.
func (h *HUD) DrawControls(x, screenHeight int32, controls string) {
	rl.DrawText(controls, x+10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats  telemetry.PerfStats
	Phases []telemetry.Phase // display order
}

// PerfPanel renders the frame phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	height := int32(len(data.Phases))*14 + 66
	r.DrawPanel(p.x, p.y, 250, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	stats := data.Stats
	rl.DrawText(fmt.Sprintf("Total: %s", stats.AvgFrame.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("Step: %s x %.1f", stats.StepCost.Round(time.Microsecond), stats.StepsPerFrame), x, y, 12, rl.LightGray)
	y += 16

	for _, ph := range data.Phases {
		avg := stats.PhaseAvg[ph]
		pct := stats.PhasePct[ph]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
