package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PanelAction is a button pressed in the tunables panel.
type PanelAction int

const (
	ActionNone PanelAction = iota
	ActionPause
	ActionResetSurface
	ActionDefaults
)

// TunablesPanel renders the side panel with parameter sliders and overlay toggles.
type TunablesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	sliders  []SliderDescriptor
	visible  bool
}

// NewTunablesPanel creates a panel anchored at (x, y).
func NewTunablesPanel(x, y, width, height int32, sliders []SliderDescriptor) *TunablesPanel {
	return &TunablesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
		sliders:  sliders,
		visible:  width > 0,
	}
}

// IsVisible returns whether the panel is shown.
func (c *TunablesPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *TunablesPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// SetBounds moves and resizes the panel.
func (c *TunablesPanel) SetBounds(x, y, width, height int32) {
	c.x, c.y, c.width, c.height = x, y, width, height
}

// Contains reports whether a screen point is over the visible panel.
func (c *TunablesPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(p, rl.Rectangle{
		X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height),
	})
}

// Draw renders the panel and returns the button pressed this frame, if any.
// Slider changes are written through the descriptors' setters.
func (c *TunablesPanel) Draw(paused bool, overlays *OverlayRegistry) PanelAction {
	if !c.visible {
		return ActionNone
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := float32(c.x + padding)
	y := c.y + padding
	inner := float32(c.width - padding*2)

	y = r.DrawSectionHeader(int32(x), y, "Tunables")

	for _, s := range c.sliders {
		rl.DrawText(s.Label, int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		cur := s.Value()
		value := fmt.Sprintf(s.Format, cur)
		vw := rl.MeasureText(value, r.Theme.FontSize)
		rl.DrawText(value, int32(x+inner)-vw, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += r.Theme.LineHeight

		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 14},
			"", "",
			cur, s.Min, s.Max,
		)
		if next != cur {
			s.Set(next)
		}
		y += 22
	}

	y += 6
	action := ActionNone
	bw := (inner - 10) / 3
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: bw, Height: 26}, toggleText(paused, "Resume", "Pause")) {
		action = ActionPause
	}
	if gui.Button(rl.Rectangle{X: x + bw + 5, Y: float32(y), Width: bw, Height: 26}, "Reset") {
		action = ActionResetSurface
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+5), Y: float32(y), Width: bw, Height: 26}, "Defaults") {
		action = ActionDefaults
	}
	y += 38

	if overlays != nil {
		c.drawOverlays(int32(x), y, int32(inner), overlays)
	}
	return action
}

// drawOverlays lists overlay toggles by category.
func (c *TunablesPanel) drawOverlays(x, y, width int32, overlays *OverlayRegistry) {
	r := c.renderer
	for _, category := range overlays.Categories() {
		y = r.DrawSectionHeader(x, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), width)
			y += r.Theme.LineHeight
		}
		y += 4
	}
}

// drawToggle draws a single overlay toggle line.
func (c *TunablesPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 140, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "View"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
