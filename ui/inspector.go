package ui

import (
	"github.com/pthm-cable/pool/inspector"
	"github.com/pthm-cable/pool/renderer/shading"
)

// InspectorPanel renders the selected floater's components.
type InspectorPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspectorPanel creates a new inspector panel.
func NewInspectorPanel(x, y, width int32) *InspectorPanel {
	return &InspectorPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *InspectorPanel) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders sections and returns the Y below the panel.
func (ins *InspectorPanel) Draw(sections []inspector.Section) int32 {
	if len(sections) == 0 {
		return ins.y
	}

	r := ins.renderer
	padding := r.Theme.Padding

	lines := 0
	for _, s := range sections {
		lines += len(s.Fields) + 1
	}
	height := int32(lines)*(r.Theme.LineHeight+2) + padding*2 + int32(len(sections))*4
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + padding
	y := ins.y + padding
	width := ins.width - padding*2

	for _, s := range sections {
		y = r.DrawSectionHeader(x, y, s.Title)
		for _, f := range s.Fields {
			y = ins.drawField(x, y, f, width)
		}
		y += 4
	}
	return ins.y + height
}

// drawField renders one field according to its widget.
func (ins *InspectorPanel) drawField(x, y int32, f inspector.Field, width int32) int32 {
	r := ins.renderer
	switch f.Widget {
	case inspector.WidgetColor:
		if c, ok := f.Value.(uint32); ok {
			return r.DrawColorSwatch(x, y, f.Name, shading.UnpackRGB(c))
		}
	case inspector.WidgetSigned:
		if v, ok := inspector.GetFloatValue(f.Value); ok {
			return r.DrawCenteredBar(x, y, f.Name, v, inspector.GetMax(f.Options), width)
		}
	case inspector.WidgetBar:
		if v, ok := inspector.GetFloatValue(f.Value); ok {
			return r.DrawBar(x, y, f.Name, v, inspector.GetMax(f.Options), width)
		}
	}
	return r.DrawLabelValue(x, y, f.Name, inspector.FormatValue(f))
}
