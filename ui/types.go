// Package ui provides the panels and overlays drawn on top of the pool.
// Panels are described by small descriptor tables so new tunables or
// overlays can be added alongside the systems they expose.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 12, G: 22, B: 30, A: 235},
		PanelBorder:     rl.Color{R: 50, G: 80, B: 100, A: 255},
		SectionHeader:   rl.Color{R: 120, G: 210, B: 255, A: 255},
		LabelColor:      rl.LightGray,
		ValueColor:      rl.RayWhite,
		BarBg:           rl.Color{R: 35, G: 40, B: 45, A: 255},
		BarFill:         rl.Color{R: 90, G: 170, B: 220, A: 255},
		BarFillNegative: rl.Color{R: 220, G: 110, B: 90, A: 255},
		BarFillPositive: rl.Color{R: 100, G: 200, B: 140, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      90,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}

// SliderDescriptor binds one slider in the tunables panel to a float value.
type SliderDescriptor struct {
	Label  string
	Format string // Printf format for the value readout
	Min    float32
	Max    float32
	Value  func() float32
	Set    func(float32)
}
