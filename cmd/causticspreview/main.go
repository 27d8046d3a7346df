// Caustics preview tool - interactive caustics tuning with sliders.
//
// Usage: go run ./cmd/causticspreview
package main

import (
	"fmt"
	"image/color"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pool/renderer/shading"
	"github.com/pthm-cable/pool/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	gridSize    = 128
	textureSize = 256
)

// PreviewParams holds the values under edit.
type PreviewParams struct {
	IOR          float32
	PoolDepth    float32
	DropRadius   float32
	DropStrength float32
	WaveSpeed    float32
	Damping      float32
}

func defaultParams() PreviewParams {
	return PreviewParams{
		IOR:          1.333,
		PoolDepth:    1.0,
		DropRadius:   0.03,
		DropStrength: 0.02,
		WaveSpeed:    2.0,
		Damping:      0.995,
	}
}

// slider is one labelled row of the panel.
type slider struct {
	label    string
	format   string
	min, max float32
	value    *float32
	rebuild  bool // the projector must be recreated on change
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Caustics Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	rng := rand.New(rand.NewSource(1))

	field := systems.NewHeightField(gridSize, systems.NewCPUIntegrator(0))
	defer field.Close()
	projector := newProjector(params)

	pixels := make([]color.RGBA, textureSize*textureSize)
	img := rl.GenImageColor(textureSize, textureSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	rl.SetTextureFilter(texture, rl.FilterBilinear)

	paused := false
	rain := true

	for !rl.WindowShouldClose() {
		previewRect := rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize}

		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			mouse := rl.GetMousePosition()
			if rl.CheckCollisionPointRec(mouse, previewRect) {
				x := (mouse.X-previewRect.X)/previewRect.Width*2 - 1
				z := (mouse.Y-previewRect.Y)/previewRect.Height*2 - 1
				field.AddDisturbance(systems.Disturbance{X: x, Z: z, Radius: params.DropRadius, Strength: params.DropStrength})
			}
		}

		if !paused {
			if rain && rng.Float32() < 0.05 {
				strength := params.DropStrength
				if rng.Float32() < 0.5 {
					strength = -strength
				}
				field.AddDisturbance(systems.Disturbance{
					X: rng.Float32()*2 - 1, Z: rng.Float32()*2 - 1,
					Radius: params.DropRadius, Strength: strength,
				})
			}
			if err := field.Step(params.Damping, params.WaveSpeed); err != nil {
				fmt.Printf("step failed: %v\n", err)
			}
		}
		field.UpdateNormals()
		if err := projector.Update(field); err != nil {
			fmt.Printf("caustics update failed: %v\n", err)
		}
		shading.FillFloor(pixels, projector.Texture(), textureSize)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: textureSize, Height: textureSize},
			previewRect,
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		minI, maxI, mean := projector.Stats()
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Mean: %.3f", minI, maxI, mean), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Energy: %.4f  Peak: %.4f", field.Energy(), field.MaxAbsHeight()), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText("Click the preview to drop", 15, statsY+40, 14, rl.Gray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Caustics Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		sliders := []slider{
			{label: "Index of refraction", format: "%.3f", min: 1.0, max: 2.0, value: &params.IOR, rebuild: true},
			{label: "Pool depth", format: "%.2f", min: 0.1, max: 3.0, value: &params.PoolDepth, rebuild: true},
			{label: "Drop radius", format: "%.3f", min: 0.005, max: 0.1, value: &params.DropRadius},
			{label: "Drop strength", format: "%.3f", min: 0.001, max: 0.1, value: &params.DropStrength},
			{label: "Wave speed", format: "%.2f", min: 0.1, max: 2.0, value: &params.WaveSpeed},
			{label: "Damping", format: "%.4f", min: 0.95, max: 1.0, value: &params.Damping},
		}
		rebuild := false
		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(s.format, s.min), fmt.Sprintf(s.format, s.max),
				*s.value, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != *s.value {
				*s.value = v
				rebuild = rebuild || s.rebuild
			}
			panelY += 35
		}
		if rebuild {
			projector = newProjector(params)
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(rain, "Stop Rain", "Rain")) {
			rain = !rain
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Flatten") {
			field.Reset()
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			projector = newProjector(params)
			field.Reset()
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := configYAML(params)
		for _, line := range yaml {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yaml {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func newProjector(p PreviewParams) *systems.CausticsProjector {
	return systems.NewCausticsProjector(textureSize, systems.DefaultLight, systems.CausticsOptions{
		IOR:       p.IOR,
		PoolDepth: p.PoolDepth,
	})
}

// configYAML renders the edited values as config overrides.
func configYAML(p PreviewParams) []string {
	return []string{
		"water:",
		fmt.Sprintf("  wave_speed: %.2f", p.WaveSpeed),
		fmt.Sprintf("  damping: %.4f", p.Damping),
		"drops:",
		fmt.Sprintf("  radius: %.3f", p.DropRadius),
		fmt.Sprintf("  strength: %.3f", p.DropStrength),
		"caustics:",
		fmt.Sprintf("  ior: %.3f", p.IOR),
		fmt.Sprintf("  pool_depth: %.2f", p.PoolDepth),
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
