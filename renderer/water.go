// Package renderer draws the pool, the water surface and the floaters with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pool/camera"
	"github.com/pthm-cable/pool/renderer/shading"
	"github.com/pthm-cable/pool/systems"
)

// PoolRenderer draws the caustic-lit floor, the walls and the translucent
// water surface. Both textures are shaded on the CPU and uploaded each frame.
type PoolRenderer struct {
	floorTex rl.Texture2D
	waterTex rl.Texture2D

	floorPixels []color.RGBA
	waterPixels []color.RGBA
	floorSize   int
	waterSize   int

	light mgl32.Vec3
	depth float32

	initialized bool
}

// NewPoolRenderer creates a pool renderer. light is normalized.
func NewPoolRenderer(light mgl32.Vec3, depth float32) *PoolRenderer {
	return &PoolRenderer{
		light: light.Normalize(),
		depth: depth,
	}
}

// Init creates the textures (must be called after raylib window is created).
func (p *PoolRenderer) Init(waterSize, floorSize int) {
	if p.initialized {
		return
	}

	p.waterSize = waterSize
	p.floorSize = floorSize

	img := rl.GenImageColor(waterSize, waterSize, rl.Blank)
	p.waterTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	img = rl.GenImageColor(floorSize, floorSize, rl.Black)
	p.floorTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	// Set texture filtering for smooth interpolation
	rl.SetTextureFilter(p.waterTex, rl.FilterBilinear)
	rl.SetTextureFilter(p.floorTex, rl.FilterBilinear)

	p.waterPixels = make([]color.RGBA, waterSize*waterSize)
	p.floorPixels = make([]color.RGBA, floorSize*floorSize)

	p.initialized = true
}

// Update shades and uploads the current surface and caustics.
func (p *PoolRenderer) Update(hf *systems.HeightField, caustics *systems.CausticsProjector) {
	if !p.initialized {
		p.Init(hf.Size(), caustics.Size())
	}

	shading.FillWater(p.waterPixels, hf, p.light)
	rl.UpdateTexture(p.waterTex, p.waterPixels)

	shading.FillFloor(p.floorPixels, caustics.Texture(), p.floorSize)
	rl.UpdateTexture(p.floorTex, p.floorPixels)
}

// Draw renders floor, walls and, when showWater is set, the water through view.
func (p *PoolRenderer) Draw(view *camera.PoolView, showWater bool) {
	if !p.initialized {
		return
	}

	e := float32(camera.PoolExtent)

	// Floor sits depth below the rest surface and projects smaller.
	fx0, fy0 := view.Project(-e, -p.depth, -e)
	fx1, fy1 := view.Project(e, -p.depth, e)
	sx0, sy0 := view.PoolToScreen(-e, -e)
	sx1, sy1 := view.PoolToScreen(e, e)

	// Walls: top, right, bottom, left, with a fixed light falloff per side.
	drawQuad(sx0, sy0, sx1, sy0, fx1, fy0, fx0, fy0, shading.WallColor(0.1))
	drawQuad(sx1, sy0, sx1, sy1, fx1, fy1, fx1, fy0, shading.WallColor(0.5))
	drawQuad(sx1, sy1, sx0, sy1, fx0, fy1, fx1, fy1, shading.WallColor(0.7))
	drawQuad(sx0, sy1, sx0, sy0, fx0, fy0, fx0, fy1, shading.WallColor(0.3))

	floorSrc := rl.Rectangle{Width: float32(p.floorSize), Height: float32(p.floorSize)}
	rl.DrawTexturePro(p.floorTex, floorSrc, rl.Rectangle{X: fx0, Y: fy0, Width: fx1 - fx0, Height: fy1 - fy0}, rl.Vector2{}, 0, rl.White)

	if showWater {
		waterSrc := rl.Rectangle{Width: float32(p.waterSize), Height: float32(p.waterSize)}
		rl.DrawTexturePro(p.waterTex, waterSrc, rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}, rl.Vector2{}, 0, rl.White)
	}

	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}, 2, rl.Fade(rl.White, 0.4))
}

// drawQuad fills a convex quad given in any winding.
func drawQuad(x0, y0, x1, y1, x2, y2, x3, y3 float32, col color.RGBA) {
	drawFan([]rl.Vector2{{X: x0, Y: y0}, {X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}}, col)
}

// drawFan draws a convex polygon as a triangle fan from pts[0], reversing the
// rim if needed so raylib sees counter-clockwise triangles.
func drawFan(pts []rl.Vector2, col color.RGBA) {
	xs := make([]float32, len(pts))
	ys := make([]float32, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	if shading.SignedArea2(xs, ys) > 0 {
		for i, j := 1, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	rl.DrawTriangleFan(pts, col)
}

// Unload frees resources.
func (p *PoolRenderer) Unload() {
	if p.initialized {
		rl.UnloadTexture(p.waterTex)
		rl.UnloadTexture(p.floorTex)
		p.initialized = false
	}
}
