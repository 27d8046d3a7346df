package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/camera"
	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/renderer/shading"
	"github.com/pthm-cable/pool/systems"
)

const discSegments = 32

// FloaterRenderer draws floaters as tilted discs with a soft floor shadow.
type FloaterRenderer struct {
	depth float32
	light mgl32.Vec3
	fan   []rl.Vector2
}

// NewFloaterRenderer creates a floater renderer for a pool of the given depth.
func NewFloaterRenderer(light mgl32.Vec3, depth float32) *FloaterRenderer {
	return &FloaterRenderer{
		depth: depth,
		light: light.Normalize(),
		fan:   make([]rl.Vector2, 0, discSegments+2),
	}
}

// Draw renders every floater in fc. selected is outlined when hasSelection is set.
func (r *FloaterRenderer) Draw(view *camera.PoolView, fc *systems.FloaterController, selected ecs.Entity, hasSelection bool) {
	fc.Each(func(e ecs.Entity, pos *components.Position, orient *components.Orientation, app *components.Appearance) {
		if !view.IsVisible(pos.X, pos.Z, app.Radius) {
			return
		}

		// Shadow lands on the floor along the light direction.
		if r.light.Y() > 0 {
			t := (r.depth + pos.Y) / r.light.Y()
			sx, sy := view.Project(pos.X-r.light.X()*t, -r.depth, pos.Z-r.light.Z()*t)
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, app.Radius*view.PixelsPerUnit()*view.ScaleAt(-r.depth), rl.Fade(rl.Black, 0.25))
		}

		outline := shading.DiscOutline(mgl32.Vec3{pos.X, pos.Y, pos.Z}, app.Radius, orient.Pitch, orient.Yaw, orient.Roll, discSegments)
		r.fan = r.fan[:0]
		for _, p := range outline {
			px, py := view.Project(p.X(), p.Y(), p.Z())
			r.fan = append(r.fan, rl.Vector2{X: px, Y: py})
		}
		drawFan(r.fan, shading.UnpackRGB(app.Color))

		if hasSelection && e == selected {
			cx, cy := view.Project(pos.X, pos.Y, pos.Z)
			rr := app.Radius * view.PixelsPerUnit() * view.ScaleAt(pos.Y)
			rl.DrawCircleLinesV(rl.Vector2{X: cx, Y: cy}, rr+4, rl.White)
		}
	})
}
