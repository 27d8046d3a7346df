package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/config"
)

// PoolBounds is the rectangle floaters are confined to, in pool space.
type PoolBounds struct {
	MinX, MaxX, MinZ, MaxZ float32
}

// SquareBounds returns bounds of +/- half on both axes.
func SquareBounds(half float32) PoolBounds {
	return PoolBounds{MinX: -half, MaxX: half, MinZ: -half, MaxZ: half}
}

// FloaterOptions describes how floaters are created.
type FloaterOptions struct {
	Count          int
	Palette        []uint32
	MinRadius      float32
	RadiusJitter   float32
	SpawnSpread    float32
	HeightOffset   float32
	WaterInfluence float32
	TiltAmount     float32
	MinSpin        float32
	SpinJitter     float32
	DriftScale     float32
}

// FloaterOptionsFromConfig builds options from the floaters config section.
func FloaterOptionsFromConfig(cfg *config.Config) FloaterOptions {
	f := cfg.Floaters
	return FloaterOptions{
		Count:          f.Count,
		Palette:        cfg.Derived.Palette,
		MinRadius:      float32(f.MinRadius),
		RadiusJitter:   float32(f.RadiusJitter),
		SpawnSpread:    float32(f.SpawnSpread),
		HeightOffset:   float32(f.HeightOffset),
		WaterInfluence: float32(f.WaterInfluence),
		TiltAmount:     float32(f.TiltAmount),
		MinSpin:        float32(f.MinSpin),
		SpinJitter:     float32(f.SpinJitter),
		DriftScale:     float32(f.DriftScale),
	}
}

// FloaterController moves floater entities along the sampled surface.
type FloaterController struct {
	mapper *ecs.Map5[
		components.Position,
		components.Orientation,
		components.Response,
		components.Drift,
		components.Appearance,
	]
	filter *ecs.Filter4[
		components.Position,
		components.Orientation,
		components.Response,
		components.Drift,
	]
	drawFilter *ecs.Filter3[
		components.Position,
		components.Orientation,
		components.Appearance,
	]

	bounds PoolBounds
	margin float32
	count  int
}

// NewFloaterController creates a controller for floaters in world.
func NewFloaterController(world *ecs.World, bounds PoolBounds, margin float32) *FloaterController {
	return &FloaterController{
		mapper: ecs.NewMap5[
			components.Position,
			components.Orientation,
			components.Response,
			components.Drift,
			components.Appearance,
		](world),
		filter: ecs.NewFilter4[
			components.Position,
			components.Orientation,
			components.Response,
			components.Drift,
		](world),
		drawFilter: ecs.NewFilter3[
			components.Position,
			components.Orientation,
			components.Appearance,
		](world),
		bounds: bounds,
		margin: margin,
	}
}

// Bounds returns the pool bounds and wall margin.
func (fc *FloaterController) Bounds() (PoolBounds, float32) { return fc.bounds, fc.margin }

// Count returns the number of floaters spawned.
func (fc *FloaterController) Count() int { return fc.count }

// Spawn creates opts.Count floaters using rng for size, placement, spin and drift.
func (fc *FloaterController) Spawn(rng *rand.Rand, opts FloaterOptions) []ecs.Entity {
	entities := make([]ecs.Entity, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		radius := opts.MinRadius + rng.Float32()*opts.RadiusJitter
		pos := components.Position{
			X: (rng.Float32() - 0.5) * opts.SpawnSpread,
			Z: (rng.Float32() - 0.5) * opts.SpawnSpread,
		}
		orient := components.Orientation{
			Pitch:     -math.Pi / 2,
			BasePitch: -math.Pi / 2,
		}
		resp := components.Response{
			HeightOffset:   opts.HeightOffset,
			WaterInfluence: opts.WaterInfluence,
			TiltAmount:     opts.TiltAmount,
			SpinSpeed:      opts.MinSpin + rng.Float32()*opts.SpinJitter,
		}
		drift := components.Drift{
			X: (rng.Float32() - 0.5) * opts.DriftScale,
			Z: (rng.Float32() - 0.5) * opts.DriftScale,
		}
		var color uint32 = 0xffffff
		if len(opts.Palette) > 0 {
			color = opts.Palette[i%len(opts.Palette)]
		}
		app := components.Appearance{Radius: radius, Color: color, Index: uint16(i)}

		entities = append(entities, fc.mapper.NewEntity(&pos, &orient, &resp, &drift, &app))
	}
	fc.count += len(entities)
	return entities
}

// Update advances every floater by one frame using the cached surface.
func (fc *FloaterController) Update(cache *ReadbackCache) {
	query := fc.filter.Query()
	for query.Next() {
		pos, orient, resp, drift := query.Get()
		updateFloater(pos, orient, resp, drift, cache, fc.bounds, fc.margin)
	}
}

// updateFloater applies the surface coupling and wall bounce to one floater.
func updateFloater(
	pos *components.Position,
	orient *components.Orientation,
	resp *components.Response,
	drift *components.Drift,
	cache *ReadbackCache,
	bounds PoolBounds,
	margin float32,
) {
	h := cache.HeightAt(pos.X, pos.Z)
	pos.Y = h + resp.HeightOffset

	gx, gz := cache.GradientAt(pos.X, pos.Z)
	pos.X += gx*resp.WaterInfluence + drift.X
	pos.Z += gz*resp.WaterInfluence + drift.Z

	orient.Pitch = orient.BasePitch - gz*resp.TiltAmount
	orient.Roll = orient.BaseRoll + gx*resp.TiltAmount
	orient.Yaw += resp.SpinSpeed

	pos.X, drift.X = bounceAxis(pos.X, drift.X, bounds.MinX+margin, bounds.MaxX-margin)
	pos.Z, drift.Z = bounceAxis(pos.Z, drift.Z, bounds.MinZ+margin, bounds.MaxZ-margin)
}

// bounceAxis clamps p into [lo, hi]; on touching a wall the drift points away from it.
func bounceAxis(p, drift, lo, hi float32) (float32, float32) {
	if p < lo {
		return lo, absf(drift)
	}
	if p > hi {
		return hi, -absf(drift)
	}
	return p, drift
}

// Each calls fn for every floater with its drawable components.
func (fc *FloaterController) Each(fn func(e ecs.Entity, pos *components.Position, orient *components.Orientation, app *components.Appearance)) {
	query := fc.drawFilter.Query()
	for query.Next() {
		pos, orient, app := query.Get()
		fn(query.Entity(), pos, orient, app)
	}
}

// Pick returns the floater whose disc contains (x, z), if any.
func (fc *FloaterController) Pick(x, z float32) (ecs.Entity, bool) {
	var found ecs.Entity
	ok := false
	best := float32(math.MaxFloat32)
	fc.Each(func(e ecs.Entity, pos *components.Position, _ *components.Orientation, app *components.Appearance) {
		d := distanceSq(x, z, pos.X, pos.Z)
		if d <= app.Radius*app.Radius && d < best {
			best = d
			found = e
			ok = true
		}
	})
	return found, ok
}
