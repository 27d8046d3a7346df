// Package components defines ECS components for the simulation.
package components

// Position represents a floater's position in pool space.
// X and Z span [-1,1]; Y is the height above the rest surface.
type Position struct {
	X float32
	Y float32 `inspect:"signed,max:0.1"`
	Z float32
}

// Orientation holds Euler angles in radians.
// Pitch and Roll are recomputed every frame from the base angles and the
// surface slope; Yaw accumulates spin.
type Orientation struct {
	Pitch     float32 `inspect:"angle"`
	Yaw       float32 `inspect:"angle"`
	Roll      float32 `inspect:"angle"`
	BasePitch float32 `inspect:"skip"`
	BaseRoll  float32 `inspect:"skip"`
}

// Response holds the per-instance coupling coefficients to the surface.
type Response struct {
	HeightOffset   float32 `inspect:"label,fmt:%.3f"` // clearance above the sampled height
	WaterInfluence float32 `inspect:"label,fmt:%.3f"` // slope to horizontal displacement
	TiltAmount     float32 `inspect:"label,fmt:%.2f"` // slope to pitch/roll
	SpinSpeed      float32 `inspect:"label,fmt:%.4f"` // yaw increment per frame
}

// Drift is a per-instance constant displacement per frame. Its sign flips when
// the floater touches a pool wall.
type Drift struct {
	X float32 `inspect:"signed,max:0.0002,fmt:%+.5f"`
	Z float32 `inspect:"signed,max:0.0002,fmt:%+.5f"`
}

// Appearance is presentation data read by the renderer only.
type Appearance struct {
	Radius float32 `inspect:"label,fmt:%.3f"`
	Color  uint32  `inspect:"color"` // 0xRRGGBB
	Index  uint16  // spawn order
}
