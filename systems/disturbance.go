package systems

import (
	"math/rand"

	"github.com/pthm-cable/pool/config"
)

// Tunables are the live-editable simulation parameters. They are copied by
// value into the frame pipeline once per frame, so edits never land mid-frame.
type Tunables struct {
	DropFrequency float32 // probability of an ambient drop per frame, [0,1]
	DropRadius    float32
	DropStrength  float32
	MouseRadius   float32
	MouseStrength float32
	WaveSpeed     float32
	Damping       float32 // (0,1] recommended; not validated
	StepsPerFrame int
	CameraHeight  float32 // presentation only
}

// TunablesFromConfig returns the configured defaults.
func TunablesFromConfig(cfg *config.Config) Tunables {
	return Tunables{
		DropFrequency: float32(cfg.Drops.Frequency),
		DropRadius:    float32(cfg.Drops.Radius),
		DropStrength:  float32(cfg.Drops.Strength),
		MouseRadius:   float32(cfg.Drops.MouseRadius),
		MouseStrength: float32(cfg.Drops.MouseStrength),
		WaveSpeed:     float32(cfg.Water.WaveSpeed),
		Damping:       float32(cfg.Water.Damping),
		StepsPerFrame: cfg.Water.StepsPerFrame,
		CameraHeight:  float32(cfg.Screen.CameraHeight),
	}
}

// DisturbanceScheduler decides when and where drops hit the surface.
// All randomness comes from the injected rng, so runs are reproducible.
type DisturbanceScheduler struct {
	rng *rand.Rand

	ambient int
	pointer int
	startup int
}

// NewDisturbanceScheduler creates a scheduler drawing from rng.
func NewDisturbanceScheduler(rng *rand.Rand) *DisturbanceScheduler {
	return &DisturbanceScheduler{rng: rng}
}

// randomPoint returns a uniform point in [-1,1]^2.
func (s *DisturbanceScheduler) randomPoint() (x, z float32) {
	x = s.rng.Float32()*2 - 1
	z = s.rng.Float32()*2 - 1
	return x, z
}

// Startup injects count drops at random positions with alternating sign:
// even indices depress the surface, odd ones raise it.
func (s *DisturbanceScheduler) Startup(hf *HeightField, count int, radius, strength float32) {
	for i := 0; i < count; i++ {
		x, z := s.randomPoint()
		sign := float32(-1)
		if i&1 == 1 {
			sign = 1
		}
		hf.AddDisturbance(Disturbance{X: x, Z: z, Radius: radius, Strength: sign * strength})
	}
	s.startup += count
}

// Frame rolls for one ambient drop and returns how many drops were injected.
func (s *DisturbanceScheduler) Frame(hf *HeightField, t Tunables) int {
	if s.rng.Float32() >= t.DropFrequency {
		return 0
	}
	x, z := s.randomPoint()
	strength := t.DropStrength
	if s.rng.Float32() <= 0.5 {
		strength = -strength
	}
	hf.AddDisturbance(Disturbance{X: x, Z: z, Radius: t.DropRadius, Strength: strength})
	s.ambient++
	return 1
}

// Pointer injects a drop at a pool coordinate resolved by the input layer.
func (s *DisturbanceScheduler) Pointer(hf *HeightField, x, z float32, t Tunables) {
	hf.AddDisturbance(Disturbance{X: x, Z: z, Radius: t.MouseRadius, Strength: t.MouseStrength})
	s.pointer++
}

// Counts returns the number of ambient, pointer and startup drops injected.
func (s *DisturbanceScheduler) Counts() (ambient, pointer, startup int) {
	return s.ambient, s.pointer, s.startup
}
