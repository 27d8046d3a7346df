// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Water     WaterConfig     `yaml:"water"`
	Drops     DropsConfig     `yaml:"drops"`
	Floaters  FloatersConfig  `yaml:"floaters"`
	Caustics  CausticsConfig  `yaml:"caustics"`
	GPU       GPUConfig       `yaml:"gpu"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	TargetFPS    int     `yaml:"target_fps"`
	CameraHeight float64 `yaml:"camera_height"` // Eye height above the surface; scales the top-down view
	PanelWidth   int     `yaml:"panel_width"`   // Tunables panel width in pixels (0 = hidden)
}

// WaterConfig holds height field and integration parameters.
type WaterConfig struct {
	GridSize      int     `yaml:"grid_size"`       // Cells per side of the height field
	WaveSpeed     float64 `yaml:"wave_speed"`      // Propagation coefficient
	Damping       float64 `yaml:"damping"`         // Multiplier on updated height each step
	StepsPerFrame int     `yaml:"steps_per_frame"` // Integration steps per rendered frame
}

// DropsConfig holds disturbance scheduling parameters.
type DropsConfig struct {
	Frequency       float64 `yaml:"frequency"`        // Probability of an ambient drop per frame
	Radius          float64 `yaml:"radius"`           // Ambient drop radius (uv units)
	Strength        float64 `yaml:"strength"`         // Ambient drop strength (sign is random)
	MouseRadius     float64 `yaml:"mouse_radius"`     // Pointer drop radius
	MouseStrength   float64 `yaml:"mouse_strength"`   // Pointer drop strength
	StartupCount    int     `yaml:"startup_count"`    // Drops injected before the first frame
	StartupRadius   float64 `yaml:"startup_radius"`   // Startup drop radius
	StartupStrength float64 `yaml:"startup_strength"` // Startup drop magnitude, sign alternates
}

// FloatersConfig holds surface floater parameters.
type FloatersConfig struct {
	Count          int      `yaml:"count"`
	Palette        []string `yaml:"palette"`         // Hex RGB colours, cycled when Count exceeds length
	MinRadius      float64  `yaml:"min_radius"`      // Disc radius lower bound
	RadiusJitter   float64  `yaml:"radius_jitter"`   // Added uniformly in [0, jitter)
	SpawnSpread    float64  `yaml:"spawn_spread"`    // Spawn in (rand-0.5)*spread
	HeightOffset   float64  `yaml:"height_offset"`   // Clearance above the sampled surface
	WaterInfluence float64  `yaml:"water_influence"` // Slope to horizontal displacement factor
	TiltAmount     float64  `yaml:"tilt_amount"`     // Slope to pitch/roll factor
	MinSpin        float64  `yaml:"min_spin"`        // Yaw increment per frame lower bound
	SpinJitter     float64  `yaml:"spin_jitter"`
	DriftScale     float64  `yaml:"drift_scale"`   // Per-axis drift in (rand-0.5)*scale
	Bounds         float64  `yaml:"bounds"`        // Pool half-extent the floaters live in
	Margin         float64  `yaml:"margin"`        // Inset from Bounds
	GradientStep   float64  `yaml:"gradient_step"` // Readback gradient offset
}

// CausticsConfig holds caustics projection parameters.
type CausticsConfig struct {
	TextureSize int       `yaml:"texture_size"`
	Light       []float64 `yaml:"light"`      // Direction towards the light, normalized on load
	IOR         float64   `yaml:"ior"`        // Index of refraction of water
	PoolDepth   float64   `yaml:"pool_depth"` // Distance from rest surface to the floor
	Workers     int       `yaml:"workers"`    // 0 = GOMAXPROCS
}

// GPUConfig holds compute backend parameters.
type GPUConfig struct {
	Backend string `yaml:"backend"` // "cpu" or "opencl"
	Workers int    `yaml:"workers"` // CPU integrator workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Frames averaged by the perf collector
	FrameDT             float64 `yaml:"frame_dt"`              // Simulated seconds per frame
}

// MetricsConfig holds the Prometheus exporter settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32    // Screen.Width as float32
	ScreenH32 float32    // Screen.Height as float32
	Light     [3]float32 // Caustics.Light normalized
	Palette   []uint32   // Floaters.Palette parsed as 0xRRGGBB
	FrameDT32 float32    // Telemetry.FrameDT as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.FrameDT32 = float32(c.Telemetry.FrameDT)

	if c.Water.StepsPerFrame < 1 {
		c.Water.StepsPerFrame = 1
	}

	light, err := normalizeLight(c.Caustics.Light)
	if err != nil {
		return err
	}
	c.Derived.Light = light

	c.Derived.Palette = c.Derived.Palette[:0]
	for _, hex := range c.Floaters.Palette {
		rgb, err := parseHexColor(hex)
		if err != nil {
			return fmt.Errorf("parsing floater palette: %w", err)
		}
		c.Derived.Palette = append(c.Derived.Palette, rgb)
	}
	if len(c.Derived.Palette) == 0 {
		c.Derived.Palette = append(c.Derived.Palette, 0xffffff)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
