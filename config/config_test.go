package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Water.GridSize != 256 {
		t.Errorf("grid_size = %d, want 256", cfg.Water.GridSize)
	}
	if cfg.Water.Damping != 0.995 || cfg.Water.WaveSpeed != 2.0 {
		t.Errorf("water = %+v", cfg.Water)
	}
	if cfg.Drops.StartupCount != 20 {
		t.Errorf("startup_count = %d, want 20", cfg.Drops.StartupCount)
	}
	if len(cfg.Derived.Palette) != 5 || cfg.Derived.Palette[0] != 0xff3333 {
		t.Errorf("palette = %x", cfg.Derived.Palette)
	}

	l := cfg.Derived.Light
	sq := l[0]*l[0] + l[1]*l[1] + l[2]*l[2]
	if sq < 0.9999 || sq > 1.0001 {
		t.Errorf("light not normalized: %v (|l|^2=%f)", l, sq)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("water:\n  damping: 0.9\ndrops:\n  frequency: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Water.Damping != 0.9 {
		t.Errorf("damping = %f, want 0.9", cfg.Water.Damping)
	}
	if cfg.Water.WaveSpeed != 2.0 {
		t.Errorf("wave_speed should keep default, got %f", cfg.Water.WaveSpeed)
	}
	if cfg.Drops.Frequency != 0.5 {
		t.Errorf("frequency = %f, want 0.5", cfg.Drops.Frequency)
	}
}

func TestLoadRejectsBadPalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("floaters:\n  palette: [\"zzz\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid palette entry")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Water.StepsPerFrame = 3

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if again.Water.StepsPerFrame != 3 {
		t.Errorf("steps_per_frame = %d, want 3", again.Water.StepsPerFrame)
	}
}

func TestParseHexColor(t *testing.T) {
	cases := map[string]uint32{
		"ff3333":   0xff3333,
		"#33FF99":  0x33ff99,
		"0x3399ff": 0x3399ff,
	}
	for in, want := range cases {
		got, err := parseHexColor(in)
		if err != nil {
			t.Errorf("parseHexColor(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseHexColor(%q) = %x, want %x", in, got, want)
		}
	}
}
