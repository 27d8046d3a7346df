package systems

import (
	"testing"
)

func TestReadbackColdStart(t *testing.T) {
	cache := NewReadbackCache(64)

	coords := []struct{ x, z float32 }{
		{0, 0}, {-1, -1}, {1, 1}, {0.37, -0.81}, {5, -5},
	}
	for _, c := range coords {
		if h := cache.HeightAt(c.x, c.z); h != 0 {
			t.Errorf("HeightAt(%v,%v) = %f before refresh, want 0", c.x, c.z, h)
		}
		if gx, gz := cache.GradientAt(c.x, c.z); gx != 0 || gz != 0 {
			t.Errorf("GradientAt(%v,%v) = (%f,%f) before refresh, want 0", c.x, c.z, gx, gz)
		}
	}
	if cache.Ready() {
		t.Error("cache should not be ready before the first refresh")
	}
}

func TestReadbackNearestCell(t *testing.T) {
	const n = 4
	hf := NewHeightField(n, nil)
	g := hf.Active()
	for k := range g.Height {
		g.Height[k] = float32(k)
	}

	cache := NewReadbackCache(n)
	cache.Refresh(hf)

	cases := []struct {
		x, z float32
		want float32
	}{
		{-1, -1, 0},    // corner cell
		{1, 1, 15},     // opposite corner
		{0, 0, 5},      // floor(0.5*3) = 1 on both axes
		{1, -1, 3},     // last column, first row
		{5, -5, 3},     // clamped
		{-9, 9, 12},    // clamped
		{-0.2, 0.9, 9}, // column floor(0.4*3) = 1, row floor(0.95*3) = 2
	}

	for _, c := range cases {
		if got := cache.HeightAt(c.x, c.z); got != c.want {
			t.Errorf("HeightAt(%v,%v) = %v, want %v", c.x, c.z, got, c.want)
		}
	}
}

func TestReadbackIsSnapshot(t *testing.T) {
	hf := NewHeightField(32, nil)
	hf.AddDisturbance(Disturbance{X: 0, Z: 0, Radius: 0.3, Strength: 1})

	cache := NewReadbackCache(32)
	cache.Refresh(hf)
	before := cache.HeightAt(0, 0)
	if before == 0 {
		t.Fatal("expected a raised centre after refresh")
	}

	// Changes after the refresh are not visible until the next one.
	hf.Reset()
	if got := cache.HeightAt(0, 0); got != before {
		t.Errorf("cache changed without refresh: %f -> %f", before, got)
	}

	cache.Refresh(hf)
	if got := cache.HeightAt(0, 0); got != 0 {
		t.Errorf("expected flat surface after second refresh, got %f", got)
	}
	if cache.Refreshes() != 2 {
		t.Errorf("Refreshes = %d, want 2", cache.Refreshes())
	}
}

func TestReadbackGradientOnRamp(t *testing.T) {
	const n = 101
	hf := NewHeightField(n, nil)
	g := hf.Active()
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			g.Height[j*n+i] = float32(i) * 0.01
		}
	}
	cache := NewReadbackCache(n)
	cache.Refresh(hf)

	// 0.01 per cell, 50 cells per pool unit: slope 0.5, nearest-cell sampling
	// can be off by one cell on either side.
	gx, gz := cache.GradientAt(0.1, -0.3)
	if gx < 0.24 || gx > 0.76 {
		t.Errorf("gx = %f, want about 0.5", gx)
	}
	if gz != 0 {
		t.Errorf("gz = %f, want 0 on a ramp along x", gz)
	}

	// At the wall the offsets clamp; the estimate stays finite and non-negative.
	gx, _ = cache.GradientAt(1, 0)
	if gx < 0 || gx > 0.76 {
		t.Errorf("edge gx = %f, want clamped estimate in [0, 0.76]", gx)
	}
}
