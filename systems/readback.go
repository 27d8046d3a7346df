package systems

import "math"

// DefaultGradientStep is the pool-space offset used by GradientAt.
const DefaultGradientStep = 0.02

// ReadbackCache holds a CPU copy of the active height channel so per-object
// logic can sample the surface without touching the simulation buffers.
//
// Refresh is the only synchronization point. Between refreshes the cache is
// allowed to lag; before the first refresh every query returns zero.
type ReadbackCache struct {
	size      int
	heights   []float32
	ready     bool
	refreshes uint64

	GradientStep float32
}

// NewReadbackCache creates an empty cache for a size x size field.
func NewReadbackCache(size int) *ReadbackCache {
	return &ReadbackCache{
		size:         size,
		heights:      make([]float32, size*size),
		GradientStep: DefaultGradientStep,
	}
}

// Refresh copies the active heights of hf. Call at most once per frame, after
// the frame's integration and normal passes have committed.
func (c *ReadbackCache) Refresh(hf *HeightField) {
	src := hf.Active().Height
	if len(c.heights) != len(src) {
		c.size = hf.Size()
		c.heights = make([]float32, len(src))
	}
	copy(c.heights, src)
	c.ready = true
	c.refreshes++
}

// Ready reports whether at least one refresh has happened.
func (c *ReadbackCache) Ready() bool { return c.ready }

// Refreshes returns the number of Refresh calls.
func (c *ReadbackCache) Refreshes() uint64 { return c.refreshes }

// cellIndex maps a pool coordinate to the nearest cell along one axis.
func (c *ReadbackCache) cellIndex(p float32) int {
	last := c.size - 1
	f := math.Floor(float64(poolToUV(p) * float32(last)))
	if math.IsNaN(f) {
		return 0
	}
	return clampInt(int(clampFloat(float32(f), 0, float32(last))), 0, last)
}

// HeightAt returns the cached height of the cell nearest (x, z).
// Coordinates outside the pool clamp to the edge.
func (c *ReadbackCache) HeightAt(x, z float32) float32 {
	if !c.ready {
		return 0
	}
	u := c.cellIndex(x)
	v := c.cellIndex(z)
	return c.heights[v*c.size+u]
}

// GradientAt returns (dh/dx, dh/dz) by central differences over HeightAt.
func (c *ReadbackCache) GradientAt(x, z float32) (gx, gz float32) {
	if !c.ready {
		return 0, 0
	}
	d := c.GradientStep
	hL := c.HeightAt(x-d, z)
	hR := c.HeightAt(x+d, z)
	hB := c.HeightAt(x, z-d)
	hF := c.HeightAt(x, z+d)
	return (hR - hL) / (2 * d), (hF - hB) / (2 * d)
}
