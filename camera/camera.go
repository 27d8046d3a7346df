// Package camera maps between screen pixels and pool coordinates for the
// fixed top-down view.
package camera

import "math"

// View constants. The camera sits on the pool axis looking straight down with
// screen-up along -z.
const (
	PoolExtent = 1.0 // pool half-size in pool units
	BaseFOV    = 50.0 * math.Pi / 180
	MinFOV     = 20.0 * math.Pi / 180

	MinHeight = 0.3
	MaxHeight = 5.0
)

// PoolView is a perspective camera above the pool centre.
// The vertical field of view narrows on wide viewports so the pool always
// fills the view horizontally.
type PoolView struct {
	// Height of the eye above the rest surface, in pool units
	Height float32

	// Drawable area on screen (the tunables panel may take the left strip)
	ViewportX, ViewportW, ViewportH float32
}

// New creates a view over the given viewport rectangle.
func New(viewportX, viewportW, viewportH, height float32) *PoolView {
	v := &PoolView{
		ViewportX: viewportX,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
	v.SetHeight(height)
	return v
}

// Aspect returns the viewport aspect ratio.
func (v *PoolView) Aspect() float32 {
	if v.ViewportH <= 0 {
		return 1
	}
	return v.ViewportW / v.ViewportH
}

// FOV returns the vertical field of view in radians.
func (v *PoolView) FOV() float64 {
	maxFOV := 2 * math.Atan(PoolExtent/(float64(v.Height)*float64(v.Aspect())))
	return math.Min(BaseFOV, math.Max(maxFOV, MinFOV))
}

// HalfExtent returns the half-size of the visible rest surface in pool units.
func (v *PoolView) HalfExtent() (halfW, halfH float32) {
	halfH = v.Height * float32(math.Tan(v.FOV()/2))
	return halfH * v.Aspect(), halfH
}

// PixelsPerUnit returns the screen scale at the rest surface.
func (v *PoolView) PixelsPerUnit() float32 {
	_, halfH := v.HalfExtent()
	if halfH <= 0 {
		return 0
	}
	return v.ViewportH / (2 * halfH)
}

// PoolToScreen converts a point on the rest surface to screen coordinates.
func (v *PoolView) PoolToScreen(x, z float32) (sx, sy float32) {
	return v.Project(x, 0, z)
}

// Project converts a pool-space point at height y to screen coordinates.
// Points above the rest surface are closer to the eye and spread outwards.
func (v *PoolView) Project(x, y, z float32) (sx, sy float32) {
	s := v.PixelsPerUnit() * v.depthScale(y)
	sx = v.ViewportX + v.ViewportW/2 + x*s
	sy = v.ViewportH/2 + z*s
	return sx, sy
}

// ScaleAt returns how many pixels one pool unit spans at height y.
func (v *PoolView) ScaleAt(y float32) float32 {
	return v.PixelsPerUnit() * v.depthScale(y)
}

func (v *PoolView) depthScale(y float32) float32 {
	d := v.Height - y
	if d <= 1e-4 {
		d = 1e-4
	}
	return v.Height / d
}

// ScreenToPool casts the pixel onto the rest surface. ok is false when the
// ray misses the pool or the pixel is outside the viewport.
func (v *PoolView) ScreenToPool(sx, sy float32) (x, z float32, ok bool) {
	if sx < v.ViewportX || sx > v.ViewportX+v.ViewportW || sy < 0 || sy > v.ViewportH {
		return 0, 0, false
	}
	s := v.PixelsPerUnit()
	if s == 0 {
		return 0, 0, false
	}
	x = (sx - v.ViewportX - v.ViewportW/2) / s
	z = (sy - v.ViewportH/2) / s
	ok = absf(x) <= PoolExtent && absf(z) <= PoolExtent
	return x, z, ok
}

// IsVisible returns true if a disc at (x, z) with given radius could be
// visible on screen (conservative check for culling).
func (v *PoolView) IsVisible(x, z, radius float32) bool {
	halfW, halfH := v.HalfExtent()
	return absf(x) <= halfW+radius && absf(z) <= halfH+radius
}

// SetHeight sets the eye height, clamped to [MinHeight, MaxHeight].
func (v *PoolView) SetHeight(h float32) {
	v.Height = clamp(h, MinHeight, MaxHeight)
}

// Resize updates the viewport rectangle.
func (v *PoolView) Resize(viewportX, viewportW, viewportH float32) {
	v.ViewportX = viewportX
	v.ViewportW = viewportW
	v.ViewportH = viewportH
}

// VisibleBounds returns the pool-coordinate bounds of the visible rest surface.
func (v *PoolView) VisibleBounds() (minX, minZ, maxX, maxZ float32) {
	halfW, halfH := v.HalfExtent()
	return -halfW, -halfH, halfW, halfH
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
