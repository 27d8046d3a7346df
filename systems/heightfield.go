package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/blas/blas32"
)

// ErrStaleNormals is returned by consumers that need normals derived from the
// current height state when UpdateNormals has not run since the last swap.
var ErrStaleNormals = errors.New("normals are stale: UpdateNormals must run after the last height change")

// Disturbance is a localized impulse in pool coordinates [-1,1].
type Disturbance struct {
	X, Z     float32
	Radius   float32 // texture-space radius of the falloff
	Strength float32 // signed; positive raises the surface
}

// Grid is one N x N buffer of the height field.
// Rows run along z, columns along x; index = row*Size + col.
type Grid struct {
	Size     int
	Height   []float32
	Velocity []float32
}

func newGrid(size int) Grid {
	return Grid{
		Size:     size,
		Height:   make([]float32, size*size),
		Velocity: make([]float32, size*size),
	}
}

// At returns the height at column i, row j. Out-of-range indices clamp to the
// nearest edge cell, so the outside of the pool mirrors the wall.
func (g *Grid) At(i, j int) float32 {
	n := g.Size
	i = clampInt(i, 0, n-1)
	j = clampInt(j, 0, n-1)
	return g.Height[j*n+i]
}

func (g *Grid) copyFrom(src *Grid) {
	copy(g.Height, src.Height)
	copy(g.Velocity, src.Velocity)
}

func (g *Grid) zero() {
	clear(g.Height)
	clear(g.Velocity)
}

// HeightField owns the ping/pong grid pair of the water surface and its normals.
//
// Exactly one grid is active at a time. AddDisturbance and Step write the other
// grid and then swap roles, so readers never see a partially written buffer.
// Consumers must fetch Active() each frame instead of holding on to a grid.
type HeightField struct {
	size       int
	grids      [2]Grid
	active     int
	generation uint64

	normals    []float32 // interleaved (nx, nz)
	normalsGen uint64

	integrator Integrator
}

// NewHeightField creates a flat, undisturbed field of size x size cells.
// Grid 0 starts active. If integ is nil a single-worker CPU integrator is used.
func NewHeightField(size int, integ Integrator) *HeightField {
	if integ == nil {
		integ = NewCPUIntegrator(1)
	}
	return &HeightField{
		size:       size,
		grids:      [2]Grid{newGrid(size), newGrid(size)},
		normals:    make([]float32, size*size*2),
		integrator: integ,
	}
}

// Size returns the number of cells per side.
func (h *HeightField) Size() int { return h.size }

// Active returns the grid holding the most recently committed state.
// The returned grid must be treated as read-only and not retained across frames.
func (h *HeightField) Active() *Grid { return &h.grids[h.active] }

// ActiveIndex reports which physical buffer (0 or 1) is active.
func (h *HeightField) ActiveIndex() int { return h.active }

// Generation increments on every swap.
func (h *HeightField) Generation() uint64 { return h.generation }

// Integrator returns the backend used by Step.
func (h *HeightField) Integrator() Integrator { return h.integrator }

func (h *HeightField) writeTarget() *Grid { return &h.grids[1-h.active] }

func (h *HeightField) swap() {
	h.active = 1 - h.active
	h.generation++
}

// AddDisturbance adds a cosine-falloff bump of d.Strength centred at (d.X, d.Z)
// into the write grid on top of the active state, then makes it active.
// Cells whose centre lies at or beyond d.Radius keep their exact prior value.
func (h *HeightField) AddDisturbance(d Disturbance) {
	src := h.Active()
	dst := h.writeTarget()
	dst.copyFrom(src)

	if d.Radius > 0 {
		n := h.size
		fn := float32(n)
		cu, cv := poolToUV(d.X), poolToUV(d.Z)

		i0 := clampInt(int(math.Floor(float64((cu-d.Radius)*fn))), 0, n-1)
		i1 := clampInt(int(math.Ceil(float64((cu+d.Radius)*fn))), 0, n-1)
		j0 := clampInt(int(math.Floor(float64((cv-d.Radius)*fn))), 0, n-1)
		j1 := clampInt(int(math.Ceil(float64((cv+d.Radius)*fn))), 0, n-1)

		for j := j0; j <= j1; j++ {
			v := texelCenter(j, n)
			row := j * n
			for i := i0; i <= i1; i++ {
				dist := distance(texelCenter(i, n), v, cu, cv)
				if dist >= d.Radius {
					continue
				}
				dst.Height[row+i] += d.Strength * dropFalloff(dist, d.Radius)
			}
		}
	}

	h.swap()
}

// dropFalloff is 1 at the centre and eases to 0 at radius.
func dropFalloff(dist, radius float32) float32 {
	t := 1 - dist/radius
	if t <= 0 {
		return 0
	}
	return 0.5 - 0.5*float32(math.Cos(float64(t)*math.Pi))
}

// Step advances the wave equation one explicit step and swaps.
//
// Each cell moves towards the mean of its four neighbours:
//
//	v' = v + (avg - h) * speed
//	h' = (h + v') * damping
//
// damping < 1 removes energy every step. damping == 1 is lossless but the
// checkerboard mode at speed 2 has a repeated eigenvalue of -1 and grows
// linearly, so long undamped runs drift; values are not validated.
// If the integrator fails the roles are left unchanged.
func (h *HeightField) Step(damping, speed float32) error {
	if err := h.integrator.Integrate(h.writeTarget(), h.Active(), damping, speed); err != nil {
		return fmt.Errorf("integrating height field: %w", err)
	}
	h.swap()
	return nil
}

// UpdateNormals derives per-cell surface normals from the active heights using
// symmetric central differences. The horizontal (nx, nz) components are stored.
func (h *HeightField) UpdateNormals() {
	g := h.Active()
	n := h.size
	delta := 1 / float32(n)

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := (g.At(i+1, j) - g.At(i-1, j)) * 0.5
			b := (g.At(i, j+1) - g.At(i, j-1)) * 0.5
			nrm := mgl32.Vec3{-a, delta, -b}.Normalize()
			k := 2 * (j*n + i)
			h.normals[k] = nrm.X()
			h.normals[k+1] = nrm.Z()
		}
	}
	h.normalsGen = h.generation
}

// NormalsCurrent reports whether the normals were derived from the active heights.
func (h *HeightField) NormalsCurrent() bool {
	return h.normalsGen == h.generation
}

// Normals returns the interleaved (nx, nz) buffer. Read-only.
func (h *HeightField) Normals() []float32 { return h.normals }

// NormalAt returns the horizontal normal components at column i, row j (clamped).
func (h *HeightField) NormalAt(i, j int) (nx, nz float32) {
	i = clampInt(i, 0, h.size-1)
	j = clampInt(j, 0, h.size-1)
	k := 2 * (j*h.size + i)
	return h.normals[k], h.normals[k+1]
}

// Energy returns the sum of squared heights of the active grid.
func (h *HeightField) Energy() float64 {
	v := blas32.Vector{N: len(h.Active().Height), Inc: 1, Data: h.Active().Height}
	return float64(blas32.Dot(v, v))
}

// MaxAbsHeight returns the largest |height| in the active grid.
func (h *HeightField) MaxAbsHeight() float32 {
	heights := h.Active().Height
	if len(heights) == 0 {
		return 0
	}
	idx := blas32.Iamax(blas32.Vector{N: len(heights), Inc: 1, Data: heights})
	return absf(heights[idx])
}

// Reset flattens both grids. Roles are kept; the flat normals are current.
func (h *HeightField) Reset() {
	h.grids[0].zero()
	h.grids[1].zero()
	clear(h.normals)
	h.generation++
	h.normalsGen = h.generation
}

// Close releases the integrator backend.
func (h *HeightField) Close() error {
	if h.integrator == nil {
		return nil
	}
	return h.integrator.Close()
}

// Restore loads height and velocity into the write grid and makes it active.
// Normals become stale.
func (h *HeightField) Restore(height, velocity []float32) error {
	want := h.size * h.size
	if len(height) != want || len(velocity) != want {
		return fmt.Errorf("restoring height field: want %d cells, got %d heights and %d velocities", want, len(height), len(velocity))
	}
	dst := h.writeTarget()
	copy(dst.Height, height)
	copy(dst.Velocity, velocity)
	h.swap()
	return nil
}
