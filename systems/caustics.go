package systems

import (
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// DefaultLight points from the surface towards the light.
var DefaultLight = mgl32.Vec3{0.7559289460184544, 0.7559289460184544, -0.3779644730092272}

// CausticsOptions configures the projector.
type CausticsOptions struct {
	IOR       float32 // index of refraction of water (default 1.333)
	PoolDepth float32 // rest-surface to floor distance in pool units (default 1)
	Workers   int     // refraction workers (0 = GOMAXPROCS)
}

// CausticsProjector approximates light focusing on the pool floor.
//
// Every texel of a flat reference grid emits one unit of light. The ray is
// refracted through the local surface normal and traced to the floor; its
// landing point relative to the flat-surface landing point is where the unit is
// deposited (bilinear splat, clamped into the target). Converging rays read as
// bright, diverging ones as dark, and the total is always the texel count.
type CausticsProjector struct {
	size      int
	light     mgl32.Vec3
	eta       float32
	depth     float32
	workers   int
	flatShift mgl32.Vec2

	intensity []float32
	hits      []float32 // per-sample landing position in texel units (x, y)

	sourceGen uint64
	updated   bool
}

// NewCausticsProjector creates a size x size projector. light is normalized.
func NewCausticsProjector(size int, light mgl32.Vec3, opts CausticsOptions) *CausticsProjector {
	if opts.IOR <= 0 {
		opts.IOR = 1.333
	}
	if opts.PoolDepth <= 0 {
		opts.PoolDepth = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if light.Len() == 0 {
		light = DefaultLight
	}

	p := &CausticsProjector{
		size:      size,
		light:     light.Normalize(),
		eta:       1 / opts.IOR,
		depth:     opts.PoolDepth,
		workers:   opts.Workers,
		intensity: make([]float32, size*size),
		hits:      make([]float32, size*size*2),
	}
	p.flatShift = p.floorShift(mgl32.Vec3{0, 1, 0}, 0)
	return p
}

// Size returns the texels per side of the target.
func (p *CausticsProjector) Size() int { return p.size }

// Light returns the normalized light direction.
func (p *CausticsProjector) Light() mgl32.Vec3 { return p.light }

// Texture returns the latest intensity field, row-major. Read-only.
func (p *CausticsProjector) Texture() []float32 { return p.intensity }

// SourceGeneration returns the height generation the field was computed from.
func (p *CausticsProjector) SourceGeneration() uint64 { return p.sourceGen }

// refract bends incident direction i through a surface with normal n.
// ok is false on total internal reflection.
func refract(i, n mgl32.Vec3, eta float32) (mgl32.Vec3, bool) {
	cosi := -n.Dot(i)
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return mgl32.Vec3{}, false
	}
	return i.Mul(eta).Add(n.Mul(eta*cosi - float32(math.Sqrt(float64(k))))), true
}

// floorShift returns the horizontal travel of the refracted ray from a surface
// point at height h with normal n down to the floor.
func (p *CausticsProjector) floorShift(n mgl32.Vec3, h float32) mgl32.Vec2 {
	r, ok := refract(p.light.Mul(-1), n, p.eta)
	if !ok || r.Y() >= 0 {
		return p.flatShift
	}
	t := (p.depth + h) / -r.Y()
	return mgl32.Vec2{r.X() * t, r.Z() * t}
}

// Update recomputes the intensity field from the current heights and normals.
// It returns ErrStaleNormals if hf changed since its last UpdateNormals.
func (p *CausticsProjector) Update(hf *HeightField) error {
	if !hf.NormalsCurrent() {
		return ErrStaleNormals
	}

	if err := p.traceHits(hf); err != nil {
		return err
	}

	clear(p.intensity)
	n := p.size
	maxT := float32(n - 1)
	for k := 0; k < n*n; k++ {
		px := clampFloat(p.hits[2*k], 0, maxT)
		py := clampFloat(p.hits[2*k+1], 0, maxT)
		p.splat(px, py)
	}

	p.sourceGen = hf.Generation()
	p.updated = true
	return nil
}

// traceHits fills p.hits in parallel row bands. Each band writes only its own rows.
func (p *CausticsProjector) traceHits(hf *HeightField) error {
	n := p.size
	bands := p.workers
	if bands > n {
		bands = n
	}
	rowsPerBand := (n + bands - 1) / bands

	var g errgroup.Group
	g.SetLimit(p.workers)
	for start := 0; start < n; start += rowsPerBand {
		end := min(start+rowsPerBand, n)
		g.Go(func() error {
			p.traceRows(hf, start, end)
			return nil
		})
	}
	return g.Wait()
}

func (p *CausticsProjector) traceRows(hf *HeightField, j0, j1 int) {
	n := p.size
	fn := float32(n)
	heights := hf.Active()
	for j := j0; j < j1; j++ {
		v := texelCenter(j, n)
		for i := 0; i < n; i++ {
			u := texelCenter(i, n)

			nx, nz := sampleNormal(hf, u, v)
			ny := float32(math.Sqrt(float64(max(0, 1-nx*nx-nz*nz))))
			h := sampleHeight(heights, u, v)

			shift := p.floorShift(mgl32.Vec3{nx, ny, nz}, h).Sub(p.flatShift)

			// Pool units span 2, texture space spans 1.
			hx := (u+shift.X()*0.5)*fn - 0.5
			hy := (v+shift.Y()*0.5)*fn - 0.5
			if !finite(hx) || !finite(hy) {
				// A diverged surface lands its light straight below.
				hx, hy = u*fn-0.5, v*fn-0.5
			}
			k := 2 * (j*n + i)
			p.hits[k] = hx
			p.hits[k+1] = hy
		}
	}
}

// splat deposits one unit at texel-space position (px, py) bilinearly.
func (p *CausticsProjector) splat(px, py float32) {
	n := p.size
	i0 := int(px)
	j0 := int(py)
	fx := px - float32(i0)
	fy := py - float32(j0)
	i1 := min(i0+1, n-1)
	j1 := min(j0+1, n-1)

	p.intensity[j0*n+i0] += (1 - fx) * (1 - fy)
	p.intensity[j0*n+i1] += fx * (1 - fy)
	p.intensity[j1*n+i0] += (1 - fx) * fy
	p.intensity[j1*n+i1] += fx * fy
}

// sampleHeight bilinearly samples heights at texture coordinate (u, v).
func sampleHeight(g *Grid, u, v float32) float32 {
	x, y, fx, fy := bilinearCoords(g.Size, u, v)
	h00 := g.At(x, y)
	h10 := g.At(x+1, y)
	h01 := g.At(x, y+1)
	h11 := g.At(x+1, y+1)
	return lerp(lerp(h00, h10, fx), lerp(h01, h11, fx), fy)
}

// sampleNormal bilinearly samples the stored (nx, nz) at texture coordinate (u, v).
func sampleNormal(hf *HeightField, u, v float32) (nx, nz float32) {
	x, y, fx, fy := bilinearCoords(hf.Size(), u, v)
	ax, az := hf.NormalAt(x, y)
	bx, bz := hf.NormalAt(x+1, y)
	cx, cz := hf.NormalAt(x, y+1)
	dx, dz := hf.NormalAt(x+1, y+1)
	nx = lerp(lerp(ax, bx, fx), lerp(cx, dx, fx), fy)
	nz = lerp(lerp(az, bz, fx), lerp(cz, dz, fx), fy)
	return nx, nz
}

// bilinearCoords returns the lower cell and fractions for a texture coordinate
// against an n-cell grid with texel-centred samples.
func bilinearCoords(n int, u, v float32) (x, y int, fx, fy float32) {
	px := clampFloat(u*float32(n)-0.5, 0, float32(n-1))
	py := clampFloat(v*float32(n)-0.5, 0, float32(n-1))
	x = int(px)
	y = int(py)
	return x, y, px - float32(x), py - float32(y)
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Stats returns the minimum, maximum and mean intensity of the last update.
func (p *CausticsProjector) Stats() (minI, maxI, mean float32) {
	if !p.updated || len(p.intensity) == 0 {
		return 0, 0, 0
	}
	minI, maxI = p.intensity[0], p.intensity[0]
	var sum float64
	for _, v := range p.intensity {
		minI = min(minI, v)
		maxI = max(maxI, v)
		sum += float64(v)
	}
	return minI, maxI, float32(sum / float64(len(p.intensity)))
}

// Total returns the summed intensity of the last update.
func (p *CausticsProjector) Total() float64 {
	var sum float64
	for _, v := range p.intensity {
		sum += float64(v)
	}
	return sum
}
