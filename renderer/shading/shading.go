// Package shading turns surface state into pixel colours and screen geometry.
// It has no window dependency, so it can be tested headless.
package shading

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pool/systems"
)

// Surface colours.
var (
	waterDeep    = mgl32.Vec3{0.08, 0.32, 0.50}
	waterShallow = mgl32.Vec3{0.20, 0.62, 0.78}
	floorTile    = mgl32.Vec3{0.62, 0.80, 0.86}
	floorGrout   = mgl32.Vec3{0.40, 0.55, 0.62}
	wallColor    = mgl32.Vec3{0.45, 0.63, 0.72}
)

const (
	waterAlpha    = 150
	specularPower = 60
	tilesPerSide  = 12
	groutWidth    = 0.06 // fraction of a tile
	heightTint    = 6.0  // height to shallow-colour mix factor
)

// ShadeWater returns the surface colour for one cell from its height and
// horizontal normal components, lit from light (unit, towards the light).
func ShadeWater(h, nx, nz float32, light mgl32.Vec3) color.RGBA {
	ny := float32(math.Sqrt(float64(max(0, 1-nx*nx-nz*nz))))
	n := mgl32.Vec3{nx, ny, nz}

	t := clamp01(0.5 + h*heightTint)
	base := lerpVec(waterDeep, waterShallow, t)

	diffuse := max(0, n.Dot(light))
	c := base.Mul(0.55 + 0.45*diffuse)

	// Reflection of the light towards an eye straight above.
	r := n.Mul(2 * n.Dot(light)).Sub(light)
	spec := float32(math.Pow(float64(max(0, r.Y())), specularPower))
	c = c.Add(mgl32.Vec3{spec, spec, spec})

	return toRGBA(c, waterAlpha)
}

// ShadeFloor returns the floor colour at texture coordinate (u, v) lit by
// caustic intensity (1 = flat-surface level).
func ShadeFloor(u, v, intensity float32) color.RGBA {
	base := floorTile
	if isGrout(u) || isGrout(v) {
		base = floorGrout
	}
	return toRGBA(base.Mul(0.35+0.65*max(0, intensity)), 255)
}

// WallColor returns the wall colour darkened by shade in [0,1].
func WallColor(shade float32) color.RGBA {
	return toRGBA(wallColor.Mul(1-0.5*clamp01(shade)), 255)
}

func isGrout(t float32) bool {
	f := t * tilesPerSide
	frac := f - float32(math.Floor(float64(f)))
	return frac < groutWidth
}

// UnpackRGB converts 0xRRGGBB to an opaque colour.
func UnpackRGB(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 255}
}

func toRGBA(c mgl32.Vec3, a uint8) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.X()) * 255),
		G: uint8(clamp01(c.Y()) * 255),
		B: uint8(clamp01(c.Z()) * 255),
		A: a,
	}
}

func lerpVec(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// DiscOutline returns segments+1 points of a disc of the given radius lying in
// the local XY plane, rotated by Euler angles applied in X, Y, Z order and
// moved to centre. The first point is the centre.
func DiscOutline(centre mgl32.Vec3, radius, pitch, yaw, roll float32, segments int) []mgl32.Vec3 {
	rot := mgl32.HomogRotate3DX(pitch).
		Mul4(mgl32.HomogRotate3DY(yaw)).
		Mul4(mgl32.HomogRotate3DZ(roll))

	pts := make([]mgl32.Vec3, 0, segments+2)
	pts = append(pts, centre)
	for i := 0; i <= segments; i++ {
		a := float64(i) / float64(segments) * 2 * math.Pi
		local := mgl32.Vec4{radius * float32(math.Cos(a)), radius * float32(math.Sin(a)), 0, 1}
		pts = append(pts, centre.Add(rot.Mul4x1(local).Vec3()))
	}
	return pts
}

// SignedArea2 returns twice the signed area of the polygon (shoelace).
// On a y-down screen a negative value means counter-clockwise as drawn.
func SignedArea2(xs, ys []float32) float32 {
	var s float32
	n := len(xs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s += xs[i]*ys[j] - xs[j]*ys[i]
	}
	return s
}

// FillWater shades every cell of hf into dst (len >= Size*Size), row-major.
func FillWater(dst []color.RGBA, hf *systems.HeightField, light mgl32.Vec3) {
	n := hf.Size()
	heights := hf.Active().Height
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			nx, nz := hf.NormalAt(i, j)
			k := j*n + i
			dst[k] = ShadeWater(heights[k], nx, nz, light)
		}
	}
}

// FillFloor shades a size x size caustics field into dst, row-major.
func FillFloor(dst []color.RGBA, intensity []float32, size int) {
	fs := float32(size)
	for j := 0; j < size; j++ {
		v := (float32(j) + 0.5) / fs
		for i := 0; i < size; i++ {
			u := (float32(i) + 0.5) / fs
			k := j*size + i
			dst[k] = ShadeFloor(u, v, intensity[k])
		}
	}
}
