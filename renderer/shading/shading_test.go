package shading

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pool/systems"
)

var testLight = mgl32.Vec3{0.7559289460184544, 0.7559289460184544, -0.3779644730092272}.Normalize()

func brightness(r, g, b uint8) int { return int(r) + int(g) + int(b) }

func TestShadeWaterHeightTint(t *testing.T) {
	low := ShadeWater(-0.05, 0, 0, testLight)
	high := ShadeWater(0.05, 0, 0, testLight)
	if brightness(high.R, high.G, high.B) <= brightness(low.R, low.G, low.B) {
		t.Errorf("crest %v should be brighter than trough %v", high, low)
	}
	if low.A != waterAlpha || high.A != waterAlpha {
		t.Errorf("water alpha = %d/%d, want %d", low.A, high.A, waterAlpha)
	}
}

func TestShadeWaterFacingLight(t *testing.T) {
	// Normals tilted towards and away from the light
	towards := ShadeWater(0, 0.4, -0.2, testLight)
	away := ShadeWater(0, -0.4, 0.2, testLight)
	if brightness(towards.R, towards.G, towards.B) <= brightness(away.R, away.G, away.B) {
		t.Errorf("lit slope %v should be brighter than shaded slope %v", towards, away)
	}
}

func TestShadeFloorCaustics(t *testing.T) {
	// Tile centre, away from grout
	u := (0.5 + 3) / float32(tilesPerSide)
	dark := ShadeFloor(u, u, 0)
	flat := ShadeFloor(u, u, 1)
	bright := ShadeFloor(u, u, 3)

	if !(brightness(dark.R, dark.G, dark.B) < brightness(flat.R, flat.G, flat.B) &&
		brightness(flat.R, flat.G, flat.B) < brightness(bright.R, bright.G, bright.B)) {
		t.Errorf("floor should brighten with intensity: %v %v %v", dark, flat, bright)
	}
	if ShadeFloor(u, u, -1) != dark {
		t.Error("negative intensity should clamp to zero")
	}
}

func TestShadeFloorGrout(t *testing.T) {
	tile := ShadeFloor(0.5/tilesPerSide, 0.5/tilesPerSide, 1)
	grout := ShadeFloor(0, 0.5/tilesPerSide, 1)
	if tile == grout {
		t.Error("grout lines should differ from tile colour")
	}
}

func TestUnpackRGB(t *testing.T) {
	c := UnpackRGB(0xff66cc)
	if c.R != 0xff || c.G != 0x66 || c.B != 0xcc || c.A != 255 {
		t.Errorf("UnpackRGB = %v", c)
	}
}

func TestDiscOutlineFlat(t *testing.T) {
	centre := mgl32.Vec3{0.2, 0.02, -0.1}
	pts := DiscOutline(centre, 0.1, -math.Pi/2, 0, 0, 24)

	if len(pts) != 26 {
		t.Fatalf("got %d points, want centre + 25", len(pts))
	}
	if pts[0] != centre {
		t.Errorf("first point %v, want centre", pts[0])
	}
	for i, p := range pts[1:] {
		if math.Abs(float64(p.Y()-centre.Y())) > 1e-5 {
			t.Fatalf("point %d left the horizontal plane: %v", i, p)
		}
		if d := p.Sub(centre).Len(); math.Abs(float64(d-0.1)) > 1e-5 {
			t.Fatalf("point %d at distance %f, want 0.1", i, d)
		}
	}
}

func TestDiscOutlineTilted(t *testing.T) {
	pts := DiscOutline(mgl32.Vec3{}, 0.1, -math.Pi/2+0.3, 0, 0, 16)
	var maxY float32
	for _, p := range pts {
		maxY = max(maxY, p.Y())
	}
	if maxY < 0.02 {
		t.Errorf("tilted disc should rise above its centre, max y %f", maxY)
	}
}

func TestSignedArea(t *testing.T) {
	// Visually counter-clockwise on a y-down screen
	xs := []float32{0, -60, 60}
	ys := []float32{80, 150, 150}
	if SignedArea2(xs, ys) >= 0 {
		t.Error("expected negative area for screen-CCW triangle")
	}
}

func TestFillWaterFlat(t *testing.T) {
	hf := systems.NewHeightField(8, nil)
	hf.UpdateNormals()

	dst := make([]color.RGBA, 64)
	FillWater(dst, hf, testLight)
	for k := range dst {
		if dst[k] != dst[0] {
			t.Fatalf("flat surface shaded unevenly at %d: %v vs %v", k, dst[k], dst[0])
		}
	}
}

func TestFillFloorFollowsIntensity(t *testing.T) {
	const size = 24
	intensity := make([]float32, size*size)
	for k := range intensity {
		intensity[k] = 1
	}
	// Texel (4,4) sits inside a tile for 12 tiles over 24 texels
	intensity[4*size+4] = 2.5

	dst := make([]color.RGBA, size*size)
	FillFloor(dst, intensity, size)

	lit, flat := dst[4*size+4], dst[4*size+5]
	if brightness(lit.R, lit.G, lit.B) <= brightness(flat.R, flat.G, flat.B) {
		t.Errorf("focused texel %v should be brighter than %v", lit, flat)
	}
}
