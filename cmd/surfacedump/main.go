// Surface dump tool - runs the pool headless and writes the water and floor
// textures of the final frame to PNG files for inspection.
//
// Usage: go run ./cmd/surfacedump -frames 300 -out dump
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/pool/config"
	"github.com/pthm-cable/pool/renderer/shading"
	"github.com/pthm-cable/pool/sim"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	frames := flag.Int("frames", 300, "Frames to simulate before dumping")
	seed := flag.Int64("seed", 1, "RNG seed")
	outDir := flag.String("out", ".", "Output directory for PNG files")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	s, err := sim.New(sim.Options{Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create simulation: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	for i := 0; i < *frames; i++ {
		if err := s.Frame(); err != nil {
			fmt.Fprintf(os.Stderr, "Frame failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	hf := s.Field()
	water := make([]color.RGBA, hf.Size()*hf.Size())
	shading.FillWater(water, hf, mgl32.Vec3(cfg.Derived.Light))

	caustics := s.Caustics()
	floor := make([]color.RGBA, caustics.Size()*caustics.Size())
	shading.FillFloor(floor, caustics.Texture(), caustics.Size())

	ok := export(filepath.Join(*outDir, "water.png"), water, hf.Size())
	ok = export(filepath.Join(*outDir, "floor.png"), floor, caustics.Size()) && ok
	if !ok {
		os.Exit(1)
	}
}

// export writes a size x size row-major pixel buffer to a PNG file.
func export(path string, pixels []color.RGBA, size int) bool {
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	for k, c := range pixels {
		rgba.SetRGBA(k%size, k/size, c)
	}

	img := rl.NewImageFromImage(rgba)
	success := rl.ExportImage(*img, path)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Rendered to: %s (%dx%d)\n", path, size, size)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image: %s\n", path)
	}
	return success
}
