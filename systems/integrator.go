package systems

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Integrator computes one wave step from src into dst. It must read only src
// and must fully overwrite dst; HeightField owns the buffers and the swap.
type Integrator interface {
	Integrate(dst, src *Grid, damping, speed float32) error
	Name() string
	Close() error
}

// Backend names accepted by NewIntegrator.
const (
	BackendCPU    = "cpu"
	BackendOpenCL = "opencl"
)

// NewIntegrator returns the named backend.
// workers only applies to the CPU backend (0 = GOMAXPROCS).
func NewIntegrator(backend string, workers int) (Integrator, error) {
	switch backend {
	case "", BackendCPU:
		return NewCPUIntegrator(workers), nil
	case BackendOpenCL:
		return NewOpenCLIntegrator()
	default:
		return nil, fmt.Errorf("unknown integrator backend %q", backend)
	}
}

// minRowsPerBand keeps bands large enough that goroutine overhead stays small.
const minRowsPerBand = 16

// CPUIntegrator runs the step on row bands in parallel.
type CPUIntegrator struct {
	workers int
}

// NewCPUIntegrator creates a CPU integrator using up to workers goroutines.
func NewCPUIntegrator(workers int) *CPUIntegrator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUIntegrator{workers: workers}
}

// Name implements Integrator.
func (c *CPUIntegrator) Name() string { return BackendCPU }

// Workers returns the configured parallelism.
func (c *CPUIntegrator) Workers() int { return c.workers }

// Close implements Integrator.
func (c *CPUIntegrator) Close() error { return nil }

// Integrate implements Integrator.
func (c *CPUIntegrator) Integrate(dst, src *Grid, damping, speed float32) error {
	if dst.Size != src.Size {
		return fmt.Errorf("grid size mismatch: dst %d, src %d", dst.Size, src.Size)
	}
	n := src.Size

	bands := c.workers
	if maxBands := n / minRowsPerBand; bands > maxBands {
		bands = maxBands
	}
	if bands <= 1 {
		integrateRows(dst, src, 0, n, damping, speed)
		return nil
	}

	var g errgroup.Group
	g.SetLimit(c.workers)
	rowsPerBand := (n + bands - 1) / bands
	for start := 0; start < n; start += rowsPerBand {
		end := min(start+rowsPerBand, n)
		g.Go(func() error {
			integrateRows(dst, src, start, end, damping, speed)
			return nil
		})
	}
	return g.Wait()
}

// integrateRows applies the damped wave update to rows [j0, j1).
func integrateRows(dst, src *Grid, j0, j1 int, damping, speed float32) {
	n := src.Size
	last := n - 1
	for j := j0; j < j1; j++ {
		row := j * n
		up := max(j-1, 0) * n
		down := min(j+1, last) * n
		for i := 0; i < n; i++ {
			left := max(i-1, 0)
			right := min(i+1, last)

			h := src.Height[row+i]
			avg := (src.Height[row+left] + src.Height[row+right] +
				src.Height[up+i] + src.Height[down+i]) * 0.25

			v := src.Velocity[row+i] + (avg-h)*speed
			dst.Velocity[row+i] = v
			dst.Height[row+i] = (h + v) * damping
		}
	}
}
