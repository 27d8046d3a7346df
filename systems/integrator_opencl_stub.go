//go:build !opencl

package systems

import "errors"

// NewOpenCLIntegrator is unavailable without the opencl build tag.
func NewOpenCLIntegrator() (Integrator, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}
