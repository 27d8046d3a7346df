//go:build !opencl

package systems

import "testing"

func TestOpenCLUnavailableWithoutTag(t *testing.T) {
	if _, err := NewIntegrator(BackendOpenCL, 0); err == nil {
		t.Error("expected error when built without the opencl tag")
	}
}
