//go:build opencl

package systems

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

const waveKernelSource = `__kernel void wave_step(
    const int size,
    const float damping,
    const float speed,
    __global const float* src_height,
    __global const float* src_velocity,
    __global float* dst_height,
    __global float* dst_velocity)
{
    int idx = get_global_id(0);
    if (idx >= size * size) {
        return;
    }
    int i = idx % size;
    int j = idx / size;
    int last = size - 1;
    int left = j * size + max(i - 1, 0);
    int right = j * size + min(i + 1, last);
    int up = max(j - 1, 0) * size + i;
    int down = min(j + 1, last) * size + i;

    float h = src_height[idx];
    float avg = (src_height[left] + src_height[right] + src_height[up] + src_height[down]) * 0.25f;
    float v = src_velocity[idx] + (avg - h) * speed;
    dst_velocity[idx] = v;
    dst_height[idx] = (h + v) * damping;
}`

// OpenCLIntegrator runs the wave step on an OpenCL device. Each call uploads
// the source grid, runs the kernel and blocks until the destination grid has
// been read back, so HeightField sees a fully committed buffer before swapping.
type OpenCLIntegrator struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	srcHeight   *cl.MemObject
	srcVelocity *cl.MemObject
	dstHeight   *cl.MemObject
	dstVelocity *cl.MemObject

	size       int
	deviceName string
}

// NewOpenCLIntegrator picks the first GPU device, falling back to a CPU device.
// Buffers are allocated lazily on the first Integrate call.
func NewOpenCLIntegrator() (Integrator, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}

	device := firstDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = firstDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	o := &OpenCLIntegrator{context: context, deviceName: device.Name()}

	o.queue, err = context.CreateCommandQueue(device, 0)
	if err != nil {
		o.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	o.program, err = context.CreateProgramWithSource([]string{waveKernelSource})
	if err != nil {
		o.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := o.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		o.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	o.kernel, err = o.program.CreateKernel("wave_step")
	if err != nil {
		o.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return o, nil
}

func firstDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// Name implements Integrator.
func (o *OpenCLIntegrator) Name() string { return BackendOpenCL }

// DeviceName returns the OpenCL device the kernel runs on.
func (o *OpenCLIntegrator) DeviceName() string { return o.deviceName }

func (o *OpenCLIntegrator) ensureBuffers(size int) error {
	if o.size == size && o.srcHeight != nil {
		return nil
	}
	o.releaseBuffers()

	byteSize := size * size * int(unsafe.Sizeof(float32(0)))
	var err error
	if o.srcHeight, err = o.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating source height buffer: %w", err)
	}
	if o.srcVelocity, err = o.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating source velocity buffer: %w", err)
	}
	if o.dstHeight, err = o.context.CreateEmptyBuffer(cl.MemWriteOnly, byteSize); err != nil {
		return fmt.Errorf("allocating destination height buffer: %w", err)
	}
	if o.dstVelocity, err = o.context.CreateEmptyBuffer(cl.MemWriteOnly, byteSize); err != nil {
		return fmt.Errorf("allocating destination velocity buffer: %w", err)
	}
	o.size = size
	return nil
}

// Integrate implements Integrator.
func (o *OpenCLIntegrator) Integrate(dst, src *Grid, damping, speed float32) error {
	if dst.Size != src.Size {
		return fmt.Errorf("grid size mismatch: dst %d, src %d", dst.Size, src.Size)
	}
	if err := o.ensureBuffers(src.Size); err != nil {
		return err
	}

	if err := o.kernel.SetArgs(
		int32(src.Size),
		damping,
		speed,
		o.srcHeight,
		o.srcVelocity,
		o.dstHeight,
		o.dstVelocity,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}

	if _, err := o.queue.EnqueueWriteBufferFloat32(o.srcHeight, false, 0, src.Height, nil); err != nil {
		return fmt.Errorf("writing height buffer: %w", err)
	}
	if _, err := o.queue.EnqueueWriteBufferFloat32(o.srcVelocity, false, 0, src.Velocity, nil); err != nil {
		return fmt.Errorf("writing velocity buffer: %w", err)
	}
	if _, err := o.queue.EnqueueNDRangeKernel(o.kernel, nil, []int{src.Size * src.Size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := o.queue.EnqueueReadBufferFloat32(o.dstHeight, true, 0, dst.Height, nil); err != nil {
		return fmt.Errorf("reading height buffer: %w", err)
	}
	if _, err := o.queue.EnqueueReadBufferFloat32(o.dstVelocity, true, 0, dst.Velocity, nil); err != nil {
		return fmt.Errorf("reading velocity buffer: %w", err)
	}
	return nil
}

func (o *OpenCLIntegrator) releaseBuffers() {
	for _, b := range []**cl.MemObject{&o.srcHeight, &o.srcVelocity, &o.dstHeight, &o.dstVelocity} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	o.size = 0
}

// Close implements Integrator.
func (o *OpenCLIntegrator) Close() error {
	o.releaseBuffers()
	if o.kernel != nil {
		o.kernel.Release()
		o.kernel = nil
	}
	if o.program != nil {
		o.program.Release()
		o.program = nil
	}
	if o.queue != nil {
		o.queue.Release()
		o.queue = nil
	}
	if o.context != nil {
		o.context.Release()
		o.context = nil
	}
	return nil
}
