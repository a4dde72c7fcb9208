// Package guda runs CUDA-style kernels on the CPU.
//
// Kernels are ordinary Go functions launched over a grid of blocks. Two
// launch modes exist:
//
//   - Launch runs elementwise kernels. Threads inside a block execute
//     sequentially and never coordinate, which keeps map-style kernels cheap.
//   - LaunchCooperative gives every thread its own goroutine and lets the
//     threads of one block share scratch memory and meet at a barrier, the
//     way __shared__ memory and __syncthreads() work on a GPU.
//
// Example usage:
//
//	ctx := guda.NewContext()
//	defer ctx.Destroy()
//
//	out := make([]float64, 4)
//	ctx.LaunchCooperative(func(tid guda.ThreadID, blk *guda.Block) {
//		blk.Shared[tid.Thread()] = 1
//		blk.Sync()
//		if tid.Thread() == 0 {
//			out[tid.Block()] = blk.Shared[0] + blk.Shared[1]
//		}
//	}, guda.Dim3{X: 4}, guda.Dim3{X: 2})
//	if err := ctx.Synchronize(); err != nil {
//		log.Fatal(err)
//	}
package guda

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. In GUDA, this is the CPU with its
// cores and available memory.
type Device struct {
	ID         int      // Unique device identifier
	Name       string   // Human-readable device name
	TotalMem   uint64   // Total available memory in bytes
	NumCores   int      // Number of CPU cores
	MaxThreads int      // Maximum concurrent threads
	Features   []string // SIMD extensions reported by the CPU
}

// Context manages device resources, buffer allocation and stream execution.
// A Context should be destroyed when no longer needed.
type Context struct {
	device        *Device
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	buffers       *BufferPool
	defaultStream *Stream
	workers       int
}

// Option configures a Context.
type Option func(*Context)

// WithWorkers bounds the number of blocks executed concurrently.
func WithWorkers(n int) Option {
	return func(ctx *Context) {
		if n > 0 {
			ctx.workers = n
		}
	}
}

// Dim3 represents 3D dimensions for grid and block configurations.
// A zero component is treated as 1.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a thread's position within the execution hierarchy.
// It provides the same indexing semantics as CUDA's built-in variables:
// blockIdx, threadIdx, blockDim, and gridDim.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// KernelFunc is an elementwise kernel.
type KernelFunc func(tid ThreadID)

// BlockKernelFunc is a cooperative kernel. All threads of one block receive
// the same *Block.
type BlockKernelFunc func(tid ThreadID, blk *Block)

var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultDevice = probeDevice()
		defaultContext = NewContext()
	})
}

func probeDevice() *Device {
	return &Device{
		ID:         0,
		Name:       "CPU",
		TotalMem:   getSystemMemory(),
		NumCores:   runtime.NumCPU(),
		MaxThreads: runtime.NumCPU() * 2, // Hyperthreading
		Features:   cpuFeatureNames(),
	}
}

// NewContext creates an execution context with its own default stream and
// buffer pool.
func NewContext(opts ...Option) *Context {
	dev := defaultDevice
	if dev == nil {
		dev = probeDevice()
	}
	ctx := &Context{
		device:  dev,
		streams: make(map[int]*Stream),
		buffers: NewBufferPool(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	ctx.defaultStream = ctx.CreateStream()
	return ctx
}

// Default returns the process-wide context.
func Default() *Context {
	return defaultContext
}

// Launch executes an elementwise kernel on the default context.
func Launch(fn KernelFunc, grid, block Dim3) error {
	return defaultContext.Launch(fn, grid, block)
}

// LaunchCooperative executes a cooperative kernel on the default context.
func LaunchCooperative(fn BlockKernelFunc, grid, block Dim3) error {
	return defaultContext.LaunchCooperative(fn, grid, block)
}

// Synchronize waits for all work on the default context.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the current device information.
// In GUDA, this always returns the CPU device.
func GetDevice() *Device {
	return defaultDevice
}

// GetDeviceCount returns the number of available devices.
func GetDeviceCount() int {
	return 1 // Only CPU
}

// Device returns the device the context runs on.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// Buffers returns the context's buffer pool.
func (ctx *Context) Buffers() *BufferPool {
	return ctx.buffers
}

// DefaultStream returns the stream used by Context.Launch.
func (ctx *Context) DefaultStream() *Stream {
	return ctx.defaultStream
}

// CreateStream creates a new execution stream.
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		ctx:   ctx,
		tasks: make(chan func() error, 1000),
		done:  make(chan struct{}),
	}

	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// DestroyStream drains s, stops its worker and forgets it. The default
// stream and streams of other contexts are rejected.
func (ctx *Context) DestroyStream(s *Stream) error {
	if s == nil || s == ctx.defaultStream {
		return NewInvalidArgError("DestroyStream", "nil or default stream")
	}
	ctx.mu.Lock()
	if ctx.streams[s.id] != s {
		ctx.mu.Unlock()
		return NewInvalidArgError("DestroyStream", fmt.Sprintf("stream %d not owned by context", s.id))
	}
	delete(ctx.streams, s.id)
	ctx.mu.Unlock()

	s.close()
	return nil
}

// Launch executes an elementwise kernel on the default stream.
func (ctx *Context) Launch(fn KernelFunc, grid, block Dim3) error {
	return ctx.defaultStream.Launch(fn, grid, block)
}

// LaunchCooperative executes a cooperative kernel on the default stream.
func (ctx *Context) LaunchCooperative(fn BlockKernelFunc, grid, block Dim3) error {
	return ctx.defaultStream.LaunchCooperative(fn, grid, block)
}

// Synchronize waits for all streams to complete and returns the first
// kernel error any of them recorded.
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	var first error
	for _, s := range streams {
		if err := s.Synchronize(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Destroy drains and stops every stream owned by the context.
func (ctx *Context) Destroy() {
	ctx.mu.Lock()
	streams := ctx.streams
	ctx.streams = make(map[int]*Stream)
	ctx.mu.Unlock()

	for _, s := range streams {
		s.close()
	}
}

// Global returns the global X index of the thread.
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// Thread returns the linear thread index within its block.
func (tid ThreadID) Thread() int {
	return (tid.ThreadIdx.Z*tid.BlockDim.Y+tid.ThreadIdx.Y)*tid.BlockDim.X + tid.ThreadIdx.X
}

// Block returns the linear block index within the grid.
func (tid ThreadID) Block() int {
	return (tid.BlockIdx.Z*tid.GridDim.Y+tid.BlockIdx.Y)*tid.GridDim.X + tid.BlockIdx.X
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	d = d.normalize()
	return d.X * d.Y * d.Z
}

func (d Dim3) normalize() Dim3 {
	if d.X == 0 {
		d.X = 1
	}
	if d.Y == 0 {
		d.Y = 1
	}
	if d.Z == 0 {
		d.Z = 1
	}
	return d
}

// Grid1D returns the number of blocks of the given size needed to cover n
// elements.
func Grid1D(n, block int) Dim3 {
	if n <= 0 {
		return Dim3{X: 1}
	}
	return Dim3{X: (n + block - 1) / block}
}
