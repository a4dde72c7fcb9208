// Package guda configuration constants
package guda

// Thread and block dimensions
const (
	// Default block size for elementwise kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024

	// Default block size for kernels that race threads for one result
	DefaultRaceBlockSize = 1024
)

// Buffer pool parameters
const (
	// Smallest size class handed out by the pool, in elements
	MinBufferElems = 16

	// Free buffers kept per size class
	FreeListThreshold = 64
)

// Numerical constants
const (
	// Machine epsilon for float64
	Float64Epsilon = 2.220446049250313e-16

	// Maximum ULP difference for float64 comparisons
	MaxULPDiff = 4
)

// Reported when the host does not expose its memory size
const fallbackSystemMemory = 16 * 1024 * 1024 * 1024
