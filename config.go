// Package guda configuration constants
package guda

// Wave and block geometry
const (
	// WaveSize is the number of lanes per wave (AMDGCN wave64)
	WaveSize = 64

	// Maximum threads per block (HIP compatibility)
	MaxThreadsPerBlock = 1024

	// MaxVectorBytes is the widest single-lane memory transaction
	// (a dwordx4 load/store)
	MaxVectorBytes = 16

	// RegisterBytes is the width of one packed register
	RegisterBytes = 4
)

// Memory pool parameters
const (
	// Memory alignment for allocations (cache line)
	MemoryAlignment = 64
)
