package guda

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// launchInternal implements the core kernel execution logic
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	stream *Stream,
	args ...interface{},
) error {
	if grid.X < 0 || grid.Y < 0 || grid.Z < 0 {
		return NewInvalidArgErrorf("Launch", "negative grid dimensions %v", grid)
	}
	if block.X <= 0 || block.Y <= 0 || block.Z <= 0 {
		return NewInvalidArgErrorf("Launch", "block dimensions must be positive, got %v", block)
	}

	// Calculate total work items
	gridSize := grid.Size()
	blockSize := block.Size()

	// Handle edge case where grid size is zero
	if gridSize == 0 {
		// Submit an empty task to maintain stream ordering
		stream.Submit(func() error { return nil })
		return nil
	}

	// Determine parallelism strategy
	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Each worker processes a contiguous range of blocks
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	stream.Submit(func() error {
		var g errgroup.Group
		g.SetLimit(numWorkers)

		for startBlock := 0; startBlock < gridSize; startBlock += blocksPerWorker {
			endBlock := min(startBlock+blocksPerWorker, gridSize)
			g.Go(func() error {
				return runBlocks(kernelFunc, grid, block, blockSize, startBlock, endBlock, args)
			})
		}

		return g.Wait()
	})

	return nil
}

// runBlocks executes blocks [start, end). Threads within a block run
// sequentially. A panic in the kernel is the CPU analogue of a device fault:
// the remaining threads of this worker are abandoned and the fault is
// reported as an execution error.
func runBlocks(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	blockSize, start, end int,
	args []interface{},
) (err error) {
	var tid ThreadID
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = NewExecutionError("Launch",
				fmt.Sprintf("kernel fault in block %v thread %v", tid.BlockIdx, tid.ThreadIdx), cause)
		}
	}()

	for blockID := start; blockID < end; blockID++ {
		blockIdx := linearTo3D(blockID, grid)
		for threadID := 0; threadID < blockSize; threadID++ {
			tid = ThreadID{
				BlockIdx:  blockIdx,
				ThreadIdx: linearTo3D(threadID, block),
				BlockDim:  block,
				GridDim:   grid,
			}
			kernelFunc(tid, args...)
		}
	}
	return nil
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
