package guda

// Wave geometry. Lanes are numbered along threadIdx.x, so a block whose X
// dimension is a multiple of WaveSize holds BlockDim.X/WaveSize waves per row
// of Y.

// Lane returns the thread's position within its wave.
func (tid ThreadID) Lane() uint32 {
	return uint32(tid.ThreadIdx.X % WaveSize)
}

// WaveIdx returns the index of the thread's wave within its block.
func (tid ThreadID) WaveIdx() Dim3 {
	return Dim3{X: tid.ThreadIdx.X / WaveSize, Y: tid.ThreadIdx.Y, Z: tid.ThreadIdx.Z}
}

// GlobalWave returns the wave's (x, y) coordinate in the whole grid.
// X counts waves along blockDim.x, Y counts rows of threads along blockDim.y.
func (tid ThreadID) GlobalWave() (x, y int) {
	wavesPerBlockX := tid.BlockDim.X / WaveSize
	x = tid.BlockIdx.X*wavesPerBlockX + tid.ThreadIdx.X/WaveSize
	y = tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
	return x, y
}

// WavesPerBlock returns the number of waves a block of the given shape holds.
func WavesPerBlock(block Dim3) int {
	return block.X / WaveSize * block.Y * block.Z
}

// ValidateWaveBlock checks that a block can be split into whole waves.
func ValidateWaveBlock(block Dim3) error {
	if block.X <= 0 || block.Y <= 0 || block.Z <= 0 {
		return NewInvalidArgErrorf("Launch", "block dimensions must be positive, got %v", block)
	}
	if block.X%WaveSize != 0 {
		return ErrPartialWave
	}
	if block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgErrorf("Launch", "block %v exceeds %d threads", block, MaxThreadsPerBlock)
	}
	return nil
}
