package guda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaneAndWaveIdx(t *testing.T) {
	block := Dim3{X: 256, Y: 2, Z: 1}
	tid := ThreadID{
		BlockIdx:  Dim3{X: 1, Y: 3, Z: 0},
		ThreadIdx: Dim3{X: 130, Y: 1, Z: 0},
		BlockDim:  block,
		GridDim:   Dim3{X: 2, Y: 4, Z: 1},
	}

	assert.Equal(t, uint32(2), tid.Lane())
	assert.Equal(t, Dim3{X: 2, Y: 1, Z: 0}, tid.WaveIdx())

	x, y := tid.GlobalWave()
	assert.Equal(t, 1*4+2, x)
	assert.Equal(t, 3*2+1, y)
	assert.Equal(t, 8, WavesPerBlock(block))
}

func TestValidateWaveBlock(t *testing.T) {
	tests := []struct {
		block Dim3
		ok    bool
	}{
		{Dim3{X: 64, Y: 1, Z: 1}, true},
		{Dim3{X: 512, Y: 2, Z: 1}, true},
		{Dim3{X: 64, Y: 16, Z: 1}, true},
		{Dim3{X: 32, Y: 1, Z: 1}, false},
		{Dim3{X: 64, Y: 0, Z: 1}, false},
		{Dim3{X: 1024, Y: 2, Z: 1}, false},
	}
	for _, tt := range tests {
		err := ValidateWaveBlock(tt.block)
		if tt.ok {
			assert.NoError(t, err, "block %v", tt.block)
		} else {
			assert.True(t, IsInvalidArgError(err), "block %v: %v", tt.block, err)
		}
	}
}
