package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/guda-wmma/wmma"
)

func TestDescribeFragment(t *testing.T) {
	info, err := DescribeFragment("f16", wmma.MatrixB, 32, 32, 32, wmma.MemColMajor)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), info.Traits.VectorWidth)
	assert.Equal(t, uint32(2), info.Traits.IOCount)
	assert.Equal(t, wmma.AlongCol, info.Layout.Orientation())
	assert.Contains(t, info.Name, "matrix_b<32x32x32 f16")

	info, err = DescribeFragment("f32", wmma.Accumulator, 16, 16, 16, wmma.MemRowMajor, wmma.WithTiling(wmma.TilingInterleaved))
	require.NoError(t, err)
	assert.Equal(t, wmma.TilingInterleaved, info.Layout.Tiling())

	_, err = DescribeFragment("f32", wmma.MatrixA, 16, 16, 16, wmma.LayoutNone)
	assert.Error(t, err)
	_, err = DescribeFragment("q8", wmma.MatrixA, 16, 16, 16, wmma.MemRowMajor)
	assert.Error(t, err)
}
