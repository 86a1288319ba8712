package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/guda-wmma/wmma"
)

func TestCompareEqual(t *testing.T) {
	want := []float32{1, 2, 3, 4, 5, 6}
	got := append([]float32(nil), want...)
	require.NoError(t, CompareEqual("A", want, got, 2, 3, 3, wmma.MemRowMajor))

	// Element (1, 0) in column-major with ld 2 sits at offset 1.
	got[1] = -1
	err := CompareEqual("A", want, got, 2, 3, 2, wmma.MemColMajor)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Count)
	assert.Equal(t, Mismatch{Row: 1, Col: 0, Want: "2", Got: "-1"}, mismatch.First[0])
	assert.Equal(t, "matrix A: 1 elements differ; (1, 0) want 2 got -1", err.Error())
}

func TestCompareEqualCapsReport(t *testing.T) {
	want := make([]int32, 64)
	got := make([]int32, 64)
	for i := range got {
		got[i] = 1
	}
	err := CompareEqual("B", want, got, 8, 8, 8, wmma.MemRowMajor)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 64, mismatch.Count)
	assert.Len(t, mismatch.First, maxReported)
	assert.Contains(t, err.Error(), "; ...")

	assert.Error(t, CompareEqual("B", want, got[:10], 8, 8, 8, wmma.MemRowMajor))
}
