package wmma

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guda "github.com/LynnColeArt/guda-wmma"
)

// roundTripEngines loads every lane's share of src and stores it to a fresh
// buffer of the same size.
func roundTripEngines[T Element, D DataLayout](t *testing.T, l MatrixLayout, src []T, ldm uint32) []T {
	t.Helper()
	load, err := NewOpaqueLoad[T, D](l)
	require.NoError(t, err)
	store, err := NewOpaqueStore[T, D](l)
	require.NoError(t, err)

	dst := make([]T, len(src))
	for lane := uint32(0); lane < WaveSize; lane++ {
		v := NewVector[T](l.IOCount() * l.VectorWidth())
		load.Exec(lane, src, &v, ldm)
		store.Exec(lane, dst, &v, ldm)
	}
	return dst
}

func TestOpaqueRoundTripPadded(t *testing.T) {
	const rows, cols, pad = 32, 32, 8

	t.Run("row_major", func(t *testing.T) {
		l := MustMatrixLayout(TilingLinear, AlongRow, rows, cols, MustIOTraits(rows, cols, 4, 4))
		ld := uint32(cols + pad)
		src := make([]float32, rows*ld)
		for i := range src {
			src[i] = float32(i + 1)
		}
		dst := roundTripEngines[float32, RowMajor](t, l, src, ld)
		for r := uint32(0); r < rows; r++ {
			for c := uint32(0); c < ld; c++ {
				off := RowMajor{}.FromMatrixCoord(Coord{Row: r, Col: c}, ld)
				if c < cols {
					require.Equal(t, src[off], dst[off], "(%d, %d)", r, c)
				} else {
					require.Zero(t, dst[off], "padding (%d, %d) was written", r, c)
				}
			}
		}
	})

	t.Run("col_major", func(t *testing.T) {
		l := MustMatrixLayout(TilingInterleaved, AlongCol, rows, cols, MustIOTraits(rows, cols, 4, 2))
		ld := uint32(rows + pad)
		src := make([]int32, cols*ld)
		for i := range src {
			src[i] = int32(i + 1)
		}
		dst := roundTripEngines[int32, ColMajor](t, l, src, ld)
		for c := uint32(0); c < cols; c++ {
			for r := uint32(0); r < ld; r++ {
				off := ColMajor{}.FromMatrixCoord(Coord{Row: r, Col: c}, ld)
				if r < rows {
					require.Equal(t, src[off], dst[off], "(%d, %d)", r, c)
				} else {
					require.Zero(t, dst[off], "padding (%d, %d) was written", r, c)
				}
			}
		}
	})
}

// A load places element j of transaction i at position i*VectorWidth+j of
// the lane's storage.
func TestOpaqueLoadStorageOrder(t *testing.T) {
	l := MustMatrixLayout(TilingLinear, AlongRow, 16, 16, MustIOTraits(16, 16, 4, 2))
	load, err := NewOpaqueLoad[float32, RowMajor](l)
	require.NoError(t, err)

	src := make([]float32, 16*16)
	for i := range src {
		src[i] = float32(i)
	}
	for _, lane := range []uint32{0, 5, 63} {
		v := NewVector[float32](l.IOCount() * l.VectorWidth())
		load.Exec(lane, src, &v, 16)
		for k, c := range ElementCoords(l, lane) {
			assert.Equal(t, float32(c.Row*16+c.Col), v.Data()[k], "lane %d element %d", lane, k)
		}
	}
}

func TestOpaqueRejectsMismatchedOrientation(t *testing.T) {
	l := MustMatrixLayout(TilingLinear, AlongRow, 16, 16, MustIOTraits(16, 16, 4, 4))
	_, err := NewOpaqueStore[float32, ColMajor](l)
	require.Error(t, err)
	assert.True(t, guda.IsInvalidArgError(err))
	_, err = NewOpaqueLoad[float32, ColMajor](l)
	assert.Error(t, err)

	// Scalar transactions have no contiguity requirement.
	scalar := MustMatrixLayout(TilingLinear, AlongRow, 16, 16, MustIOTraits(16, 16, 4, 1))
	_, err = NewOpaqueStore[float32, ColMajor](scalar)
	assert.NoError(t, err)

	_, err = NewOpaqueLoad[float32, RowMajor](nil)
	assert.Error(t, err)
}

func TestOpaqueExecStorageSize(t *testing.T) {
	l := MustMatrixLayout(TilingLinear, AlongRow, 16, 16, MustIOTraits(16, 16, 4, 4))
	store, err := NewOpaqueStore[float32, RowMajor](l)
	require.NoError(t, err)

	v := NewVector[float32](8)
	data := make([]float32, 256)
	assert.Panics(t, func() { store.Exec(0, data, &v, 16) })
}

func TestBoundsChecks(t *testing.T) {
	l := MustMatrixLayout(TilingLinear, AlongRow, 16, 16, MustIOTraits(16, 16, 4, 4))
	store, err := NewOpaqueStore[float32, RowMajor](l)
	require.NoError(t, err)
	v := NewVector[float32](4)
	short := make([]float32, 100)

	require.False(t, BoundsChecks())
	SetBoundsChecks(true)
	defer SetBoundsChecks(false)

	err = exceptions.TryCatch[error](func() { store.Exec(63, short, &v, 16) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpaqueStore: lane 63 iteration 0")

	// Lane 0 stays inside the buffer.
	assert.NotPanics(t, func() { store.Exec(0, short, &v, 16) })
}
