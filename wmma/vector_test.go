package wmma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestVectorIterator(t *testing.T) {
	v := NewVector[int32](8)
	require.Equal(t, uint32(8), v.Len())

	it := v.Iterator(2)
	require.Equal(t, uint32(4), it.Range())
	for ; it.Valid(); it.Next() {
		chunk := it.Get()
		require.Len(t, chunk, 2)
		chunk[0] = int32(it.Index())
		chunk[1] = -int32(it.Index())
	}
	assert.Equal(t, []int32{0, 0, 1, -1, 2, -2, 3, -3}, v.Data())

	// Views are capped at their width.
	it = v.Iterator(2)
	assert.Equal(t, 2, cap(it.Get()))
}

func TestPackUnpack(t *testing.T) {
	halves := []float16.Float16{float16.Fromfloat32(1), float16.Fromfloat32(-2), float16.Fromfloat32(0.5), float16.Fromfloat32(3)}
	regs := Pack(halves)
	require.Len(t, regs, 2)

	out := make([]float16.Float16, len(halves))
	Unpack(out, regs)
	assert.Equal(t, halves, out)

	bytes := []int8{1, 2, 3, 4, 5, 6, 7, 8}
	assert.Len(t, Pack(bytes), 2)

	doubles := []float64{1, 2}
	assert.Len(t, Pack(doubles), 4)

	assert.Empty(t, Pack([]float32(nil)))
}
