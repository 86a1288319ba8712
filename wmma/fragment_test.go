package wmma

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	guda "github.com/LynnColeArt/guda-wmma"
)

// pattern gives element i the little-endian bits of (i+1)>>shift. With
// shift 0 every element of a tile up to 64K elements is distinct for types of
// 16 bits or more; 8-bit types need a second pass with shift 8.
func pattern[T Element](n int, shift uint) []T {
	data := make([]T, n)
	var bits [8]byte
	for i := range data {
		binary.LittleEndian.PutUint64(bits[:], uint64(i+1)>>shift)
		copy(asBytes(data[i:i+1]), bits[:])
	}
	return data
}

// roundTrip loads and stores a whole tile through fragments, one lane at a
// time, and checks the destination equals the source.
func roundTrip[T Element](t *testing.T, use Use, m, n, k uint32, layout Layout, tiling Tiling) {
	t.Helper()
	ft, err := NewFragmentType[T](use, m, n, k, layout, WithTiling(tiling))
	require.NoError(t, err)

	rows, cols := ft.Rows(), ft.Cols()
	ld := layout.LeadingDim(rows, cols)
	shifts := []uint{0}
	if SizeOf[T]() == 1 {
		shifts = append(shifts, 8)
	}
	for _, shift := range shifts {
		src := pattern[T](int(rows*cols), shift)
		dst := make([]T, len(src))
		for lane := uint32(0); lane < WaveSize; lane++ {
			frag := ft.New()
			require.NoError(t, LoadMatrixSync(lane, frag, src, ld))
			require.NoError(t, StoreMatrixSync(lane, dst, frag, ld))
		}
		require.Equal(t, src, dst, "%s shift %d", ft, shift)
	}
}

func TestPatternIsDistinct(t *testing.T) {
	seen := map[float16.Float16]bool{}
	for _, v := range pattern[float16.Float16](64*64, 0) {
		require.False(t, seen[v], "repeated %v", v)
		seen[v] = true
	}

	low, high := pattern[int8](64*64, 0), pattern[int8](64*64, 8)
	pairs := map[[2]int8]bool{}
	for i := range low {
		p := [2]int8{low[i], high[i]}
		require.False(t, pairs[p], "repeated %v", p)
		pairs[p] = true
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	for _, use := range []Use{MatrixA, MatrixB, Accumulator} {
		for _, layout := range []Layout{MemRowMajor, MemColMajor} {
			for _, tiling := range []Tiling{TilingLinear, TilingInterleaved} {
				for _, mnk := range [][3]uint32{{16, 16, 16}, {32, 32, 32}, {64, 64, 64}, {32, 16, 64}} {
					name := fmt.Sprintf("%s/%s/%s/%dx%dx%d", use, layout, tiling, mnk[0], mnk[1], mnk[2])
					t.Run(name, func(t *testing.T) {
						roundTrip[float32](t, use, mnk[0], mnk[1], mnk[2], layout, tiling)
						roundTrip[float16.Float16](t, use, mnk[0], mnk[1], mnk[2], layout, tiling)
						roundTrip[guda.BFloat16](t, use, mnk[0], mnk[1], mnk[2], layout, tiling)
						roundTrip[float64](t, use, mnk[0], mnk[1], mnk[2], layout, tiling)
						roundTrip[int8](t, use, mnk[0], mnk[1], mnk[2], layout, tiling)
						roundTrip[int32](t, use, mnk[0], mnk[1], mnk[2], layout, tiling)
					})
				}
			}
		}
	}
}

func TestDefaultVectorWidth(t *testing.T) {
	tests := []struct {
		name string
		ft   interface{ Traits(Layout) (IOTraits, bool) }
		vw   uint32
	}{
		{"f32 16", MustFragmentType[float32](Accumulator, 16, 16, 16, MemRowMajor), 4},
		{"f64 16", MustFragmentType[float64](Accumulator, 16, 16, 16, MemRowMajor), 2},
		{"f16 16", MustFragmentType[float16.Float16](Accumulator, 16, 16, 16, MemRowMajor), 4},
		{"i8 16", MustFragmentType[int8](Accumulator, 16, 16, 16, MemRowMajor), 4},
		{"f16 64", MustFragmentType[float16.Float16](Accumulator, 64, 64, 64, MemRowMajor), 8},
		{"i8 64", MustFragmentType[int8](Accumulator, 64, 64, 64, MemRowMajor), 16},
		{"f32 64", MustFragmentType[float32](MatrixA, 64, 64, 64, MemColMajor), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traits, ok := tt.ft.Traits(MemRowMajor)
			if !ok {
				traits, ok = tt.ft.Traits(MemColMajor)
			}
			require.True(t, ok)
			assert.Equal(t, tt.vw, traits.VectorWidth)
		})
	}

	ft := MustFragmentType[float32](Accumulator, 16, 16, 16, MemRowMajor, WithVectorWidth(1))
	traits, _ := ft.Traits(MemRowMajor)
	assert.Equal(t, uint32(4), traits.IOCount)

	_, err := NewFragmentType[float32](Accumulator, 16, 16, 16, MemRowMajor, WithVectorWidth(8))
	assert.Error(t, err)

	_, err = NewFragmentType[float32](Accumulator, 64, 64, 64, MemRowMajor, WithVectorWidth(1<<26))
	assert.True(t, guda.IsInvalidArgError(err), "got %v", err)
}

func TestFragmentTypeDims(t *testing.T) {
	a := MustFragmentType[float32](MatrixA, 32, 16, 64, MemRowMajor)
	assert.Equal(t, [2]uint32{32, 64}, [2]uint32{a.Rows(), a.Cols()})
	b := MustFragmentType[float32](MatrixB, 32, 16, 64, MemRowMajor)
	assert.Equal(t, [2]uint32{64, 16}, [2]uint32{b.Rows(), b.Cols()})
	c := MustFragmentType[float32](Accumulator, 32, 16, 64, MemRowMajor)
	assert.Equal(t, [2]uint32{32, 16}, [2]uint32{c.Rows(), c.Cols()})
	assert.Equal(t, [3]uint32{32, 16, 64}, c.BlockMNK())
	assert.Equal(t, uint32(32*16/WaveSize), c.UnpackedSize())
	assert.Len(t, c.New().Elements(), 8)

	assert.Contains(t, a.String(), "matrix_a<32x16x64 f32 row_major linear>")
}

func TestFragmentTypeErrors(t *testing.T) {
	_, err := NewFragmentType[float32](MatrixA, 16, 16, 16, LayoutNone)
	assert.True(t, guda.IsInvalidArgError(err), "got %v", err)
	_, err = NewFragmentType[float32](MatrixB, 16, 16, 16, LayoutNone)
	assert.Error(t, err)
	_, err = NewFragmentType[float32](Accumulator, 0, 16, 16, MemRowMajor)
	assert.Error(t, err)
	_, err = NewFragmentType[float32](Use(9), 16, 16, 16, MemRowMajor)
	assert.Error(t, err)
	_, err = NewFragmentType[float32](Accumulator, 4, 4, 4, MemRowMajor)
	assert.Error(t, err)
	assert.Panics(t, func() { MustFragmentType[float32](MatrixA, 16, 16, 16, LayoutNone) })
}

func TestAccumulatorLayoutAtUse(t *testing.T) {
	ft := MustFragmentType[float32](Accumulator, 16, 16, 16, LayoutNone)
	rowTraits, ok := ft.Traits(MemRowMajor)
	assert.True(t, ok)
	colTraits, ok := ft.Traits(MemColMajor)
	assert.True(t, ok)
	assert.Equal(t, rowTraits, colTraits)
	assert.Equal(t, uint32(1), rowTraits.VectorWidth)
	assert.Same(t, ft.MatrixLayout(MemRowMajor), ft.MatrixLayout(MemColMajor))

	_, err := NewFragmentType[float32](Accumulator, 16, 16, 16, LayoutNone, WithVectorWidth(4))
	assert.Error(t, err)

	frag := ft.New()
	data := make([]float32, 256)
	assert.Error(t, LoadMatrixSync(0, frag, data, 16))
	assert.Error(t, StoreMatrixSync(0, data, frag, 16))
	assert.Error(t, LoadMatrixSyncLayout(0, frag, data, 16, LayoutNone))

	// Load row-major, store column-major: the tile is transposed in memory.
	src := pattern[float32](256, 0)
	dst := make([]float32, 256)
	for lane := uint32(0); lane < WaveSize; lane++ {
		f := ft.New()
		require.NoError(t, LoadMatrixSyncLayout(lane, f, src, 16, MemRowMajor))
		require.NoError(t, StoreMatrixSyncLayout(lane, dst, f, 16, MemColMajor))
	}
	for r := uint32(0); r < 16; r++ {
		for c := uint32(0); c < 16; c++ {
			require.Equal(t, src[r*16+c], dst[c*16+r], "(%d, %d)", r, c)
		}
	}
}

func TestFragmentLayoutMismatch(t *testing.T) {
	ft := MustFragmentType[float32](MatrixA, 16, 16, 16, MemRowMajor)
	frag := ft.New()
	data := make([]float32, 256)

	err := LoadMatrixSyncLayout(0, frag, data, 16, MemColMajor)
	assert.True(t, guda.IsInvalidArgError(err), "got %v", err)
	assert.Error(t, StoreMatrixSyncLayout(0, data, frag, 16, MemColMajor))
	assert.NoError(t, StoreMatrixSyncLayout(0, data, frag, 16, MemRowMajor))

	assert.Error(t, LoadMatrixSync(WaveSize, frag, data, 16))
	assert.Error(t, StoreMatrixSync(WaveSize, data, frag, 16))
	_, ok := ft.Traits(MemColMajor)
	assert.False(t, ok)
	assert.Nil(t, ft.MatrixLayout(MemColMajor))
}

func TestFillThenStore(t *testing.T) {
	for _, layout := range []Layout{MemRowMajor, MemColMajor} {
		t.Run(layout.String(), func(t *testing.T) {
			ft := MustFragmentType[float16.Float16](Accumulator, 32, 32, 32, LayoutNone)
			value := float16.Fromfloat32(1.5)
			dst := make([]float16.Float16, 32*32)
			for lane := uint32(0); lane < WaveSize; lane++ {
				frag := ft.New()
				FillFragment(frag, value)
				for _, e := range frag.Elements() {
					require.Equal(t, value, e)
				}
				require.NoError(t, StoreMatrixSyncLayout(lane, dst, frag, 32, layout))
			}
			for i, e := range dst {
				require.Equal(t, value, e, "element %d", i)
			}
		})
	}
}

func TestFragmentPacked(t *testing.T) {
	ft := MustFragmentType[guda.BFloat16](MatrixB, 16, 16, 16, MemColMajor)
	frag := ft.New()
	for i := range frag.Elements() {
		frag.Elements()[i] = guda.ToBFloat16(float32(i))
	}
	regs := frag.Packed()
	require.Len(t, regs, 2)

	other := ft.New()
	require.NoError(t, other.SetPacked(regs))
	assert.Equal(t, frag.Elements(), other.Elements())
	assert.Error(t, other.SetPacked(regs[:1]))
	assert.Same(t, ft, other.Type())
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "f32", TypeName[float32]())
	assert.Equal(t, "f16", TypeName[float16.Float16]())
	assert.Equal(t, "h16", TypeName[guda.HFloat16]())
	assert.Equal(t, "bf16", TypeName[guda.BFloat16]())
	assert.Equal(t, "i8", TypeName[int8]())
	assert.Equal(t, uint32(2), SizeOf[guda.BFloat16]())
}

func TestParseUse(t *testing.T) {
	for s, want := range map[string]Use{"a": MatrixA, "matrix_b": MatrixB, "ACC": Accumulator, "c": Accumulator} {
		got, err := ParseUse(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseUse("d")
	assert.Error(t, err)
	assert.Equal(t, "accumulator", Accumulator.String())
}
