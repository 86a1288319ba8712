package harness

import (
	"github.com/x448/float16"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

// Generate returns n deterministic values in [0, 1) from a linear
// congruential generator, so that runs are reproducible.
func Generate(n int, seed uint64) []float32 {
	data := make([]float32, n)
	rng := seed
	for i := range data {
		rng = rng*1103515245 + 12345                // Numerical Recipes LCG
		data[i] = float32(rng>>40) / float32(1<<24) // top 24 bits, exact in float32
	}
	return data
}

// FromFloat32 converts f to T, rounding to nearest for the 16-bit float
// types and truncating for integers.
func FromFloat32[T wmma.Element](f float32) T {
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		return any(float16.Fromfloat32(f)).(T)
	case guda.HFloat16:
		return any(guda.ToHFloat16(f)).(T)
	case guda.BFloat16:
		return any(guda.ToBFloat16(f)).(T)
	default:
		return T(f)
	}
}

// PatternRange is the number of distinct integers T represents exactly,
// capped at 1<<16.
func PatternRange[T wmma.Element]() uint32 {
	var zero T
	switch any(zero).(type) {
	case guda.BFloat16:
		return 1 << 8
	case float16.Float16, guda.HFloat16:
		return 1 << 11
	case int8:
		return 1 << 7
	default:
		return 1 << 16
	}
}

// FillPattern returns a rows×cols matrix stored with layout and its natural
// leading dimension. Element (r, c) holds the same integer for every layout,
// drawn from Generate and reduced to the range T represents exactly.
func FillPattern[T wmma.Element](rows, cols uint32, layout wmma.Layout, seed uint64) []T {
	n := int(rows) * int(cols)
	noise := Generate(n, seed)
	scale := float32(PatternRange[T]())
	ld := layout.LeadingDim(rows, cols)

	data := make([]T, n)
	for r := uint32(0); r < rows; r++ {
		for c := uint32(0); c < cols; c++ {
			v := float32(int(noise[int(r)*int(cols)+int(c)] * scale))
			data[layout.Offset(wmma.Coord{Row: r, Col: c}, ld)] = FromFloat32[T](v)
		}
	}
	return data
}
