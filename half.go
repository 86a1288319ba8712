package guda

import (
	"strconv"

	"github.com/x448/float16"
)

// HFloat16 is the HIP __half type: an IEEE 754 binary16 value that is kept
// distinct from float16.Float16 so both element types can be instantiated.
type HFloat16 uint16

// ToHFloat16 converts float32 to HFloat16, rounding to nearest even.
func ToHFloat16(f float32) HFloat16 {
	return HFloat16(float16.Fromfloat32(f))
}

// Float32 converts HFloat16 to float32
func (h HFloat16) Float32() float32 {
	return float16.Float16(h).Float32()
}

// Half returns the same bits as a float16.Float16.
func (h HFloat16) Half() float16.Float16 {
	return float16.Float16(h)
}

func (h HFloat16) String() string {
	return formatFloat32(h.Float32())
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
