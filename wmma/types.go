package wmma

import (
	"fmt"
	"unsafe"

	"github.com/x448/float16"

	guda "github.com/LynnColeArt/guda-wmma"
)

// Element is the set of data types a fragment can hold. The 16-bit floating
// point types (float16.Float16, guda.HFloat16, guda.BFloat16) are all
// uint16-backed.
type Element interface {
	~float32 | ~float64 | ~int8 | ~int32 | ~uint16
}

// WaveSize is the number of lanes that cooperatively own a fragment.
const WaveSize = guda.WaveSize

// Coord is a (row, col) position inside a fragment tile.
type Coord struct {
	Row, Col uint32
}

// Offset is a coordinate delta in tile space. Increments may step backwards
// along one axis when a lane wraps to the next line of the tile.
type Offset struct {
	Row, Col int32
}

// Add applies an offset to a coordinate.
func (c Coord) Add(o Offset) Coord {
	return Coord{
		Row: uint32(int64(c.Row) + int64(o.Row)),
		Col: uint32(int64(c.Col) + int64(o.Col)),
	}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

func (o Offset) String() string {
	return fmt.Sprintf("(%+d, %+d)", o.Row, o.Col)
}

// SizeOf returns the width of T in bytes.
func SizeOf[T Element]() uint32 {
	var zero T
	return uint32(unsafe.Sizeof(zero))
}

// TypeName returns the short name used in logs and reports for T.
func TypeName[T Element]() string {
	var zero T
	switch any(zero).(type) {
	case float32:
		return "f32"
	case float64:
		return "f64"
	case float16.Float16:
		return "f16"
	case guda.HFloat16:
		return "h16"
	case guda.BFloat16:
		return "bf16"
	case int8:
		return "i8"
	case int32:
		return "i32"
	default:
		return fmt.Sprintf("%T", zero)
	}
}
