package wmma

import (
	"github.com/gomlx/exceptions"

	guda "github.com/LynnColeArt/guda-wmma"
)

// OpaqueStore writes a lane's fragment storage to memory with IOCount
// vector transactions, placed by a MatrixLayout and linearized by D.
type OpaqueStore[T Element, D DataLayout] struct {
	layout  MatrixLayout
	vw      uint32
	ioCount uint32
}

// NewOpaqueStore binds a store engine to layout. Vectors wider than one
// element must run along D's contiguous axis.
func NewOpaqueStore[T Element, D DataLayout](layout MatrixLayout) (OpaqueStore[T, D], error) {
	if err := checkEngine[D]("OpaqueStore", layout); err != nil {
		return OpaqueStore[T, D]{}, err
	}
	return OpaqueStore[T, D]{layout: layout, vw: layout.VectorWidth(), ioCount: layout.IOCount()}, nil
}

// Exec stores in to data, the lane's tile origin, with leading dimension ldm.
func (s OpaqueStore[T, D]) Exec(lane uint32, data []T, in *Vector[T], ldm uint32) {
	var dl D
	it := in.Iterator(s.vw)
	if it.Range() != s.ioCount {
		exceptions.Panicf("OpaqueStore: storage holds %d vectors, IOCount is %d", it.Range(), s.ioCount)
	}
	checked := BoundsChecks()

	// Arrange the lane at its starting coordinate and walk the tile.
	coord := s.layout.BaseOffset(lane)
	for ; it.Valid(); it.Next() {
		offset := dl.FromMatrixCoord(coord, ldm)
		if checked {
			checkTransaction("OpaqueStore", lane, it.Index(), coord, offset, s.vw, len(data))
		}
		storeVector(data, it.Get(), offset)
		coord = coord.Add(s.layout.IncrementalOffset(it.Index()))
	}
}

// storeVector is one vector transaction: VectorWidth contiguous elements.
func storeVector[T Element](data, v []T, offset int) {
	copy(data[offset:offset+len(v)], v)
}

func checkEngine[D DataLayout](op string, layout MatrixLayout) error {
	var dl D
	if layout == nil {
		return guda.NewInvalidArgError(op, "nil matrix layout")
	}
	if layout.VectorWidth() > 1 && layout.Orientation() != dl.Contiguous() {
		return guda.NewInvalidArgErrorf(op, "%d-wide vectors %s are not contiguous in %s memory",
			layout.VectorWidth(), layout.Orientation(), dl.Layout())
	}
	return nil
}
