package wmma

import (
	"github.com/gomlx/exceptions"
)

// OpaqueLoad fills a lane's fragment storage from memory. It visits the same
// coordinates in the same order as the OpaqueStore built from the same
// layout, so a load followed by a store reproduces memory exactly.
type OpaqueLoad[T Element, D DataLayout] struct {
	layout  MatrixLayout
	vw      uint32
	ioCount uint32
}

// NewOpaqueLoad binds a load engine to layout.
func NewOpaqueLoad[T Element, D DataLayout](layout MatrixLayout) (OpaqueLoad[T, D], error) {
	if err := checkEngine[D]("OpaqueLoad", layout); err != nil {
		return OpaqueLoad[T, D]{}, err
	}
	return OpaqueLoad[T, D]{layout: layout, vw: layout.VectorWidth(), ioCount: layout.IOCount()}, nil
}

// Exec loads out from data, the lane's tile origin, with leading dimension ldm.
func (l OpaqueLoad[T, D]) Exec(lane uint32, data []T, out *Vector[T], ldm uint32) {
	var dl D
	it := out.Iterator(l.vw)
	if it.Range() != l.ioCount {
		exceptions.Panicf("OpaqueLoad: storage holds %d vectors, IOCount is %d", it.Range(), l.ioCount)
	}
	checked := BoundsChecks()

	coord := l.layout.BaseOffset(lane)
	for ; it.Valid(); it.Next() {
		offset := dl.FromMatrixCoord(coord, ldm)
		if checked {
			checkTransaction("OpaqueLoad", lane, it.Index(), coord, offset, l.vw, len(data))
		}
		loadVector(it.Get(), data, offset)
		coord = coord.Add(l.layout.IncrementalOffset(it.Index()))
	}
}

func loadVector[T Element](v, data []T, offset int) {
	copy(v, data[offset:offset+len(v)])
}
