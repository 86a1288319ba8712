package wmma

import (
	"encoding/binary"
	"unsafe"

	guda "github.com/LynnColeArt/guda-wmma"
)

// Vector is a lane's fixed-length register storage.
type Vector[T Element] struct {
	data []T
}

// NewVector returns zeroed storage for n elements.
func NewVector[T Element](n uint32) Vector[T] {
	return Vector[T]{data: make([]T, n)}
}

// Len returns the number of elements.
func (v *Vector[T]) Len() uint32 {
	return uint32(len(v.data))
}

// Data returns the elements. The slice aliases the storage.
func (v *Vector[T]) Data() []T {
	return v.data
}

// Iterator returns an iterator over consecutive width-element views.
func (v *Vector[T]) Iterator(width uint32) VectorIterator[T] {
	return VectorIterator[T]{
		data:  v.data,
		width: width,
		rng:   uint32(len(v.data)) / width,
	}
}

// VectorIterator walks a Vector in chunks of a fixed width. Range is the
// number of chunks; Index is the position of the current chunk.
type VectorIterator[T Element] struct {
	data  []T
	width uint32
	index uint32
	rng   uint32
}

// Range returns the number of chunks the iterator visits.
func (it *VectorIterator[T]) Range() uint32 { return it.rng }

// Index returns the current chunk.
func (it *VectorIterator[T]) Index() uint32 { return it.index }

// Valid reports whether the iterator points at a chunk.
func (it *VectorIterator[T]) Valid() bool { return it.index < it.rng }

// Next advances to the next chunk.
func (it *VectorIterator[T]) Next() { it.index++ }

// Get returns the current chunk. The slice aliases the vector's storage.
func (it *VectorIterator[T]) Get() []T {
	start := it.index * it.width
	return it.data[start : start+it.width : start+it.width]
}

// Pack returns the packed 32-bit register image of v: 16-bit elements pack
// two per register, 8-bit elements four, and 64-bit elements span two
// registers. Byte order is the host's.
func Pack[T Element](v []T) []uint32 {
	raw := asBytes(v)
	regs := make([]uint32, len(raw)/guda.RegisterBytes)
	for i := range regs {
		regs[i] = binary.NativeEndian.Uint32(raw[i*guda.RegisterBytes:])
	}
	return regs
}

// Unpack writes a register image produced by Pack back into v.
func Unpack[T Element](v []T, regs []uint32) {
	raw := asBytes(v)
	for i := range regs {
		binary.NativeEndian.PutUint32(raw[i*guda.RegisterBytes:], regs[i])
	}
}

func asBytes[T Element](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(v))), len(v)*int(SizeOf[T]()))
}
