package guda

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer.
// In GUDA's unified memory model, these are provided for CUDA compatibility
// but are treated identically since all memory is CPU-accessible.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and memory fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf  []uint64 // keeps the backing array reachable and 8-byte aligned
	size int
	used bool
}

func (a *allocation) ptr() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(a.buf))
}

// DevicePtr represents a pointer to device memory. Use Slice to access the
// underlying data as a typed slice, and Offset for pointer arithmetic.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// NewMemoryPool creates a new memory pool for efficient memory management.
// The pool tracks allocations and provides statistics on memory usage.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Malloc allocates device memory of the specified size in bytes.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
// The memory may be retained in the pool for future allocations.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// MemoryStats returns the bytes currently allocated and the peak.
func (ctx *Context) MemoryStats() (allocated, peak int64) {
	return ctx.memory.GetStats()
}

// Memcpy copies size bytes between host and device.
// dst and src may each be a DevicePtr, an unsafe.Pointer or a []byte; use
// CopyToDevice and CopyFromDevice for typed slices.
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	// On CPU, all memory transfers are just memcpy
	// We keep the kind for compatibility
	dstBytes, err := rawBytes("Memcpy", "dst", dst, size)
	if err != nil {
		return err
	}
	srcBytes, err := rawBytes("Memcpy", "src", src, size)
	if err != nil {
		return err
	}
	copy(dstBytes, srcBytes)
	return nil
}

func rawBytes(op, name string, v interface{}, size int) ([]byte, error) {
	if size < 0 {
		return nil, NewInvalidArgErrorf(op, "negative size %d", size)
	}
	switch p := v.(type) {
	case DevicePtr:
		if p.ptr == nil {
			return nil, ErrNullPointer
		}
		if size > p.size {
			return nil, NewInvalidArgErrorf(op, "%s holds %d bytes, %d requested", name, p.size, size)
		}
		return unsafe.Slice((*byte)(p.ptr), size), nil
	case unsafe.Pointer:
		if p == nil {
			return nil, ErrNullPointer
		}
		return unsafe.Slice((*byte)(p), size), nil
	case []byte:
		if size > len(p) {
			return nil, NewInvalidArgErrorf(op, "%s holds %d bytes, %d requested", name, len(p), size)
		}
		return p[:size], nil
	default:
		return nil, NewInvalidArgError(op, fmt.Sprintf("unsupported %s type: %T", name, v))
	}
}

// CopyToDevice copies a typed host slice to the start of dst.
func CopyToDevice[T any](dst DevicePtr, src []T) error {
	view := Slice[T](dst)
	if len(view) < len(src) {
		return NewInvalidArgErrorf("CopyToDevice", "device buffer holds %d elements, %d requested", len(view), len(src))
	}
	copy(view, src)
	return nil
}

// CopyFromDevice copies the start of src into a typed host slice.
func CopyFromDevice[T any](dst []T, src DevicePtr) error {
	view := Slice[T](src)
	if len(view) < len(dst) {
		return NewInvalidArgErrorf("CopyFromDevice", "device buffer holds %d elements, %d requested", len(view), len(dst))
	}
	copy(dst, view)
	return nil
}

// MemoryPool methods

// Allocate allocates memory from the pool
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	// Round up to alignment
	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true
			mp.track(int64(alloc.size))
			return DevicePtr{ptr: alloc.ptr(), size: size}, nil
		}
	}

	alloc := &allocation{
		buf:  make([]uint64, alignedSize/8),
		size: alignedSize,
		used: true,
	}
	mp.allocated[uintptr(alloc.ptr())] = alloc
	mp.track(int64(alignedSize))

	return DevicePtr{ptr: alloc.ptr(), size: size}, nil
}

func (mp *MemoryPool) track(delta int64) {
	mp.totalAlloc += delta
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	if ptr.ptr == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}

	if !alloc.used {
		return ErrDoubleFree
	}

	// Zero on release so reused buffers never leak a previous test's data.
	clear(alloc.buf)
	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)

	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// DevicePtr methods

// Slice returns a typed view of the device memory. Trailing bytes that do
// not fill a whole element are not part of the view.
//
// Example:
//
//	d_data, _ := guda.Malloc(1024 * 4)
//	data := guda.Slice[float32](d_data)
//	data[0] = 3.14
func Slice[T any](d DevicePtr) []T {
	if d.ptr == nil {
		return nil
	}
	var zero T
	n := d.size / int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(d.ptr), n)
}

// Byte returns a byte slice view of the device memory.
func (d DevicePtr) Byte() []byte {
	return Slice[byte](d)
}

// Offset returns a new DevicePtr offset by the given number of bytes.
// The returned DevicePtr shares the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Add(d.ptr, bytes),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}

// IsNil reports whether the pointer refers to no memory.
func (d DevicePtr) IsNil() bool {
	return d.ptr == nil
}

// getSystemMemory returns total system memory in bytes
func getSystemMemory() uint64 {
	// This is a simplified version
	// In production, we'd use syscalls to get actual memory
	return 16 * 1024 * 1024 * 1024 // Default to 16GB
}
