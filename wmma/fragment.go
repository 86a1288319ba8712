package wmma

import (
	"fmt"
	"strings"

	guda "github.com/LynnColeArt/guda-wmma"
)

// Use is the role of a fragment in D = A*B + C.
type Use uint8

const (
	MatrixA     Use = iota // BlockM×BlockK
	MatrixB                // BlockK×BlockN
	Accumulator            // BlockM×BlockN
)

func (u Use) String() string {
	switch u {
	case MatrixA:
		return "matrix_a"
	case MatrixB:
		return "matrix_b"
	case Accumulator:
		return "accumulator"
	default:
		return fmt.Sprintf("Use(%d)", uint8(u))
	}
}

// ParseUse accepts "a", "matrix_a", "b", "matrix_b", "c", "acc" or
// "accumulator".
func ParseUse(s string) (Use, error) {
	switch strings.ToLower(s) {
	case "a", "matrix_a":
		return MatrixA, nil
	case "b", "matrix_b":
		return MatrixB, nil
	case "c", "acc", "accumulator":
		return Accumulator, nil
	}
	return MatrixA, fmt.Errorf("unknown fragment use %q", s)
}

// Dims returns the tile extents of a fragment of this use and the IOTraits
// block parameters: matrix A is BlockM×BlockK with BlockDim=BlockM, matrix B
// is BlockK×BlockN with BlockDim=BlockN, and the accumulator is
// BlockM×BlockN with BlockDim=BlockM.
func (u Use) Dims(m, n, k uint32) (rows, cols, blockDim, blockK uint32) {
	switch u {
	case MatrixA:
		return m, k, m, k
	case MatrixB:
		return k, n, n, k
	default:
		return m, n, m, n
	}
}

type fragmentOptions struct {
	vectorWidth uint32
	tiling      Tiling
}

// FragmentOption configures NewFragmentType.
type FragmentOption func(*fragmentOptions)

// WithVectorWidth fixes the number of elements per transaction. By default
// the widest power of two up to guda.MaxVectorBytes that the tile accepts is
// used.
func WithVectorWidth(vw uint32) FragmentOption {
	return func(o *fragmentOptions) { o.vectorWidth = vw }
}

// WithTiling selects how lanes are laid over the tile (TilingLinear by default).
func WithTiling(t Tiling) FragmentOption {
	return func(o *fragmentOptions) { o.tiling = t }
}

// engines is the load/store pair for one storage order.
type engines[T Element, D DataLayout] struct {
	traits IOTraits
	layout MatrixLayout
	load   OpaqueLoad[T, D]
	store  OpaqueStore[T, D]
}

// searchLayout picks the widest vector width the tile accepts, or the
// configured one, and builds the lane placement for orientation o.
func searchLayout(use Use, m, n, k, elementBytes uint32, o Orientation, opts fragmentOptions) (IOTraits, MatrixLayout, error) {
	rows, cols, blockDim, blockK := use.Dims(m, n, k)

	widths := []uint32{opts.vectorWidth}
	if opts.vectorWidth == 0 {
		widths = widths[:0]
		for vw := max(1, guda.MaxVectorBytes/elementBytes); vw >= 1; vw /= 2 {
			widths = append(widths, vw)
		}
	}

	var lastErr error
	for _, vw := range widths {
		traits, err := NewIOTraits(blockDim, blockK, elementBytes, vw)
		if err != nil {
			lastErr = err
			continue
		}
		layout, err := NewMatrixLayout(opts.tiling, o, rows, cols, traits)
		if err != nil {
			lastErr = err
			continue
		}
		return traits, layout, nil
	}
	return IOTraits{}, nil, lastErr
}

func bindEngines[T Element, D DataLayout](traits IOTraits, layout MatrixLayout) (*engines[T, D], error) {
	load, err := NewOpaqueLoad[T, D](layout)
	if err != nil {
		return nil, err
	}
	store, err := NewOpaqueStore[T, D](layout)
	if err != nil {
		return nil, err
	}
	return &engines[T, D]{traits: traits, layout: layout, load: load, store: store}, nil
}

func newEngines[T Element, D DataLayout](use Use, m, n, k uint32, opts fragmentOptions) (*engines[T, D], error) {
	var dl D
	traits, layout, err := searchLayout(use, m, n, k, SizeOf[T](), dl.Contiguous(), opts)
	if err != nil {
		return nil, err
	}
	return bindEngines[T, D](traits, layout)
}

// FragmentType is a validated fragment configuration. Build it once, outside
// the kernel, and create per-thread storage with New.
type FragmentType[T Element] struct {
	use        Use
	m, n, k    uint32
	rows, cols uint32
	layout     Layout
	tiling     Tiling
	unpacked   uint32

	row *engines[T, RowMajor]
	col *engines[T, ColMajor]
}

// NewFragmentType validates a fragment configuration. Matrix A and B
// fragments need a storage layout; accumulators may use LayoutNone and pick
// the layout at each load and store. A LayoutNone accumulator keeps the same
// lane placement for both layouts and moves one element per transaction.
func NewFragmentType[T Element](use Use, m, n, k uint32, layout Layout, opts ...FragmentOption) (*FragmentType[T], error) {
	const op = "NewFragmentType"
	if use > Accumulator {
		return nil, guda.NewInvalidArgErrorf(op, "unknown fragment use %d", use)
	}
	if m == 0 || n == 0 || k == 0 {
		return nil, guda.NewInvalidArgErrorf(op, "block dimensions must be positive, got %dx%dx%d", m, n, k)
	}
	if layout > MemColMajor {
		return nil, guda.NewInvalidArgErrorf(op, "unknown layout %d", layout)
	}
	if layout == LayoutNone && use != Accumulator {
		return nil, guda.NewInvalidArgErrorf(op, "%s fragments need a row_major or col_major layout", use)
	}

	var o fragmentOptions
	for _, opt := range opts {
		opt(&o)
	}

	ft := &FragmentType[T]{use: use, m: m, n: n, k: k, layout: layout, tiling: o.tiling}
	ft.rows, ft.cols, _, _ = use.Dims(m, n, k)

	var err error
	switch layout {
	case MemRowMajor:
		if ft.row, err = newEngines[T, RowMajor](use, m, n, k, o); err != nil {
			return nil, err
		}
		ft.unpacked = ft.row.traits.UnpackedSize
	case MemColMajor:
		if ft.col, err = newEngines[T, ColMajor](use, m, n, k, o); err != nil {
			return nil, err
		}
		ft.unpacked = ft.col.traits.UnpackedSize
	default:
		// Both storage orders share one lane placement, so a fragment loaded
		// in one order can be stored in the other. Only scalar transactions
		// are contiguous in both.
		if o.vectorWidth > 1 {
			return nil, guda.NewInvalidArgErrorf(op, "%s fragments without a layout move single elements, got vector width %d", use, o.vectorWidth)
		}
		o.vectorWidth = 1
		traits, shared, err := searchLayout(use, m, n, k, SizeOf[T](), AlongRow, o)
		if err != nil {
			return nil, err
		}
		if ft.row, err = bindEngines[T, RowMajor](traits, shared); err != nil {
			return nil, err
		}
		if ft.col, err = bindEngines[T, ColMajor](traits, shared); err != nil {
			return nil, err
		}
		ft.unpacked = traits.UnpackedSize
	}
	return ft, nil
}

// MustFragmentType is NewFragmentType panicking on error.
func MustFragmentType[T Element](use Use, m, n, k uint32, layout Layout, opts ...FragmentOption) *FragmentType[T] {
	ft, err := NewFragmentType[T](use, m, n, k, layout, opts...)
	if err != nil {
		panic(err)
	}
	return ft
}

func (ft *FragmentType[T]) Use() Use             { return ft.use }
func (ft *FragmentType[T]) Layout() Layout       { return ft.layout }
func (ft *FragmentType[T]) Tiling() Tiling       { return ft.tiling }
func (ft *FragmentType[T]) Rows() uint32         { return ft.rows }
func (ft *FragmentType[T]) Cols() uint32         { return ft.cols }
func (ft *FragmentType[T]) UnpackedSize() uint32 { return ft.unpacked }
func (ft *FragmentType[T]) BlockMNK() [3]uint32  { return [3]uint32{ft.m, ft.n, ft.k} }

// Traits returns the IO traits used for storage layout l, if the type
// supports it.
func (ft *FragmentType[T]) Traits(l Layout) (IOTraits, bool) {
	switch {
	case l == MemRowMajor && ft.row != nil:
		return ft.row.traits, true
	case l == MemColMajor && ft.col != nil:
		return ft.col.traits, true
	}
	return IOTraits{}, false
}

// MatrixLayout returns the lane placement used for storage layout l, or nil.
func (ft *FragmentType[T]) MatrixLayout(l Layout) MatrixLayout {
	switch {
	case l == MemRowMajor && ft.row != nil:
		return ft.row.layout
	case l == MemColMajor && ft.col != nil:
		return ft.col.layout
	}
	return nil
}

func (ft *FragmentType[T]) String() string {
	vw := func(l Layout) string {
		if t, ok := ft.Traits(l); ok {
			return fmt.Sprintf(" %s:vw=%d,io=%d", l.Short(), t.VectorWidth, t.IOCount)
		}
		return ""
	}
	return fmt.Sprintf("%s<%dx%dx%d %s %s %s>%s%s", ft.use, ft.m, ft.n, ft.k,
		TypeName[T](), ft.layout, ft.tiling, vw(MemRowMajor), vw(MemColMajor))
}

// Fragment is one lane's share of a tile. It is owned by a single thread.
type Fragment[T Element] struct {
	typ     *FragmentType[T]
	storage Vector[T]
}

// New allocates zeroed per-thread storage for the fragment type.
func (ft *FragmentType[T]) New() *Fragment[T] {
	return &Fragment[T]{typ: ft, storage: NewVector[T](ft.unpacked)}
}

// Type returns the fragment's configuration.
func (f *Fragment[T]) Type() *FragmentType[T] {
	return f.typ
}

// Elements returns the lane's elements. The slice aliases the storage.
func (f *Fragment[T]) Elements() []T {
	return f.storage.Data()
}

// Packed returns the lane's packed 32-bit register image.
func (f *Fragment[T]) Packed() []uint32 {
	return Pack(f.storage.Data())
}

// SetPacked replaces the lane's elements with a register image from Packed.
func (f *Fragment[T]) SetPacked(regs []uint32) error {
	want := uint32(len(f.storage.Data())) * SizeOf[T]() / guda.RegisterBytes
	if uint32(len(regs)) != want {
		return guda.NewInvalidArgErrorf("SetPacked", "got %d registers, fragment holds %d", len(regs), want)
	}
	Unpack(f.storage.Data(), regs)
	return nil
}
