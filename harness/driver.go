package harness

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

// patternSeed seeds the input matrices; each matrix offsets it by its index.
const patternSeed = 12345

// RunLoadStore loads every tile of A, B and C into fragments and stores it
// to a second buffer, one wave per tile, then compares the copies with the
// inputs. A and B use fragments with a fixed layout; C uses an accumulator
// fragment that receives its layout at load and store time.
func RunLoadStore[T wmma.Element](ctx *guda.Context, c Case) (res Result) {
	res = Result{
		Case:    c.String(),
		Kind:    "loadstore",
		Type:    c.Type,
		Layouts: c.Layouts.Code(),
		Tiling:  c.Tiling.String(),
	}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if err := c.Validate(); err != nil {
		return res.fail(err)
	}
	for i, m := range c.matrices() {
		fragLayout := m.layout
		if m.use == wmma.Accumulator {
			fragLayout = wmma.LayoutNone
		}
		ft, err := wmma.NewFragmentType[T](m.use, c.BlockM, c.BlockN, c.BlockK, fragLayout, wmma.WithTiling(c.Tiling))
		if err != nil {
			return res.fail(errors.Wrapf(err, "matrix %s", m.name))
		}
		n, err := roundTrip(ctx, c.Config, m, ft, patternSeed+uint64(i))
		res.Bytes += n
		if err != nil {
			return res.fail(err)
		}
	}
	res.Status = StatusPass
	return res
}

// roundTrip copies one matrix through fragments of type ft and checks it.
// It returns the bytes moved to and from the device.
func roundTrip[T wmma.Element](ctx *guda.Context, cfg Config, m matrix, ft *wmma.FragmentType[T], seed uint64) (int64, error) {
	ld := m.layout.LeadingDim(m.rows, m.cols)
	host := FillPattern[T](m.rows, m.cols, m.layout, seed)
	size := len(host) * int(wmma.SizeOf[T]())

	in, out, err := allocPair(ctx, size)
	if err != nil {
		return 0, errors.Wrapf(err, "matrix %s", m.name)
	}
	defer ctx.Free(in)
	defer ctx.Free(out)
	if err := guda.CopyToDevice(in, host); err != nil {
		return 0, errors.Wrapf(err, "matrix %s", m.name)
	}

	grid := cfg.Grid(m.rows, m.cols, ft.Rows(), ft.Cols())
	klog.V(1).Infof("matrix %s %dx%d %s: %s, grid %v block %v, %s per buffer",
		m.name, m.rows, m.cols, m.layout, ft, grid, cfg.Block(), humanize.IBytes(uint64(size)))

	src, dst := guda.Slice[T](in), guda.Slice[T](out)
	kernel := func(tid guda.ThreadID, args ...interface{}) {
		origin, ok := tileOrigin(tid, m.rows, m.cols, ft.Rows(), ft.Cols())
		if !ok {
			return
		}
		off := m.layout.Offset(origin, ld)
		lane := tid.Lane()
		frag := ft.New()
		if err := load(lane, frag, src[off:], ld, m.layout); err != nil {
			panic(err)
		}
		if err := store(lane, dst[off:], frag, ld, m.layout); err != nil {
			panic(err)
		}
	}
	if err := launch(ctx, kernel, grid, cfg.Block()); err != nil {
		return int64(2 * size), errors.Wrapf(err, "matrix %s", m.name)
	}

	got := make([]T, len(host))
	if err := guda.CopyFromDevice(got, out); err != nil {
		return int64(2 * size), errors.Wrapf(err, "matrix %s", m.name)
	}
	return int64(2 * size), CompareEqual(m.name, host, got, m.rows, m.cols, ld, m.layout)
}

// RunFill fills an M×N accumulator with value on every lane and stores it
// with layout, then checks that every element of the matrix holds value.
func RunFill[T wmma.Element](ctx *guda.Context, cfg Config, typ string, layout wmma.Layout, value float32, tiling wmma.Tiling) (res Result) {
	res = Result{
		Case:    cfg.String() + " Fmt(" + layout.Short() + ") T(" + typ + ")",
		Kind:    "fill",
		Type:    typ,
		Layouts: layout.Short(),
		Tiling:  tiling.String(),
	}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if err := cfg.Validate(); err != nil {
		return res.fail(err)
	}
	ft, err := wmma.NewFragmentType[T](wmma.Accumulator, cfg.BlockM, cfg.BlockN, 1, wmma.LayoutNone, wmma.WithTiling(tiling))
	if err != nil {
		return res.fail(err)
	}

	m := matrix{name: "C", use: wmma.Accumulator, rows: cfg.M, cols: cfg.N, layout: layout}
	ld := layout.LeadingDim(m.rows, m.cols)
	n := int(m.rows) * int(m.cols)
	size := n * int(wmma.SizeOf[T]())
	out, err := ctx.Malloc(size)
	if err != nil {
		return res.fail(err)
	}
	defer ctx.Free(out)
	res.Bytes = int64(size)

	fill := FromFloat32[T](value)
	dst := guda.Slice[T](out)
	kernel := func(tid guda.ThreadID, args ...interface{}) {
		origin, ok := tileOrigin(tid, m.rows, m.cols, ft.Rows(), ft.Cols())
		if !ok {
			return
		}
		frag := ft.New()
		wmma.FillFragment(frag, fill)
		if err := wmma.StoreMatrixSyncLayout(tid.Lane(), dst[layout.Offset(origin, ld):], frag, ld, layout); err != nil {
			panic(err)
		}
	}
	grid := cfg.Grid(m.rows, m.cols, ft.Rows(), ft.Cols())
	klog.V(1).Infof("fill %dx%d %s with %v: grid %v block %v", m.rows, m.cols, layout, fill, grid, cfg.Block())
	if err := launch(ctx, kernel, grid, cfg.Block()); err != nil {
		return res.fail(err)
	}

	got := make([]T, n)
	if err := guda.CopyFromDevice(got, out); err != nil {
		return res.fail(err)
	}
	want := make([]T, n)
	for i := range want {
		want[i] = fill
	}
	if err := CompareEqual(m.name, want, got, m.rows, m.cols, ld, layout); err != nil {
		return res.fail(err)
	}
	res.Status = StatusPass
	return res
}

// tileOrigin returns the top-left corner of the tile owned by the thread's
// wave, or false when the wave falls outside the matrix.
func tileOrigin(tid guda.ThreadID, rows, cols, tileRows, tileCols uint32) (wmma.Coord, bool) {
	wx, wy := tid.GlobalWave()
	origin := wmma.Coord{Row: uint32(wx) * tileRows, Col: uint32(wy) * tileCols}
	return origin, origin.Row < rows && origin.Col < cols
}

func load[T wmma.Element](lane uint32, frag *wmma.Fragment[T], data []T, ld uint32, layout wmma.Layout) error {
	if frag.Type().Layout() == wmma.LayoutNone {
		return wmma.LoadMatrixSyncLayout(lane, frag, data, ld, layout)
	}
	return wmma.LoadMatrixSync(lane, frag, data, ld)
}

func store[T wmma.Element](lane uint32, data []T, frag *wmma.Fragment[T], ld uint32, layout wmma.Layout) error {
	if frag.Type().Layout() == wmma.LayoutNone {
		return wmma.StoreMatrixSyncLayout(lane, data, frag, ld, layout)
	}
	return wmma.StoreMatrixSync(lane, data, frag, ld)
}

func launch(ctx *guda.Context, kernel guda.KernelFunc, grid, block guda.Dim3) error {
	if err := ctx.LaunchFunc(kernel, grid, block); err != nil {
		return err
	}
	return ctx.Synchronize()
}

func allocPair(ctx *guda.Context, size int) (in, out guda.DevicePtr, err error) {
	if in, err = ctx.Malloc(size); err != nil {
		return in, out, err
	}
	if out, err = ctx.Malloc(size); err != nil {
		ctx.Free(in)
		return in, out, err
	}
	return in, out, nil
}

func (r Result) fail(err error) Result {
	r.Error = err.Error()
	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		r.Status = StatusFail
		r.Mismatches = mismatch.Count
	} else {
		r.Status = StatusError
	}
	klog.Errorf("%s: %v", r.Case, err)
	return r
}
