package harness

import (
	"fmt"

	"github.com/x448/float16"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

// ElementTypes lists the element type names a case may use.
var ElementTypes = []string{"f16", "h16", "bf16", "f32", "f64", "i8", "i32"}

// RunCase runs a load/store case with the element type it names.
func RunCase(ctx *guda.Context, c Case) Result {
	switch c.Type {
	case "f16":
		return RunLoadStore[float16.Float16](ctx, c)
	case "h16":
		return RunLoadStore[guda.HFloat16](ctx, c)
	case "bf16":
		return RunLoadStore[guda.BFloat16](ctx, c)
	case "f32":
		return RunLoadStore[float32](ctx, c)
	case "f64":
		return RunLoadStore[float64](ctx, c)
	case "i8":
		return RunLoadStore[int8](ctx, c)
	case "i32":
		return RunLoadStore[int32](ctx, c)
	}
	return Result{Case: c.String(), Kind: "loadstore", Type: c.Type}.fail(unknownType(c.Type))
}

// RunFillCase runs a fill-then-store check with the named element type.
func RunFillCase(ctx *guda.Context, cfg Config, typ string, layout wmma.Layout, value float32, tiling wmma.Tiling) Result {
	switch typ {
	case "f16":
		return RunFill[float16.Float16](ctx, cfg, typ, layout, value, tiling)
	case "h16":
		return RunFill[guda.HFloat16](ctx, cfg, typ, layout, value, tiling)
	case "bf16":
		return RunFill[guda.BFloat16](ctx, cfg, typ, layout, value, tiling)
	case "f32":
		return RunFill[float32](ctx, cfg, typ, layout, value, tiling)
	case "f64":
		return RunFill[float64](ctx, cfg, typ, layout, value, tiling)
	case "i8":
		return RunFill[int8](ctx, cfg, typ, layout, value, tiling)
	case "i32":
		return RunFill[int32](ctx, cfg, typ, layout, value, tiling)
	}
	return Result{Case: cfg.String(), Kind: "fill", Type: typ}.fail(unknownType(typ))
}

func unknownType(typ string) error {
	return guda.NewInvalidArgError("harness", fmt.Sprintf("unknown element type %q, want one of %v", typ, ElementTypes))
}

// FragmentInfo is the placement a fragment type uses for one storage layout.
type FragmentInfo struct {
	Name   string
	Traits wmma.IOTraits
	Layout wmma.MatrixLayout
}

// DescribeFragment builds the fragment type named by typ and returns its
// placement for layout. Accumulators are built with layout fixed, so the
// placement is the vectorized one a fixed-layout accumulator would use.
func DescribeFragment(typ string, use wmma.Use, m, n, k uint32, layout wmma.Layout, opts ...wmma.FragmentOption) (FragmentInfo, error) {
	switch typ {
	case "f16":
		return describe[float16.Float16](use, m, n, k, layout, opts)
	case "h16":
		return describe[guda.HFloat16](use, m, n, k, layout, opts)
	case "bf16":
		return describe[guda.BFloat16](use, m, n, k, layout, opts)
	case "f32":
		return describe[float32](use, m, n, k, layout, opts)
	case "f64":
		return describe[float64](use, m, n, k, layout, opts)
	case "i8":
		return describe[int8](use, m, n, k, layout, opts)
	case "i32":
		return describe[int32](use, m, n, k, layout, opts)
	}
	return FragmentInfo{}, unknownType(typ)
}

func describe[T wmma.Element](use wmma.Use, m, n, k uint32, layout wmma.Layout, opts []wmma.FragmentOption) (FragmentInfo, error) {
	ft, err := wmma.NewFragmentType[T](use, m, n, k, layout, opts...)
	if err != nil {
		return FragmentInfo{}, err
	}
	traits, ok := ft.Traits(layout)
	if !ok {
		return FragmentInfo{}, guda.NewInvalidArgErrorf("DescribeFragment", "%s has no %s placement", ft, layout)
	}
	return FragmentInfo{Name: ft.String(), Traits: traits, Layout: ft.MatrixLayout(layout)}, nil
}
