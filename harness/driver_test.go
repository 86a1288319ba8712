package harness

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

func requirePassed(t *testing.T, res Result) {
	t.Helper()
	require.True(t, res.Passed(), "%s: %s %s", res.Case, res.Status, res.Error)
}

func TestRunLoadStoreSmoke(t *testing.T) {
	ctx := guda.NewContext()
	for _, c := range SmokeSweep().WithTypes([]string{"f32", "bf16"}).Expand(wmma.TilingLinear) {
		res := RunCase(ctx, c)
		requirePassed(t, res)
		assert.Positive(t, res.Bytes)
	}
	allocated, _ := ctx.MemoryStats()
	assert.Zero(t, allocated, "device buffers leaked")
}

func TestRunLoadStoreAllTypes(t *testing.T) {
	ctx := guda.NewContext()
	for _, tiling := range []wmma.Tiling{wmma.TilingLinear, wmma.TilingInterleaved} {
		for _, typ := range ElementTypes {
			for _, cfg := range []Config{
				{TBlockX: 64, TBlockY: 1, BlockM: 16, BlockN: 16, BlockK: 16, M: 16, N: 16, K: 16},
				{TBlockX: 64, TBlockY: 2, BlockM: 32, BlockN: 32, BlockK: 32, M: 64, N: 64, K: 64},
				{TBlockX: 128, TBlockY: 1, BlockM: 16, BlockN: 32, BlockK: 64, M: 64, N: 64, K: 128},
			} {
				for _, l := range AllLayouts() {
					c := Case{Config: cfg, Layouts: l, Type: typ, Tiling: tiling}
					t.Run(fmt.Sprintf("%s/%s", tiling, c), func(t *testing.T) {
						requirePassed(t, RunCase(ctx, c))
					})
				}
			}
		}
	}
}

// The non-square large-K problem is covered end to end: every tile of the
// 512x8192 A matrix is owned by some wave.
func TestRunLoadStoreLargeK(t *testing.T) {
	if testing.Short() {
		t.Skip("large-K sweep skipped in short mode")
	}
	ctx := guda.NewContext()
	cfg := Config{TBlockX: 256, TBlockY: 1, BlockM: 64, BlockN: 64, BlockK: 64, M: 512, N: 128, K: 8192}
	for _, code := range []string{"RRR", "CCC", "RCR"} {
		l, err := ParseLayouts(code)
		require.NoError(t, err)
		res := RunCase(ctx, Case{Config: cfg, Layouts: l, Type: "f32"})
		requirePassed(t, res)
		assert.Equal(t, int64(2*4*(512*8192+8192*128+512*128)), res.Bytes)
	}
}

func TestRunLoadStoreErrors(t *testing.T) {
	ctx := guda.NewContext()
	c := Case{
		Config:  Config{TBlockX: 32, TBlockY: 1, BlockM: 16, BlockN: 16, BlockK: 16, M: 16, N: 16, K: 16},
		Layouts: AllLayouts()[0],
		Type:    "f32",
	}
	res := RunCase(ctx, c)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Error, "wave size")

	c.TBlockX = 64
	c.Type = "c64"
	res = RunCase(ctx, c)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Error, "unknown element type")

	// An 8x8 f16 tile gives each lane half a register.
	c.Type = "f16"
	c.BlockM, c.BlockN, c.BlockK = 8, 8, 8
	res = RunCase(ctx, c)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Error, "matrix A")
}

func TestRunFill(t *testing.T) {
	ctx := guda.NewContext()
	cfg := Config{TBlockX: 128, TBlockY: 2, BlockM: 32, BlockN: 32, BlockK: 32, M: 128, N: 64, K: 32}
	for _, layout := range []wmma.Layout{wmma.MemRowMajor, wmma.MemColMajor} {
		for _, typ := range []string{"f32", "f16", "bf16", "i8"} {
			res := RunFillCase(ctx, cfg, typ, layout, 2.5, wmma.TilingLinear)
			requirePassed(t, res)
			assert.Equal(t, "fill", res.Kind)
		}
	}
	res := RunFillCase(ctx, cfg, "u4", wmma.MemRowMajor, 1, wmma.TilingLinear)
	assert.Equal(t, StatusError, res.Status)
}

func TestLaunchReportsKernelFault(t *testing.T) {
	ctx := guda.NewContext()
	kernel := func(tid guda.ThreadID, args ...interface{}) {
		if tid.Lane() == 7 {
			panic("lane 7 faulted")
		}
	}
	err := launch(ctx, kernel, guda.Dim3{X: 2, Y: 1, Z: 1}, guda.Dim3{X: 64, Y: 1, Z: 1})
	require.Error(t, err)
	assert.True(t, guda.IsExecutionError(err), "got %v", err)

	// The context is usable after a fault.
	require.NoError(t, launch(ctx, func(guda.ThreadID, ...interface{}) {}, guda.Dim3{X: 1, Y: 1, Z: 1}, guda.Dim3{X: 64, Y: 1, Z: 1}))
}

func TestResultFail(t *testing.T) {
	res := Result{Case: "x"}.fail(&MismatchError{Matrix: "C", Count: 3})
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, 3, res.Mismatches)

	res = Result{Case: "x"}.fail(guda.ErrInvalidSize)
	assert.Equal(t, StatusError, res.Status)
	assert.False(t, res.Passed())
}
