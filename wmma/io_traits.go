package wmma

import (
	"fmt"

	"github.com/gomlx/exceptions"

	guda "github.com/LynnColeArt/guda-wmma"
)

// IOTraits describes how one lane's share of a BlockDim×BlockK tile is moved
// with vector transactions of VectorWidth elements.
type IOTraits struct {
	BlockDim     uint32
	BlockK       uint32
	ElementBytes uint32
	VectorWidth  uint32

	ThreadsPerIO  uint32 // lanes taking part in one transaction round
	ElementsPerIO uint32 // elements moved by the wave per round
	ElementCount  uint32 // elements in the tile
	IOCount       uint32 // transactions per lane
	UnpackedSize  uint32 // elements per lane
	PackRatio     uint32 // elements per 32-bit register, at least 1
	PackedSize    uint32 // 32-bit registers per lane
}

// MustIOTraits derives the IO traits of a tile and panics with an
// invalid-argument *guda.GUDAError if the tiling is inconsistent: the
// vector width must be positive and the tile must split evenly into
// IOCount rounds of WaveSize*VectorWidth elements.
func MustIOTraits(blockDim, blockK, elementBytes, vectorWidth uint32) IOTraits {
	const op = "IOTraits"
	if vectorWidth == 0 {
		panicInvalid(op, "vector width must be greater than 0")
	}
	if blockDim == 0 || blockK == 0 {
		panicInvalid(op, "block dimensions must be positive, got %dx%d", blockDim, blockK)
	}
	if elementBytes == 0 {
		panicInvalid(op, "element width must be positive")
	}

	t := IOTraits{
		BlockDim:     blockDim,
		BlockK:       blockK,
		ElementBytes: elementBytes,
		VectorWidth:  vectorWidth,
		ThreadsPerIO: WaveSize,
	}
	elementCount := uint64(blockDim) * uint64(blockK)
	if elementCount > 1<<31 {
		panicInvalid(op, "block %dx%d is too large", blockDim, blockK)
	}
	t.ElementCount = uint32(elementCount)

	if t.ElementCount%WaveSize != 0 {
		panicInvalid(op, "block %dx%d does not split across %d lanes", blockDim, blockK, WaveSize)
	}
	if vectorWidth > t.ElementCount/WaveSize {
		panicInvalid(op, "vector width %d exceeds the %d elements per lane of block %dx%d",
			vectorWidth, t.ElementCount/WaveSize, blockDim, blockK)
	}
	t.ElementsPerIO = WaveSize * vectorWidth
	if t.ElementCount%t.ElementsPerIO != 0 {
		panicInvalid(op, "vector width %d does not divide the %d elements per lane of block %dx%d",
			vectorWidth, t.ElementCount/WaveSize, blockDim, blockK)
	}
	t.IOCount = t.ElementCount / t.ElementsPerIO
	t.UnpackedSize = t.ElementCount / WaveSize

	t.PackRatio = max(1, guda.RegisterBytes/elementBytes)
	laneBytes := t.UnpackedSize * elementBytes
	if laneBytes%guda.RegisterBytes != 0 {
		panicInvalid(op, "%d elements of %d bytes do not fill whole registers", t.UnpackedSize, elementBytes)
	}
	t.PackedSize = laneBytes / guda.RegisterBytes

	if t.IOCount*t.VectorWidth != t.UnpackedSize {
		panicInvalid(op, "IOCount %d * VectorWidth %d != UnpackedSize %d", t.IOCount, t.VectorWidth, t.UnpackedSize)
	}
	return t
}

// NewIOTraits is MustIOTraits returning the configuration error instead of
// panicking.
func NewIOTraits(blockDim, blockK, elementBytes, vectorWidth uint32) (traits IOTraits, err error) {
	err = exceptions.TryCatch[error](func() {
		traits = MustIOTraits(blockDim, blockK, elementBytes, vectorWidth)
	})
	return traits, err
}

func (t IOTraits) String() string {
	return fmt.Sprintf("IOTraits{block=%dx%d vw=%d iocount=%d unpacked=%d packed=%d}",
		t.BlockDim, t.BlockK, t.VectorWidth, t.IOCount, t.UnpackedSize, t.PackedSize)
}

// panicInvalid raises a configuration error. Configuration errors are
// structural: they are raised while building a fragment type, never while a
// kernel runs.
func panicInvalid(op, format string, args ...interface{}) {
	panic(guda.NewInvalidArgErrorf(op, format, args...))
}
