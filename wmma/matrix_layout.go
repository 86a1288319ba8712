package wmma

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// Tiling selects the order in which the lanes of a wave are laid over a
// tile.
type Tiling uint8

const (
	// TilingLinear walks lanes along the contiguous axis first: consecutive
	// lanes hold consecutive vectors of a line, and each round of
	// transactions covers whole lines (or a segment of one long line).
	TilingLinear Tiling = iota
	// TilingInterleaved walks lanes across lines first: consecutive lanes
	// hold the same vector position of consecutive lines.
	TilingInterleaved
)

// ParseTiling accepts "linear" or "interleaved".
func ParseTiling(s string) (Tiling, error) {
	switch strings.ToLower(s) {
	case "linear", "":
		return TilingLinear, nil
	case "interleaved":
		return TilingInterleaved, nil
	}
	return TilingLinear, fmt.Errorf("unknown tiling %q", s)
}

func (t Tiling) String() string {
	if t == TilingInterleaved {
		return "interleaved"
	}
	return "linear"
}

// MarshalText implements encoding.TextMarshaler.
func (t Tiling) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tiling) UnmarshalText(text []byte) error {
	parsed, err := ParseTiling(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MatrixLayout places a lane's vector transactions on a tile.
//
// Starting at BaseOffset(lane) and adding IncrementalOffset(i) after
// transaction i, the IOCount transactions of all lanes of a wave visit every
// element of the tile exactly once. Increments depend only on the iteration.
type MatrixLayout interface {
	BaseOffset(lane uint32) Coord
	IncrementalOffset(iteration uint32) Offset
	IOCount() uint32
	VectorWidth() uint32
	Orientation() Orientation
	Tiling() Tiling
	// Rows and Cols are the tile extents.
	Rows() uint32
	Cols() uint32
}

// axes maps (strided, contiguous) positions onto (row, col) without
// branching on the orientation: each field is 0 or 1.
type axes struct {
	sRow, sCol, cRow, cCol int32
}

func newAxes(o Orientation) axes {
	if o == AlongCol {
		return axes{sCol: 1, cRow: 1}
	}
	return axes{sRow: 1, cCol: 1}
}

func (a axes) coord(s, c uint32) Coord {
	return Coord{
		Row: s*uint32(a.sRow) + c*uint32(a.cRow),
		Col: s*uint32(a.sCol) + c*uint32(a.cCol),
	}
}

func (a axes) offset(s, c int32) Offset {
	return Offset{Row: s*a.sRow + c*a.cRow, Col: s*a.sCol + c*a.cCol}
}

// tile holds what both tilings share.
type tile struct {
	axes        axes
	orientation Orientation
	rows, cols  uint32
	strided     uint32 // lines in the tile
	contiguous  uint32 // elements per line
	vw          uint32
	ioCount     uint32
	increments  []Offset
}

func (t *tile) IOCount() uint32          { return t.ioCount }
func (t *tile) VectorWidth() uint32      { return t.vw }
func (t *tile) Orientation() Orientation { return t.orientation }
func (t *tile) Rows() uint32             { return t.rows }
func (t *tile) Cols() uint32             { return t.cols }

func (t *tile) IncrementalOffset(iteration uint32) Offset {
	return t.increments[iteration]
}

func (t *tile) setIncrements(increments []Offset) {
	t.increments = increments
}

// linearTiling: a line holds vpc vectors. When vpc <= WaveSize a round
// covers WaveSize/vpc whole lines; otherwise a line takes vpc/WaveSize
// rounds and the next line starts after the last segment.
type linearTiling struct {
	tile
	lanesPerLine uint32
	linesPerIO   uint32
	segments     uint32
}

func (l *linearTiling) Tiling() Tiling { return TilingLinear }

func (l *linearTiling) BaseOffset(lane uint32) Coord {
	return l.axes.coord(lane/l.lanesPerLine, (lane%l.lanesPerLine)*l.vw)
}

func (l *linearTiling) increment(i uint32) Offset {
	step := int32(l.lanesPerLine * l.vw)
	if (i+1)%l.segments != 0 {
		return l.axes.offset(0, step)
	}
	return l.axes.offset(int32(l.linesPerIO), -int32(l.segments-1)*step)
}

// interleavedTiling: consecutive lanes take consecutive lines. When the tile
// has at most WaveSize lines a round covers WaveSize/lines vector columns of
// every line; otherwise a vector column takes lines/WaveSize rounds.
type interleavedTiling struct {
	tile
	linesPerIO   uint32
	vectorsPerIO uint32
	segments     uint32
}

func (l *interleavedTiling) Tiling() Tiling { return TilingInterleaved }

func (l *interleavedTiling) BaseOffset(lane uint32) Coord {
	return l.axes.coord(lane%l.linesPerIO, (lane/l.linesPerIO)*l.vw)
}

func (l *interleavedTiling) increment(i uint32) Offset {
	if (i+1)%l.segments != 0 {
		return l.axes.offset(int32(l.linesPerIO), 0)
	}
	return l.axes.offset(-int32(l.segments-1)*int32(l.linesPerIO), int32(l.vectorsPerIO*l.vw))
}

// MustMatrixLayout builds the layout of a rows×cols tile whose vectors run
// along orientation o. It panics with an invalid-argument *guda.GUDAError
// when traits do not describe the tile, when the vector width does not
// divide a line, or when the lanes of a wave cannot be laid over the tile
// with an iteration-only increment.
func MustMatrixLayout(tiling Tiling, o Orientation, rows, cols uint32, traits IOTraits) MatrixLayout {
	const op = "MatrixLayout"
	if uint64(rows)*uint64(cols) != uint64(traits.ElementCount) {
		panicInvalid(op, "tile %dx%d does not match %s", rows, cols, traits)
	}
	t := tile{
		axes:        newAxes(o),
		orientation: o,
		rows:        rows,
		cols:        cols,
		strided:     rows,
		contiguous:  cols,
		vw:          traits.VectorWidth,
		ioCount:     traits.IOCount,
	}
	if o == AlongCol {
		t.strided, t.contiguous = cols, rows
	}
	if t.contiguous%t.vw != 0 {
		panicInvalid(op, "vector width %d does not divide the contiguous extent %d of tile %dx%d (%s)",
			t.vw, t.contiguous, rows, cols, o)
	}
	vpc := t.contiguous / t.vw

	var layout interface {
		MatrixLayout
		increment(uint32) Offset
		setIncrements([]Offset)
	}
	switch tiling {
	case TilingLinear:
		if WaveSize%vpc != 0 && vpc%WaveSize != 0 {
			panicInvalid(op, "%d vectors per line cannot be laid over %d lanes", vpc, WaveSize)
		}
		lanesPerLine := min(vpc, WaveSize)
		layout = &linearTiling{
			tile:         t,
			lanesPerLine: lanesPerLine,
			linesPerIO:   WaveSize / lanesPerLine,
			segments:     vpc / lanesPerLine,
		}
	case TilingInterleaved:
		if WaveSize%t.strided != 0 && t.strided%WaveSize != 0 {
			panicInvalid(op, "%d lines cannot be laid over %d lanes", t.strided, WaveSize)
		}
		linesPerIO := min(t.strided, WaveSize)
		layout = &interleavedTiling{
			tile:         t,
			linesPerIO:   linesPerIO,
			vectorsPerIO: WaveSize / linesPerIO,
			segments:     t.strided / linesPerIO,
		}
	default:
		panicInvalid(op, "unknown tiling %d", tiling)
	}

	increments := make([]Offset, t.ioCount)
	for i := range increments {
		increments[i] = layout.increment(uint32(i))
	}
	layout.setIncrements(increments)

	if err := CheckCoverage(layout); err != nil {
		panic(err)
	}
	return layout
}

// NewMatrixLayout is MustMatrixLayout returning the configuration error
// instead of panicking.
func NewMatrixLayout(tiling Tiling, o Orientation, rows, cols uint32, traits IOTraits) (layout MatrixLayout, err error) {
	err = exceptions.TryCatch[error](func() {
		layout = MustMatrixLayout(tiling, o, rows, cols, traits)
	})
	return layout, err
}
