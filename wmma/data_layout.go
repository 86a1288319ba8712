package wmma

import "fmt"

// Orientation names the tile axis along which a vector transaction is
// contiguous.
type Orientation uint8

const (
	// AlongRow vectors span consecutive columns of one row.
	AlongRow Orientation = iota
	// AlongCol vectors span consecutive rows of one column.
	AlongCol
)

func (o Orientation) String() string {
	if o == AlongCol {
		return "along_col"
	}
	return "along_row"
}

// Layout is the runtime storage-order selector. Matrix A and B fragments fix
// it at type construction; accumulator fragments use LayoutNone and receive
// it at each load or store.
type Layout uint8

const (
	LayoutNone Layout = iota
	MemRowMajor
	MemColMajor
)

// ParseLayout accepts "row", "row_major", "r", "col", "col_major" or "c".
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "row", "row_major", "r", "R":
		return MemRowMajor, nil
	case "col", "col_major", "c", "C":
		return MemColMajor, nil
	}
	return LayoutNone, fmt.Errorf("unknown layout %q", s)
}

func (l Layout) String() string {
	switch l {
	case MemRowMajor:
		return "row_major"
	case MemColMajor:
		return "col_major"
	default:
		return "none"
	}
}

// Short returns "R", "C" or "-".
func (l Layout) Short() string {
	switch l {
	case MemRowMajor:
		return "R"
	case MemColMajor:
		return "C"
	default:
		return "-"
	}
}

// MarshalText implements encoding.TextMarshaler for reports and sweep files.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LeadingDim returns the natural leading dimension of a rows×cols matrix
// stored with layout l: the row length for row-major, the column length for
// column-major.
func (l Layout) LeadingDim(rows, cols uint32) uint32 {
	if l == MemColMajor {
		return rows
	}
	return cols
}

// Offset linearizes c with the DataLayout selected by l.
func (l Layout) Offset(c Coord, ld uint32) int {
	if l == MemColMajor {
		return ColMajor{}.FromMatrixCoord(c, ld)
	}
	return RowMajor{}.FromMatrixCoord(c, ld)
}

// DataLayout converts tile coordinates into linear element offsets. The
// implementations are zero-size types used as type parameters, so the
// offset arithmetic of an engine is fixed when the engine is instantiated.
type DataLayout interface {
	// FromMatrixCoord returns the element offset of c for leading dimension ld.
	FromMatrixCoord(c Coord, ld uint32) int
	// Contiguous is the tile axis that is contiguous in memory.
	Contiguous() Orientation
	// Layout is the matching runtime selector.
	Layout() Layout
}

// RowMajor stores rows contiguously: offset = row*ld + col.
type RowMajor struct{}

func (RowMajor) FromMatrixCoord(c Coord, ld uint32) int {
	return int(c.Row)*int(ld) + int(c.Col)
}

func (RowMajor) Contiguous() Orientation { return AlongRow }
func (RowMajor) Layout() Layout          { return MemRowMajor }

// ColMajor stores columns contiguously: offset = col*ld + row.
type ColMajor struct{}

func (ColMajor) FromMatrixCoord(c Coord, ld uint32) int {
	return int(c.Col)*int(ld) + int(c.Row)
}

func (ColMajor) Contiguous() Orientation { return AlongCol }
func (ColMajor) Layout() Layout          { return MemColMajor }
