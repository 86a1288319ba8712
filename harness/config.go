// Package harness drives wmma load/store and fill kernels over guda device
// buffers and checks the results element by element.
package harness

import (
	"fmt"
	"strings"
	"unicode"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

// Layouts is the storage order of the A, B and C matrices of a case.
type Layouts struct {
	A, B, C wmma.Layout
}

// AllLayouts returns the eight A/B/C storage combinations in sweep order.
func AllLayouts() []Layouts {
	r, c := wmma.MemRowMajor, wmma.MemColMajor
	return []Layouts{
		{r, r, r}, {r, c, r}, {c, r, r}, {c, c, r},
		{r, r, c}, {r, c, c}, {c, r, c}, {c, c, c},
	}
}

// ParseLayouts accepts three letters, one per matrix, such as "RCR" or
// "R, C, R".
func ParseLayouts(s string) (Layouts, error) {
	s = strings.Join(strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}), "")
	if len(s) != 3 {
		return Layouts{}, fmt.Errorf("layouts %q: want three of R or C", s)
	}
	var ls [3]wmma.Layout
	for i := range ls {
		l, err := wmma.ParseLayout(s[i : i+1])
		if err != nil {
			return Layouts{}, fmt.Errorf("layouts %q: %w", s, err)
		}
		ls[i] = l
	}
	return Layouts{A: ls[0], B: ls[1], C: ls[2]}, nil
}

// Code returns the compact form, e.g. "RCR".
func (l Layouts) Code() string {
	return l.A.Short() + l.B.Short() + l.C.Short()
}

func (l Layouts) String() string {
	return fmt.Sprintf("FmtABC(%s, %s, %s)", l.A.Short(), l.B.Short(), l.C.Short())
}

// MarshalText implements encoding.TextMarshaler.
func (l Layouts) MarshalText() ([]byte, error) {
	return []byte(l.Code()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layouts) UnmarshalText(text []byte) error {
	parsed, err := ParseLayouts(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Config is one launch shape: a TBlockX×TBlockY thread block, the
// BlockM×BlockN×BlockK fragment shape and the M×N×K problem size.
type Config struct {
	TBlockX int `yaml:"tblock_x" json:"tblock_x"`
	TBlockY int `yaml:"tblock_y" json:"tblock_y"`

	BlockM uint32 `yaml:"block_m" json:"block_m"`
	BlockN uint32 `yaml:"block_n" json:"block_n"`
	BlockK uint32 `yaml:"block_k" json:"block_k"`

	M uint32 `yaml:"m" json:"m"`
	N uint32 `yaml:"n" json:"n"`
	K uint32 `yaml:"k" json:"k"`
}

// Block returns the thread block dimensions.
func (c Config) Block() guda.Dim3 {
	return guda.Dim3{X: c.TBlockX, Y: c.TBlockY, Z: 1}
}

// Validate checks that the thread block splits into whole waves and that
// the problem is tiled exactly by the fragment shape.
func (c Config) Validate() error {
	const op = "Config"
	if err := guda.ValidateWaveBlock(c.Block()); err != nil {
		return err
	}
	if c.BlockM == 0 || c.BlockN == 0 || c.BlockK == 0 {
		return guda.NewInvalidArgErrorf(op, "block %dx%dx%d must be positive", c.BlockM, c.BlockN, c.BlockK)
	}
	if c.M == 0 || c.N == 0 || c.K == 0 {
		return guda.NewInvalidArgErrorf(op, "matrix %dx%dx%d must be positive", c.M, c.N, c.K)
	}
	if c.M%c.BlockM != 0 || c.N%c.BlockN != 0 || c.K%c.BlockK != 0 {
		return guda.NewInvalidArgErrorf(op, "matrix %dx%dx%d is not a multiple of block %dx%dx%d",
			c.M, c.N, c.K, c.BlockM, c.BlockN, c.BlockK)
	}
	return nil
}

// Grid returns the grid that gives every rows×cols matrix tile of
// tileRows×tileCols its own wave: waves run along X over tile rows and
// along Y over tile columns.
func (c Config) Grid(rows, cols, tileRows, tileCols uint32) guda.Dim3 {
	wavesX := uint32(c.TBlockX / guda.WaveSize)
	return guda.Dim3{
		X: int(ceilDiv(rows, tileRows*wavesX)),
		Y: int(ceilDiv(cols, tileCols*uint32(c.TBlockY))),
		Z: 1,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("TBlock (%d, %d) BlockMNK(%d, %d, %d) MatrixMNK(%d, %d, %d)",
		c.TBlockX, c.TBlockY, c.BlockM, c.BlockN, c.BlockK, c.M, c.N, c.K)
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// Case is a fully specified load/store check.
type Case struct {
	Config
	Layouts Layouts
	Type    string
	Tiling  wmma.Tiling
}

func (c Case) String() string {
	return fmt.Sprintf("%s %s T(%s)", c.Config, c.Layouts, c.Type)
}

// matrix describes one operand of a case.
type matrix struct {
	name       string
	use        wmma.Use
	rows, cols uint32
	layout     wmma.Layout
}

func (c Case) matrices() []matrix {
	return []matrix{
		{"A", wmma.MatrixA, c.M, c.K, c.Layouts.A},
		{"B", wmma.MatrixB, c.K, c.N, c.Layouts.B},
		{"C", wmma.Accumulator, c.M, c.N, c.Layouts.C},
	}
}
