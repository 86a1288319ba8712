package harness

import (
	"fmt"
	"strings"

	"github.com/LynnColeArt/guda-wmma/wmma"
)

// maxReported bounds the mismatches kept by CompareEqual.
const maxReported = 8

// Mismatch is one element that differs after a round trip.
type Mismatch struct {
	Row, Col  uint32
	Want, Got string
}

// MismatchError reports the elements of a matrix that differ.
type MismatchError struct {
	Matrix string
	Count  int
	First  []Mismatch
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "matrix %s: %d elements differ", e.Matrix, e.Count)
	for _, m := range e.First {
		fmt.Fprintf(&b, "; (%d, %d) want %s got %s", m.Row, m.Col, m.Want, m.Got)
	}
	if e.Count > len(e.First) {
		b.WriteString("; ...")
	}
	return b.String()
}

// CompareEqual compares two rows×cols matrices stored with layout and
// leading dimension ld, bit for bit. It returns nil when they are equal and
// a *MismatchError otherwise.
func CompareEqual[T wmma.Element](name string, want, got []T, rows, cols, ld uint32, layout wmma.Layout) error {
	if len(want) != len(got) {
		return fmt.Errorf("matrix %s: want %d elements, got %d", name, len(want), len(got))
	}
	var mismatch *MismatchError
	for r := uint32(0); r < rows; r++ {
		for c := uint32(0); c < cols; c++ {
			off := layout.Offset(wmma.Coord{Row: r, Col: c}, ld)
			if want[off] == got[off] {
				continue
			}
			if mismatch == nil {
				mismatch = &MismatchError{Matrix: name}
			}
			mismatch.Count++
			if len(mismatch.First) < maxReported {
				mismatch.First = append(mismatch.First, Mismatch{
					Row: r, Col: c,
					Want: fmt.Sprint(want[off]), Got: fmt.Sprint(got[off]),
				})
			}
		}
	}
	if mismatch != nil {
		return mismatch
	}
	return nil
}
