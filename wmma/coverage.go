package wmma

import (
	guda "github.com/LynnColeArt/guda-wmma"
)

// Coordinates returns the start coordinate of each of the lane's IOCount
// transactions, in issue order.
func Coordinates(l MatrixLayout, lane uint32) []Coord {
	coords := make([]Coord, l.IOCount())
	c := l.BaseOffset(lane)
	for i := range coords {
		coords[i] = c
		c = c.Add(l.IncrementalOffset(uint32(i)))
	}
	return coords
}

// ElementCoords returns the coordinate of every element the lane owns, in
// the order the elements sit in the lane's fragment storage.
func ElementCoords(l MatrixLayout, lane uint32) []Coord {
	vw := l.VectorWidth()
	step := Coord{Col: 1}
	if l.Orientation() == AlongCol {
		step = Coord{Row: 1}
	}
	starts := Coordinates(l, lane)
	coords := make([]Coord, 0, len(starts)*int(vw))
	for _, s := range starts {
		for j := uint32(0); j < vw; j++ {
			coords = append(coords, Coord{Row: s.Row + j*step.Row, Col: s.Col + j*step.Col})
		}
	}
	return coords
}

// WaveCoverage counts how many times the wave visits each element of the
// tile. The counts are indexed row-major: counts[row*Cols()+col].
// Coordinates outside the tile are not counted.
func WaveCoverage(l MatrixLayout) []uint32 {
	rows, cols := l.Rows(), l.Cols()
	counts := make([]uint32, int(rows)*int(cols))
	for lane := uint32(0); lane < WaveSize; lane++ {
		for _, c := range ElementCoords(l, lane) {
			if c.Row < rows && c.Col < cols {
				counts[int(c.Row)*int(cols)+int(c.Col)]++
			}
		}
	}
	return counts
}

// CheckCoverage verifies that the wave's transactions stay inside the tile
// and visit every element exactly once.
func CheckCoverage(l MatrixLayout) error {
	const op = "CheckCoverage"
	rows, cols := l.Rows(), l.Cols()
	seen := make([]int32, int(rows)*int(cols))
	for i := range seen {
		seen[i] = -1
	}
	for lane := uint32(0); lane < WaveSize; lane++ {
		for k, c := range ElementCoords(l, lane) {
			if c.Row >= rows || c.Col >= cols {
				return guda.NewInvalidArgErrorf(op, "lane %d element %d at %v leaves the %dx%d tile", lane, k, c, rows, cols)
			}
			idx := int(c.Row)*int(cols) + int(c.Col)
			switch {
			case seen[idx] == int32(lane):
				return guda.NewInvalidArgErrorf(op, "lane %d visits %v twice", lane, c)
			case seen[idx] >= 0:
				return guda.NewInvalidArgErrorf(op, "lanes %d and %d both visit %v", seen[idx], lane, c)
			}
			seen[idx] = int32(lane)
		}
	}
	for idx, lane := range seen {
		if lane < 0 {
			return guda.NewInvalidArgErrorf(op, "no lane visits (%d, %d)", idx/int(cols), idx%int(cols))
		}
	}
	return nil
}
