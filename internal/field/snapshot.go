package field

import (
	"fmt"
	"math"
)

// Snapshot is a read-only scalar field. Snapshots are the only form in which
// field data crosses the simulator/population boundary: each side receives a
// private copy and neither holds a reference into the other's arrays.
type Snapshot struct {
	rows, cols int
	data       []float64
}

// Rows returns the number of rows.
func (s *Snapshot) Rows() int { return s.rows }

// Cols returns the number of columns.
func (s *Snapshot) Cols() int { return s.cols }

// CellCount returns rows × cols.
func (s *Snapshot) CellCount() int { return len(s.data) }

// At returns the value at (row, col).
func (s *Snapshot) At(row, col int) float64 {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		panic(fmt.Sprintf("field: (%d,%d) out of %dx%d bounds", row, col, s.rows, s.cols))
	}
	return s.data[row*s.cols+col]
}

// Min returns the smallest value.
func (s *Snapshot) Min() float64 {
	min := s.data[0]
	for _, v := range s.data[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value.
func (s *Snapshot) Max() float64 {
	max := s.data[0]
	for _, v := range s.data[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Mean returns the arithmetic mean over all cells.
func (s *Snapshot) Mean() float64 {
	sum := 0.0
	for _, v := range s.data {
		sum += v
	}
	return sum / float64(len(s.data))
}

// Equal reports whether two snapshots have the same shape and values within
// the given tolerance.
func (s *Snapshot) Equal(other *Snapshot, tol float64) bool {
	if other == nil || s.rows != other.rows || s.cols != other.cols {
		return false
	}
	for i, v := range s.data {
		if math.Abs(v-other.data[i]) > tol {
			return false
		}
	}
	return true
}

// Field returns a new mutable field initialized from the snapshot.
func (s *Snapshot) Field() *Field {
	f := New(s.rows, s.cols)
	copy(f.data, s.data)
	return f
}

// Values returns a copy of the row-major data.
func (s *Snapshot) Values() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}
