// Package field provides scalar fields on a rectangular grid.
//
// Every field in the module is indexed (row, col) with row 0 at the top and
// values laid out row-major. This is the single coordinate convention shared
// by the simulators and the agent population; shape agreement is checked
// wherever two grids meet.
package field

import "fmt"

// Field is a mutable rows × cols scalar field.
type Field struct {
	rows, cols int
	data       []float64
}

// New creates a zero-valued field. Panics on non-positive dimensions —
// grid shapes are fixed at scenario construction and never data-driven.
func New(rows, cols int) *Field {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("field: invalid dimensions %dx%d", rows, cols))
	}
	return &Field{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// FromSlice creates a field from row-major values.
func FromSlice(rows, cols int, values []float64) (*Field, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("field: invalid dimensions %dx%d", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("field: %d values for %dx%d grid", len(values), rows, cols)
	}
	f := New(rows, cols)
	copy(f.data, values)
	return f, nil
}

// Rows returns the number of rows.
func (f *Field) Rows() int { return f.rows }

// Cols returns the number of columns.
func (f *Field) Cols() int { return f.cols }

// CellCount returns rows × cols.
func (f *Field) CellCount() int { return len(f.data) }

func (f *Field) index(row, col int) int {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		panic(fmt.Sprintf("field: (%d,%d) out of %dx%d bounds", row, col, f.rows, f.cols))
	}
	return row*f.cols + col
}

// At returns the value at (row, col).
func (f *Field) At(row, col int) float64 {
	return f.data[f.index(row, col)]
}

// Set stores a value at (row, col).
func (f *Field) Set(row, col int, v float64) {
	f.data[f.index(row, col)] = v
}

// AddAt adds v to the value at (row, col).
func (f *Field) AddAt(row, col int, v float64) {
	f.data[f.index(row, col)] += v
}

// Fill sets every cell to v.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Clone returns an independent copy.
func (f *Field) Clone() *Field {
	c := New(f.rows, f.cols)
	copy(c.data, f.data)
	return c
}

// Min returns the smallest value in the field.
func (f *Field) Min() float64 {
	min := f.data[0]
	for _, v := range f.data[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value in the field.
func (f *Field) Max() float64 {
	max := f.data[0]
	for _, v := range f.data[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Mean returns the arithmetic mean over all cells.
func (f *Field) Mean() float64 {
	sum := 0.0
	for _, v := range f.data {
		sum += v
	}
	return sum / float64(len(f.data))
}

// Snapshot returns an immutable copy of the current values. Later mutation
// of the field does not affect the snapshot.
func (f *Field) Snapshot() *Snapshot {
	data := make([]float64, len(f.data))
	copy(data, f.data)
	return &Snapshot{rows: f.rows, cols: f.cols, data: data}
}

// String returns a shape-and-range summary.
func (f *Field) String() string {
	return fmt.Sprintf("Field(%dx%d, min=%.3g, max=%.3g)", f.rows, f.cols, f.Min(), f.Max())
}
