package abm

import "fmt"

// Grid is a multi-occupancy rectangular grid indexed (row, col), row-major.
// Multiple agents may share one cell (a farmer standing on a grass patch).
// Edges are hard boundaries, not a torus.
type Grid struct {
	rows, cols int
	cells      [][]Agent
}

// NewGrid creates an empty grid. Panics on non-positive dimensions.
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("abm: invalid grid dimensions %dx%d", rows, cols))
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([][]Agent, rows*cols),
	}
}

// Shape returns the grid dimensions.
func (g *Grid) Shape() (rows, cols int) { return g.rows, g.cols }

// InBounds reports whether (row, col) is on the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Place puts an agent at (row, col) and records the position on the agent.
func (g *Grid) Place(a Agent, row, col int) error {
	if !g.InBounds(row, col) {
		return fmt.Errorf("abm: place at (%d,%d) outside %dx%d grid", row, col, g.rows, g.cols)
	}
	i := row*g.cols + col
	g.cells[i] = append(g.cells[i], a)
	a.SetPos(row, col)
	return nil
}

// Move relocates an agent from its current cell to (row, col).
func (g *Grid) Move(a Agent, row, col int) error {
	if !g.InBounds(row, col) {
		return fmt.Errorf("abm: move to (%d,%d) outside %dx%d grid", row, col, g.rows, g.cols)
	}
	g.Remove(a)
	return g.Place(a, row, col)
}

// Remove takes an agent off the grid. Removing an absent agent is a no-op.
func (g *Grid) Remove(a Agent) {
	row, col := a.Pos()
	if !g.InBounds(row, col) {
		return
	}
	i := row*g.cols + col
	cell := g.cells[i]
	for n, occupant := range cell {
		if occupant == a {
			g.cells[i] = append(cell[:n], cell[n+1:]...)
			return
		}
	}
}

// CellAgents returns the occupants of (row, col). The returned slice is the
// grid's own; callers must not mutate it.
func (g *Grid) CellAgents(row, col int) []Agent {
	if !g.InBounds(row, col) {
		return nil
	}
	return g.cells[row*g.cols+col]
}

// Each visits every (agent, coordinate) pair in row-major cell order.
func (g *Grid) Each(fn func(a Agent, row, col int)) {
	for i, cell := range g.cells {
		row, col := i/g.cols, i%g.cols
		for _, a := range cell {
			fn(a, row, col)
		}
	}
}

// Neighbors returns the Moore neighborhood of (row, col) clipped at the
// grid edges, as [row, col] pairs.
func (g *Grid) Neighbors(row, col int) [][2]int {
	out := make([][2]int, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if g.InBounds(r, c) {
				out = append(out, [2]int{r, c})
			}
		}
	}
	return out
}
