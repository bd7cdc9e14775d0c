// Package agents defines the agent kinds placed on population grids: the
// farmer for the wells scenario, and the grass/herbivore/predator chain for
// the ecosystem scenario.
package agents

import "github.com/tessellab/acre/internal/abm"

// Farmer owns a well of fixed depth and pumps while the water table is
// within reach. Its aggregate contribution is the (negative) pumping flux
// fed back to the aquifer as forcing.
type Farmer struct {
	id       uint64
	row, col int

	WellDepth float64 // Depth of the well below ground (m)
	PumpRate  float64 // Withdrawal while pumping (m/day of recharge-equivalent)
	Pumping   bool
}

// NewFarmer creates a farmer that starts pumping; the first observation
// settles the flag.
func NewFarmer(id uint64, wellDepth, pumpRate float64) *Farmer {
	return &Farmer{id: id, WellDepth: wellDepth, PumpRate: pumpRate, Pumping: true}
}

func (f *Farmer) ID() uint64      { return f.id }
func (f *Farmer) Kind() abm.Kind  { return abm.KindFarmer }
func (f *Farmer) Pos() (int, int) { return f.row, f.col }
func (f *Farmer) SetPos(r, c int) { f.row, f.col = r, c }
func (f *Farmer) Alive() bool     { return true }

// Step reads the observed depth to the water table at the farmer's cell.
// The well runs dry exactly when the water table sits at or below its
// bottom: depth ≥ well depth ⇒ not pumping.
func (f *Farmer) Step(ctx *abm.Context) {
	depth := ctx.Obs.At(f.row, f.col)
	f.Pumping = depth < f.WellDepth
}

// Contribution is the pumping withdrawal as negative recharge.
func (f *Farmer) Contribution() float64 {
	if f.Pumping {
		return -f.PumpRate
	}
	return 0
}
