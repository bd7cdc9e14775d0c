package agents

import "github.com/tessellab/acre/internal/abm"

// Grass is a stationary patch that regrows after being grazed. Its aggregate
// contribution is 1.0 while fully grown, so the population aggregate is the
// grass-cover field the soil-creep model takes as forcing.
type Grass struct {
	id       uint64
	row, col int

	FullyGrown   bool
	Countdown    int // Steps until regrown; meaningful while not fully grown
	RegrowthTime int

	// ErosionThreshold stalls regrowth: while the observed erosion rate at
	// this cell is at or above it, the countdown does not advance.
	ErosionThreshold float64
}

// NewGrass creates a grass patch.
func NewGrass(id uint64, regrowthTime int, fullyGrown bool, erosionThreshold float64) *Grass {
	g := &Grass{
		id:               id,
		RegrowthTime:     regrowthTime,
		FullyGrown:       fullyGrown,
		ErosionThreshold: erosionThreshold,
	}
	if !fullyGrown {
		g.Countdown = regrowthTime
	}
	return g
}

func (g *Grass) ID() uint64      { return g.id }
func (g *Grass) Kind() abm.Kind  { return abm.KindGrass }
func (g *Grass) Pos() (int, int) { return g.row, g.col }
func (g *Grass) SetPos(r, c int) { g.row, g.col = r, c }
func (g *Grass) Alive() bool     { return true }

// Step advances regrowth unless the ground underneath is eroding fast.
func (g *Grass) Step(ctx *abm.Context) {
	if g.FullyGrown {
		return
	}
	if ctx.Obs != nil && ctx.Obs.At(g.row, g.col) >= g.ErosionThreshold {
		return
	}
	g.Countdown--
	if g.Countdown <= 0 {
		g.FullyGrown = true
	}
}

// Contribution is 1.0 for a grown patch, 0 otherwise.
func (g *Grass) Contribution() float64 {
	if g.FullyGrown {
		return 1
	}
	return 0
}

// Bite grazes the patch down and restarts the regrowth countdown.
func (g *Grass) Bite() {
	g.FullyGrown = false
	g.Countdown = g.RegrowthTime
}
