package agents

import "github.com/tessellab/acre/internal/abm"

// FaunaConfig parameterizes the mobile species.
type FaunaConfig struct {
	InitialEnergy   float64
	GainFromFood    float64
	ReproduceChance float64 // Per-step probability, checked after feeding
}

// fauna holds the state shared by herbivores and predators: an energy
// budget drained by one unit per step, random movement, and fission-style
// reproduction that halves the parent's energy.
type fauna struct {
	id       uint64
	row, col int
	energy   float64
	dead     bool
	cfg      FaunaConfig
}

func (f *fauna) ID() uint64      { return f.id }
func (f *fauna) Pos() (int, int) { return f.row, f.col }
func (f *fauna) SetPos(r, c int) { f.row, f.col = r, c }
func (f *fauna) Alive() bool     { return !f.dead }

// Contribution: mobile species do not feed a field back to the simulator.
func (f *fauna) Contribution() float64 { return 0 }

// Die marks the animal dead; the population sweeps it after the pass.
func (f *fauna) Die() { f.dead = true }

// move relocates to a random neighboring cell.
func (f *fauna) move(ctx *abm.Context, self abm.Agent) {
	neighbors := ctx.Grid.Neighbors(f.row, f.col)
	if len(neighbors) == 0 {
		return
	}
	dest := neighbors[ctx.RNG.Intn(len(neighbors))]
	if err := ctx.Grid.Move(self, dest[0], dest[1]); err != nil {
		return // clipped neighborhoods never leave the grid; keep position on error
	}
}

// Herbivore grazes grown grass patches.
type Herbivore struct {
	fauna
}

// NewHerbivore creates a grazer with the configured starting energy.
func NewHerbivore(id uint64, cfg FaunaConfig) *Herbivore {
	return &Herbivore{fauna{id: id, energy: cfg.InitialEnergy, cfg: cfg}}
}

func (h *Herbivore) Kind() abm.Kind { return abm.KindHerbivore }

// Step: move, pay the metabolic cost, graze if grass is grown here, starve
// or reproduce.
func (h *Herbivore) Step(ctx *abm.Context) {
	h.move(ctx, h)
	h.energy--

	for _, a := range ctx.Grid.CellAgents(h.row, h.col) {
		if g, ok := a.(*Grass); ok && g.FullyGrown {
			g.Bite()
			h.energy += h.cfg.GainFromFood
			break
		}
	}

	if h.energy <= 0 {
		h.Die()
		return
	}

	if ctx.RNG.Float64() < h.cfg.ReproduceChance {
		h.energy /= 2
		lamb := NewHerbivore(ctx.NextID(), h.cfg)
		lamb.energy = h.energy
		ctx.Spawn(lamb, h.row, h.col)
	}
}

// Energy returns the current energy budget.
func (h *Herbivore) Energy() float64 { return h.energy }

// Predator hunts herbivores sharing its cell.
type Predator struct {
	fauna
}

// NewPredator creates a hunter with the configured starting energy.
func NewPredator(id uint64, cfg FaunaConfig) *Predator {
	return &Predator{fauna{id: id, energy: cfg.InitialEnergy, cfg: cfg}}
}

func (p *Predator) Kind() abm.Kind { return abm.KindPredator }

// Step: move, pay the metabolic cost, take the first live herbivore in the
// cell, starve or reproduce.
func (p *Predator) Step(ctx *abm.Context) {
	p.move(ctx, p)
	p.energy--

	for _, a := range ctx.Grid.CellAgents(p.row, p.col) {
		if prey, ok := a.(*Herbivore); ok && prey.Alive() {
			prey.Die()
			p.energy += p.cfg.GainFromFood
			break
		}
	}

	if p.energy <= 0 {
		p.Die()
		return
	}

	if ctx.RNG.Float64() < p.cfg.ReproduceChance {
		p.energy /= 2
		cub := NewPredator(ctx.NextID(), p.cfg)
		cub.energy = p.energy
		ctx.Spawn(cub, p.row, p.col)
	}
}

// Energy returns the current energy budget.
func (p *Predator) Energy() float64 { return p.energy }
