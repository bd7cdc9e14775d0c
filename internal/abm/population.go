package abm

import (
	"fmt"
	"math/rand"

	"github.com/tessellab/acre/internal/field"
)

// Population owns a set of agents on a grid and activates them in random
// order each step, the order reshuffled every pass from a seeded source.
type Population struct {
	grid   *Grid
	agents []Agent
	rng    *rand.Rand
	nextID uint64

	pending []Agent // newborns queued during the current pass
}

// NewPopulation creates an empty population on a rows × cols grid. All
// stochastic behavior (activation order, agent movement, reproduction) draws
// from the seeded source, so runs are reproducible.
func NewPopulation(rows, cols int, seed int64) *Population {
	return &Population{
		grid:   NewGrid(rows, cols),
		rng:    rand.New(rand.NewSource(seed)),
		nextID: 1,
	}
}

// Shape returns the grid dimensions.
func (p *Population) Shape() (rows, cols int) { return p.grid.Shape() }

// Grid exposes the population's grid for placement and iteration.
func (p *Population) Grid() *Grid { return p.grid }

// NextID issues a fresh agent identifier.
func (p *Population) NextID() uint64 {
	id := p.nextID
	p.nextID++
	return id
}

// Add places an agent on the grid and enrolls it in the schedule.
func (p *Population) Add(a Agent, row, col int) error {
	if err := p.grid.Place(a, row, col); err != nil {
		return fmt.Errorf("add agent %d: %w", a.ID(), err)
	}
	p.agents = append(p.agents, a)
	return nil
}

// Step runs one activation pass: every live agent steps exactly once, in
// random order. Newborns spawned during the pass join afterwards; agents
// that died during the pass are swept from the grid and schedule.
func (p *Population) Step(obs *field.Snapshot) {
	order := make([]Agent, len(p.agents))
	copy(order, p.agents)
	p.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	ctx := &Context{
		Obs:    obs,
		Grid:   p.grid,
		RNG:    p.rng,
		NextID: p.NextID,
		Spawn: func(a Agent, row, col int) {
			if err := p.grid.Place(a, row, col); err != nil {
				return // spawn outside the grid is dropped
			}
			p.pending = append(p.pending, a)
		},
	}

	for _, a := range order {
		if !a.Alive() {
			continue // died earlier in this pass
		}
		a.Step(ctx)
	}

	p.sweep()
	p.agents = append(p.agents, p.pending...)
	p.pending = p.pending[:0]
}

// sweep removes dead agents from the grid and the schedule.
func (p *Population) sweep() {
	live := p.agents[:0]
	for _, a := range p.agents {
		if a.Alive() {
			live = append(live, a)
			continue
		}
		p.grid.Remove(a)
	}
	p.agents = live
}

// Aggregate sums every live agent's Contribution into a fresh scalar field.
// The result is a new snapshot each call: aggregating twice without a step
// in between yields identical fields.
func (p *Population) Aggregate() *field.Snapshot {
	rows, cols := p.grid.Shape()
	f := field.New(rows, cols)
	for _, a := range p.agents {
		if !a.Alive() {
			continue
		}
		row, col := a.Pos()
		f.AddAt(row, col, a.Contribution())
	}
	return f.Snapshot()
}

// Active returns the number of live agents.
func (p *Population) Active() int {
	n := 0
	for _, a := range p.agents {
		if a.Alive() {
			n++
		}
	}
	return n
}

// Counts returns live-agent counts by kind.
func (p *Population) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, a := range p.agents {
		if a.Alive() {
			counts[a.Kind()]++
		}
	}
	return counts
}

// Each visits every enrolled live agent.
func (p *Population) Each(fn func(a Agent)) {
	for _, a := range p.agents {
		if a.Alive() {
			fn(a)
		}
	}
}
