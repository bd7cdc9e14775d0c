// Package abm provides the agent population: a multi-occupancy rectangular
// grid and a random-activation scheduler. Populations consume read-only
// field snapshots as observations and aggregate agent state back into a
// fresh scalar field each step.
package abm

import (
	"math/rand"

	"github.com/tessellab/acre/internal/field"
)

// Kind is the closed set of agent kinds. Coupling code branches on Kind
// rather than on dynamic types.
type Kind uint8

const (
	KindFarmer Kind = iota
	KindGrass
	KindHerbivore
	KindPredator
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindFarmer:
		return "farmer"
	case KindGrass:
		return "grass"
	case KindHerbivore:
		return "herbivore"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// Agent is one member of a population. Agents mutate their own state only
// inside Step; the coupling loop reads them only through Aggregate.
type Agent interface {
	ID() uint64
	Kind() Kind
	Pos() (row, col int)
	SetPos(row, col int)
	Alive() bool

	// Step performs one activation using the context's observation and grid.
	Step(ctx *Context)

	// Contribution is this agent's summand in the population's aggregate
	// scalar field (e.g. negative pumping flux, or 1.0 for grown grass).
	Contribution() float64
}

// Context carries everything an agent may touch during its activation.
type Context struct {
	Obs  *field.Snapshot // Read-only observation from the simulator side
	Grid *Grid
	RNG  *rand.Rand

	// Spawn schedules a newborn for placement at (row, col). The newborn
	// joins the population after the current activation pass.
	Spawn func(a Agent, row, col int)

	// NextID issues a fresh agent identifier.
	NextID func() uint64
}
