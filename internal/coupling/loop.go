// Package coupling drives the per-step exchange between a grid simulator
// and an agent population. Each step performs six phases in order: advance
// the simulator, derive its observation field, activate the population on
// that observation, aggregate agent state into a field, and hand the
// aggregate back to the simulator as forcing for the next step.
//
// The exchange is explicit message passing: both directions carry immutable
// snapshots, never references into either side's arrays.
package coupling

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tessellab/acre/internal/field"
)

// Simulator is the grid-based numerical model side of the coupling.
type Simulator interface {
	Shape() (rows, cols int)
	Advance(dt float64) error
	Observe() *field.Snapshot
	SetForcing(f *field.Snapshot) error
}

// Population is the agent side of the coupling.
type Population interface {
	Shape() (rows, cols int)
	Step(obs *field.Snapshot)
	Aggregate() *field.Snapshot
	Active() int
}

// Diagnostics summarizes one completed step.
type Diagnostics struct {
	Step    int     `json:"step"`
	Active  int     `json:"active"`
	ObsMin  float64 `json:"obs_min"`
	ObsMax  float64 `json:"obs_max"`
	ObsMean float64 `json:"obs_mean"`
	AggMin  float64 `json:"agg_min"`
	AggMax  float64 `json:"agg_max"`
	AggMean float64 `json:"agg_mean"`
}

// Loop couples one simulator with one population at a fixed step duration.
type Loop struct {
	sim Simulator
	pop Population
	dt  float64

	step int
	last Diagnostics

	// OnStep, when set, receives diagnostics after each completed step.
	OnStep func(d Diagnostics)
}

// New wires a simulator and a population together. Both grids must share
// dimensions — a mismatch here would otherwise surface only as silently
// misindexed observations.
func New(sim Simulator, pop Population, dt float64) (*Loop, error) {
	sr, sc := sim.Shape()
	pr, pc := pop.Shape()
	if sr != pr || sc != pc {
		return nil, fmt.Errorf("coupling: simulator grid %dx%d vs population grid %dx%d", sr, sc, pr, pc)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("coupling: step duration must be positive, got %g", dt)
	}
	return &Loop{sim: sim, pop: pop, dt: dt}, nil
}

// Step runs one six-phase exchange. Errors from either side propagate
// without recovery; the run terminates with the underlying cause.
func (l *Loop) Step() error {
	if err := l.sim.Advance(l.dt); err != nil {
		return fmt.Errorf("step %d: advance: %w", l.step+1, err)
	}

	obs := l.sim.Observe()
	l.pop.Step(obs)

	agg := l.pop.Aggregate()
	if err := l.sim.SetForcing(agg); err != nil {
		return fmt.Errorf("step %d: set forcing: %w", l.step+1, err)
	}

	l.step++
	l.last = Diagnostics{
		Step:    l.step,
		Active:  l.pop.Active(),
		ObsMin:  obs.Min(),
		ObsMax:  obs.Max(),
		ObsMean: obs.Mean(),
		AggMin:  agg.Min(),
		AggMax:  agg.Max(),
		AggMean: agg.Mean(),
	}

	slog.Info("step complete",
		"step", l.step,
		"active", l.last.Active,
		"obs_min", fmt.Sprintf("%.4g", l.last.ObsMin),
		"obs_max", fmt.Sprintf("%.4g", l.last.ObsMax),
		"obs_mean", fmt.Sprintf("%.4g", l.last.ObsMean),
		"agg_mean", fmt.Sprintf("%.4g", l.last.AggMean),
	)

	if l.OnStep != nil {
		l.OnStep(l.last)
	}
	return nil
}

// Run executes the given number of steps sequentially. The context is
// checked between steps only; a step in flight always completes.
func (l *Loop) Run(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("coupling: run interrupted at step %d: %w", l.step, err)
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
	return nil
}

// CurrentStep returns the number of completed steps.
func (l *Loop) CurrentStep() int { return l.step }

// Last returns diagnostics from the most recent step.
func (l *Loop) Last() Diagnostics { return l.last }

// Dt returns the configured step duration.
func (l *Loop) Dt() float64 { return l.dt }
