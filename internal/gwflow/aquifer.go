// Package gwflow simulates unconfined groundwater flow on a rectangular grid.
//
// The model is a compact explicit finite-difference scheme: head diffuses
// under a transmissivity derived from saturated thickness, a per-cell
// recharge forcing adds or removes water (pumping is negative recharge), and
// the scheme substeps internally to stay inside the explicit stability bound.
// Interior fluxes are exchanged pairwise between neighbors, so a closed
// system conserves water exactly.
package gwflow

import (
	"fmt"
	"math"

	"github.com/tessellab/acre/internal/field"
)

// Boundary selects the border condition.
type Boundary uint8

const (
	// BoundaryClosed is a no-flow border: water only leaves through pumping.
	BoundaryClosed Boundary = iota
	// BoundaryFixedHead pins border cells to Config.BoundaryHead, modelling a
	// connected river or lake stage.
	BoundaryFixedHead
)

// Config holds aquifer parameters. Lengths in metres, times in days.
type Config struct {
	CellSize      float64  // Grid spacing (m)
	Conductivity  float64  // Hydraulic conductivity K (m/day)
	SpecificYield float64  // Drainable porosity Sy (dimensionless, 0–1)
	Base          float64  // Aquifer bottom elevation (m)
	MinThickness  float64  // Saturated-thickness floor for transmissivity (m)
	Boundary      Boundary
	BoundaryHead  float64 // Border head for BoundaryFixedHead (m)
}

// Aquifer is an unconfined groundwater model on a rows × cols grid.
type Aquifer struct {
	rows, cols int
	cfg        Config

	surface  []float64 // Land-surface elevation per cell
	head     []float64 // Water-table elevation per cell
	recharge []float64 // Forcing per cell (m/day, negative = pumping)
}

// New creates an aquifer from a land surface and an initial water table.
// The two snapshots must share the grid shape.
func New(cfg Config, surface, initialHead *field.Snapshot) (*Aquifer, error) {
	if surface.Rows() != initialHead.Rows() || surface.Cols() != initialHead.Cols() {
		return nil, fmt.Errorf("gwflow: surface %dx%d vs initial head %dx%d",
			surface.Rows(), surface.Cols(), initialHead.Rows(), initialHead.Cols())
	}
	if cfg.CellSize <= 0 {
		return nil, fmt.Errorf("gwflow: cell size must be positive, got %g", cfg.CellSize)
	}
	if cfg.SpecificYield <= 0 || cfg.SpecificYield > 1 {
		return nil, fmt.Errorf("gwflow: specific yield must be in (0,1], got %g", cfg.SpecificYield)
	}
	if cfg.Conductivity < 0 {
		return nil, fmt.Errorf("gwflow: conductivity must be non-negative, got %g", cfg.Conductivity)
	}
	if cfg.MinThickness <= 0 {
		cfg.MinThickness = 0.1
	}

	a := &Aquifer{
		rows:     surface.Rows(),
		cols:     surface.Cols(),
		cfg:      cfg,
		surface:  surface.Values(),
		head:     initialHead.Values(),
		recharge: make([]float64, surface.CellCount()),
	}
	a.clampHeads()
	return a, nil
}

// Shape returns the grid dimensions.
func (a *Aquifer) Shape() (rows, cols int) { return a.rows, a.cols }

// SetForcing replaces the recharge field (m/day per cell, negative = pumping).
func (a *Aquifer) SetForcing(f *field.Snapshot) error {
	if f.Rows() != a.rows || f.Cols() != a.cols {
		return fmt.Errorf("gwflow: forcing %dx%d for %dx%d grid", f.Rows(), f.Cols(), a.rows, a.cols)
	}
	a.recharge = f.Values()
	return nil
}

// Advance runs the model forward by dt days, substepping to stay under the
// explicit stability bound dt ≤ Sy·dx²/(4·T).
func (a *Aquifer) Advance(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("gwflow: non-positive step duration %g", dt)
	}

	substeps := 1
	if a.cfg.Conductivity > 0 {
		maxThickness := a.cfg.MinThickness
		for _, h := range a.head {
			if b := h - a.cfg.Base; b > maxThickness {
				maxThickness = b
			}
		}
		tMax := a.cfg.Conductivity * maxThickness
		dx2 := a.cfg.CellSize * a.cfg.CellSize
		stable := 0.25 * a.cfg.SpecificYield * dx2 / tMax
		if dt > stable {
			substeps = int(math.Ceil(dt / stable))
		}
	}

	sub := dt / float64(substeps)
	for s := 0; s < substeps; s++ {
		a.diffuse(sub)
		a.applyRecharge(sub)
		a.applyBoundary()
		a.clampHeads()
	}
	return nil
}

// diffuse exchanges water pairwise with right and down neighbors. Pairwise
// exchange keeps the interior mass balance exact.
func (a *Aquifer) diffuse(dt float64) {
	if a.cfg.Conductivity == 0 {
		return
	}
	dx2 := a.cfg.CellSize * a.cfg.CellSize
	scale := dt / (a.cfg.SpecificYield * dx2)

	for r := 0; r < a.rows; r++ {
		for c := 0; c < a.cols; c++ {
			i := r*a.cols + c
			if c+1 < a.cols {
				a.exchange(i, i+1, scale)
			}
			if r+1 < a.rows {
				a.exchange(i, i+a.cols, scale)
			}
		}
	}
}

func (a *Aquifer) exchange(i, j int, scale float64) {
	bi := a.head[i] - a.cfg.Base
	bj := a.head[j] - a.cfg.Base
	thickness := (bi + bj) / 2
	if thickness < a.cfg.MinThickness {
		thickness = a.cfg.MinThickness
	}
	t := a.cfg.Conductivity * thickness

	dh := (a.head[j] - a.head[i]) * t * scale
	a.head[i] += dh
	a.head[j] -= dh
}

func (a *Aquifer) applyRecharge(dt float64) {
	for i := range a.head {
		a.head[i] += dt * a.recharge[i] / a.cfg.SpecificYield
	}
}

func (a *Aquifer) applyBoundary() {
	if a.cfg.Boundary != BoundaryFixedHead {
		return
	}
	for c := 0; c < a.cols; c++ {
		a.head[c] = a.cfg.BoundaryHead
		a.head[(a.rows-1)*a.cols+c] = a.cfg.BoundaryHead
	}
	for r := 0; r < a.rows; r++ {
		a.head[r*a.cols] = a.cfg.BoundaryHead
		a.head[r*a.cols+a.cols-1] = a.cfg.BoundaryHead
	}
}

// clampHeads keeps the water table between the aquifer base and the land
// surface. Head above ground is shed as runoff, outside the model.
func (a *Aquifer) clampHeads() {
	for i := range a.head {
		if a.head[i] > a.surface[i] {
			a.head[i] = a.surface[i]
		}
		if a.head[i] < a.cfg.Base {
			a.head[i] = a.cfg.Base
		}
	}
}

// Observe returns depth to the water table (m below ground, ≥ 0) per cell.
func (a *Aquifer) Observe() *field.Snapshot {
	f := field.New(a.rows, a.cols)
	for r := 0; r < a.rows; r++ {
		for c := 0; c < a.cols; c++ {
			i := r*a.cols + c
			depth := a.surface[i] - a.head[i]
			if depth < 0 {
				depth = 0
			}
			f.Set(r, c, depth)
		}
	}
	return f.Snapshot()
}

// Head returns the current water-table elevation field.
func (a *Aquifer) Head() *field.Snapshot {
	f, err := field.FromSlice(a.rows, a.cols, a.head)
	if err != nil {
		panic(err) // shapes are fixed at construction
	}
	return f.Snapshot()
}
