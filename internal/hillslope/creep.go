// Package hillslope simulates linear soil creep: diffusion of the land
// surface under a diffusivity that vegetation cover suppresses. Bare soil
// creeps at the full rate; fully vegetated cells creep at a fraction set by
// the shielding factor. Boundaries are no-flux, so total elevation is
// conserved.
package hillslope

import (
	"fmt"
	"math"

	"github.com/tessellab/acre/internal/field"
)

// Config holds soil-creep parameters. Lengths in metres, times in years.
type Config struct {
	CellSize    float64 // Grid spacing (m)
	Diffusivity float64 // Bare-soil creep diffusivity (m²/yr)
	VegShield   float64 // Fractional diffusivity reduction at full cover (0–1)
}

// Creep is a soil-creep model on a rows × cols grid.
type Creep struct {
	rows, cols int
	cfg        Config

	elev  []float64 // Land-surface elevation per cell
	cover []float64 // Vegetation cover forcing per cell (0–1)
	rate  []float64 // |Δz|/dt from the most recent Advance
}

// New creates a creep model from an initial elevation surface.
func New(cfg Config, elevation *field.Snapshot) (*Creep, error) {
	if cfg.CellSize <= 0 {
		return nil, fmt.Errorf("hillslope: cell size must be positive, got %g", cfg.CellSize)
	}
	if cfg.Diffusivity < 0 {
		return nil, fmt.Errorf("hillslope: diffusivity must be non-negative, got %g", cfg.Diffusivity)
	}
	if cfg.VegShield < 0 || cfg.VegShield > 1 {
		return nil, fmt.Errorf("hillslope: vegetation shielding must be in [0,1], got %g", cfg.VegShield)
	}

	return &Creep{
		rows:  elevation.Rows(),
		cols:  elevation.Cols(),
		cfg:   cfg,
		elev:  elevation.Values(),
		cover: make([]float64, elevation.CellCount()),
		rate:  make([]float64, elevation.CellCount()),
	}, nil
}

// Shape returns the grid dimensions.
func (c *Creep) Shape() (rows, cols int) { return c.rows, c.cols }

// SetForcing replaces the vegetation-cover field. Values are clipped to [0,1].
func (c *Creep) SetForcing(f *field.Snapshot) error {
	if f.Rows() != c.rows || f.Cols() != c.cols {
		return fmt.Errorf("hillslope: forcing %dx%d for %dx%d grid", f.Rows(), f.Cols(), c.rows, c.cols)
	}
	c.cover = f.Values()
	for i, v := range c.cover {
		if v < 0 {
			c.cover[i] = 0
		} else if v > 1 {
			c.cover[i] = 1
		}
	}
	return nil
}

// Advance runs soil creep forward by dt years, substepping to stay under
// the explicit stability bound, and records the per-cell erosion rate.
func (c *Creep) Advance(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("hillslope: non-positive step duration %g", dt)
	}

	before := make([]float64, len(c.elev))
	copy(before, c.elev)

	substeps := 1
	if c.cfg.Diffusivity > 0 {
		dx2 := c.cfg.CellSize * c.cfg.CellSize
		stable := 0.25 * dx2 / c.cfg.Diffusivity
		if dt > stable {
			substeps = int(math.Ceil(dt / stable))
		}
	}

	sub := dt / float64(substeps)
	for s := 0; s < substeps; s++ {
		c.diffuse(sub)
	}

	for i := range c.elev {
		c.rate[i] = math.Abs(c.elev[i]-before[i]) / dt
	}
	return nil
}

// diffuse exchanges material pairwise with right and down neighbors using
// the cover-reduced diffusivity averaged over the pair.
func (c *Creep) diffuse(dt float64) {
	if c.cfg.Diffusivity == 0 {
		return
	}
	dx2 := c.cfg.CellSize * c.cfg.CellSize
	scale := dt / dx2

	for r := 0; r < c.rows; r++ {
		for col := 0; col < c.cols; col++ {
			i := r*c.cols + col
			if col+1 < c.cols {
				c.exchange(i, i+1, scale)
			}
			if r+1 < c.rows {
				c.exchange(i, i+c.cols, scale)
			}
		}
	}
}

func (c *Creep) exchange(i, j int, scale float64) {
	cover := (c.cover[i] + c.cover[j]) / 2
	d := c.cfg.Diffusivity * (1 - c.cfg.VegShield*cover)

	dz := (c.elev[j] - c.elev[i]) * d * scale
	c.elev[i] += dz
	c.elev[j] -= dz
}

// Observe returns the erosion-rate magnitude field (m/yr) from the most
// recent Advance. Before the first step it is all zeros.
func (c *Creep) Observe() *field.Snapshot {
	f, err := field.FromSlice(c.rows, c.cols, c.rate)
	if err != nil {
		panic(err) // shapes are fixed at construction
	}
	return f.Snapshot()
}

// Elevation returns the current land-surface elevation field.
func (c *Creep) Elevation() *field.Snapshot {
	f, err := field.FromSlice(c.rows, c.cols, c.elev)
	if err != nil {
		panic(err)
	}
	return f.Snapshot()
}
