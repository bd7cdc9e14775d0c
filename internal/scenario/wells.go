package scenario

import (
	"fmt"
	"math/rand"

	"github.com/tessellab/acre/internal/abm"
	"github.com/tessellab/acre/internal/agents"
	"github.com/tessellab/acre/internal/coupling"
	"github.com/tessellab/acre/internal/field"
	"github.com/tessellab/acre/internal/gwflow"
	"github.com/tessellab/acre/internal/terrain"
)

// buildWells wires the farmers-over-an-aquifer scenario: simplex terrain,
// an unconfined aquifer with ambient recharge, and farmers at distinct
// random cells whose pumping flux returns as negative recharge.
func buildWells(d *Deck, opts Options) (*Scenario, error) {
	rows, cols := d.Grid.Rows, d.Grid.Cols

	relief := d.Aquifer.Relief
	if relief <= 0 {
		relief = 20
	}
	meanDepth := d.Aquifer.MeanDepth
	if meanDepth <= 0 {
		meanDepth = 3
	}

	surface := terrain.Surface(rows, cols, d.Seed, relief)
	waterTable := terrain.WaterTable(surface, d.Seed, meanDepth, d.Aquifer.DepthVariation)

	boundary := gwflow.BoundaryClosed
	if d.Aquifer.Boundary == "fixed" {
		boundary = gwflow.BoundaryFixedHead
	}

	cfg := gwflow.Config{
		CellSize:      d.Grid.CellSize,
		Conductivity:  d.Aquifer.Conductivity,
		SpecificYield: d.Aquifer.SpecificYield,
		Boundary:      boundary,
		BoundaryHead:  d.Aquifer.BoundaryHead,
	}
	aq, err := gwflow.New(cfg, surface.Snapshot(), waterTable.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("build wells: %w", err)
	}

	sim := &rechargedSim{
		inner:   aq,
		ambient: d.Aquifer.AmbientRecharge * opts.RechargeScale,
	}

	pop := abm.NewPopulation(rows, cols, d.Seed)
	rng := rand.New(rand.NewSource(d.Seed + 10))
	for _, cell := range pickDistinctCells(rng, rows, cols, d.Farmers.Count) {
		farmer := agents.NewFarmer(pop.NextID(), d.Farmers.WellDepth, d.Farmers.PumpRate)
		if err := pop.Add(farmer, cell[0], cell[1]); err != nil {
			return nil, fmt.Errorf("build wells: %w", err)
		}
	}

	// Prime the aquifer so the first Advance already carries ambient
	// recharge and the initial pumping pattern.
	if err := sim.SetForcing(pop.Aggregate()); err != nil {
		return nil, fmt.Errorf("build wells: %w", err)
	}

	loop, err := coupling.New(sim, pop, d.Dt)
	if err != nil {
		return nil, fmt.Errorf("build wells: %w", err)
	}
	return &Scenario{Deck: d, Loop: loop, Sim: sim, Pop: pop}, nil
}

// rechargedSim decorates the aquifer with a uniform ambient recharge added
// to whatever forcing the population aggregates. The population never needs
// to know about rainfall; the aquifer never needs to know about seasons.
type rechargedSim struct {
	inner   *gwflow.Aquifer
	ambient float64
}

func (s *rechargedSim) Shape() (int, int)        { return s.inner.Shape() }
func (s *rechargedSim) Advance(dt float64) error { return s.inner.Advance(dt) }
func (s *rechargedSim) Observe() *field.Snapshot { return s.inner.Observe() }

func (s *rechargedSim) SetForcing(f *field.Snapshot) error {
	combined := f.Field()
	rows, cols := combined.Rows(), combined.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			combined.AddAt(r, c, s.ambient)
		}
	}
	return s.inner.SetForcing(combined.Snapshot())
}

// Head exposes the aquifer's water table for reporting.
func (s *rechargedSim) Head() *field.Snapshot { return s.inner.Head() }

// pickDistinctCells draws n distinct (row, col) cells.
func pickDistinctCells(rng *rand.Rand, rows, cols, n int) [][2]int {
	cells := make([][2]int, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, [2]int{r, c})
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	if n > len(cells) {
		n = len(cells)
	}
	return cells[:n]
}
