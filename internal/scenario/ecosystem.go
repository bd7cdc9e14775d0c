package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tessellab/acre/internal/abm"
	"github.com/tessellab/acre/internal/agents"
	"github.com/tessellab/acre/internal/coupling"
	"github.com/tessellab/acre/internal/hillslope"
	"github.com/tessellab/acre/internal/terrain"
)

// buildEcosystem wires the grazing chain over soil creep: one grass patch
// per cell, herbivores and predators scattered at random, and a creep model
// whose diffusivity the grass-cover aggregate suppresses. The creep model's
// erosion-rate observation in turn stalls grass regrowth.
func buildEcosystem(d *Deck, opts Options) (*Scenario, error) {
	rows, cols := d.Grid.Rows, d.Grid.Cols

	relief := d.Creep.Relief
	if relief <= 0 {
		relief = 30
	}

	cfg := hillslope.Config{
		CellSize:    d.Grid.CellSize,
		Diffusivity: d.Creep.Diffusivity,
		VegShield:   d.Creep.VegShield,
	}
	creep, err := hillslope.New(cfg, terrain.Surface(rows, cols, d.Seed, relief).Snapshot())
	if err != nil {
		return nil, fmt.Errorf("build ecosystem: %w", err)
	}

	// Seasonal growth: faster regrowth shortens the countdown.
	regrowth := int(math.Round(float64(d.Grass.RegrowthTime) / opts.GrowthScale))
	if regrowth < 1 {
		regrowth = 1
	}

	pop := abm.NewPopulation(rows, cols, d.Seed)

	mask := terrain.VegetationMask(rows, cols, d.Seed, d.Grass.InitialCover)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g := agents.NewGrass(pop.NextID(), regrowth, mask[r*cols+c], d.Creep.ErosionThreshold)
			if err := pop.Add(g, r, c); err != nil {
				return nil, fmt.Errorf("build ecosystem: %w", err)
			}
		}
	}

	rng := rand.New(rand.NewSource(d.Seed + 20))
	if err := scatterFauna(pop, rng, d.Herbivores, func(id uint64, cfg agents.FaunaConfig) abm.Agent {
		return agents.NewHerbivore(id, cfg)
	}); err != nil {
		return nil, fmt.Errorf("build ecosystem: %w", err)
	}
	if err := scatterFauna(pop, rng, d.Predators, func(id uint64, cfg agents.FaunaConfig) abm.Agent {
		return agents.NewPredator(id, cfg)
	}); err != nil {
		return nil, fmt.Errorf("build ecosystem: %w", err)
	}

	// Prime the creep model with the initial cover so the first Advance
	// already sees vegetation.
	if err := creep.SetForcing(pop.Aggregate()); err != nil {
		return nil, fmt.Errorf("build ecosystem: %w", err)
	}

	loop, err := coupling.New(creep, pop, d.Dt)
	if err != nil {
		return nil, fmt.Errorf("build ecosystem: %w", err)
	}
	return &Scenario{Deck: d, Loop: loop, Sim: creep, Pop: pop}, nil
}

// scatterFauna places count animals at random cells (shared cells allowed).
func scatterFauna(pop *abm.Population, rng *rand.Rand, deck FaunaDeck, spawn func(uint64, agents.FaunaConfig) abm.Agent) error {
	cfg := agents.FaunaConfig{
		InitialEnergy:   deck.InitialEnergy,
		GainFromFood:    deck.GainFromFood,
		ReproduceChance: deck.ReproduceChance,
	}
	rows, cols := pop.Shape()
	for i := 0; i < deck.Count; i++ {
		a := spawn(pop.NextID(), cfg)
		if err := pop.Add(a, rng.Intn(rows), rng.Intn(cols)); err != nil {
			return err
		}
	}
	return nil
}
