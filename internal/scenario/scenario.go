// Package scenario loads YAML scenario decks and assembles them into
// runnable coupling loops. A deck fully describes one demonstration run:
// grid shape, step count and duration, seed, physics parameters, and the
// agent population.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tessellab/acre/internal/abm"
	"github.com/tessellab/acre/internal/climate"
	"github.com/tessellab/acre/internal/coupling"
)

// Deck kinds.
const (
	KindWells     = "wells"
	KindEcosystem = "ecosystem"
)

// Deck is the YAML description of one run.
type Deck struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"`
	Steps  int     `yaml:"steps"`
	Dt     float64 `yaml:"dt"`
	Seed   int64   `yaml:"seed"`
	Season string  `yaml:"season"`

	Grid struct {
		Rows     int     `yaml:"rows"`
		Cols     int     `yaml:"cols"`
		CellSize float64 `yaml:"cell_size"`
	} `yaml:"grid"`

	Aquifer struct {
		Conductivity    float64 `yaml:"conductivity"`
		SpecificYield   float64 `yaml:"specific_yield"`
		Relief          float64 `yaml:"relief"`
		MeanDepth       float64 `yaml:"mean_depth"`
		DepthVariation  float64 `yaml:"depth_variation"`
		Boundary        string  `yaml:"boundary"` // "closed" or "fixed"
		BoundaryHead    float64 `yaml:"boundary_head"`
		AmbientRecharge float64 `yaml:"ambient_recharge"`
	} `yaml:"aquifer"`

	Farmers struct {
		Count     int     `yaml:"count"`
		WellDepth float64 `yaml:"well_depth"`
		PumpRate  float64 `yaml:"pump_rate"`
	} `yaml:"farmers"`

	Creep struct {
		Diffusivity      float64 `yaml:"diffusivity"`
		VegShield        float64 `yaml:"veg_shield"`
		ErosionThreshold float64 `yaml:"erosion_threshold"`
		Relief           float64 `yaml:"relief"`
	} `yaml:"creep"`

	Grass struct {
		RegrowthTime int     `yaml:"regrowth_time"`
		InitialCover float64 `yaml:"initial_cover"`
	} `yaml:"grass"`

	Herbivores FaunaDeck `yaml:"herbivores"`
	Predators  FaunaDeck `yaml:"predators"`
}

// FaunaDeck parameterizes one mobile species.
type FaunaDeck struct {
	Count           int     `yaml:"count"`
	InitialEnergy   float64 `yaml:"initial_energy"`
	GainFromFood    float64 `yaml:"gain_from_food"`
	ReproduceChance float64 `yaml:"reproduce_chance"`
}

// Load reads and validates a deck file.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("deck %q: %w", path, err)
	}
	return &d, nil
}

// Validate checks the deck for structural problems before any grid is built.
func (d *Deck) Validate() error {
	switch d.Kind {
	case KindWells, KindEcosystem:
	default:
		return fmt.Errorf("unknown scenario kind %q", d.Kind)
	}
	if d.Grid.Rows <= 0 || d.Grid.Cols <= 0 {
		return fmt.Errorf("grid must be positive, got %dx%d", d.Grid.Rows, d.Grid.Cols)
	}
	if d.Grid.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %g", d.Grid.CellSize)
	}
	if d.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", d.Steps)
	}
	if d.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", d.Dt)
	}
	if _, err := d.ParseSeason(); err != nil {
		return err
	}

	switch d.Kind {
	case KindWells:
		if d.Farmers.Count <= 0 {
			return fmt.Errorf("wells scenario needs farmers, got count %d", d.Farmers.Count)
		}
		if d.Farmers.Count > d.Grid.Rows*d.Grid.Cols {
			return fmt.Errorf("%d farmers exceed %d grid cells", d.Farmers.Count, d.Grid.Rows*d.Grid.Cols)
		}
		if d.Farmers.WellDepth <= 0 {
			return fmt.Errorf("well depth must be positive, got %g", d.Farmers.WellDepth)
		}
		if d.Farmers.PumpRate < 0 {
			return fmt.Errorf("pump rate must be non-negative, got %g", d.Farmers.PumpRate)
		}
		switch d.Aquifer.Boundary {
		case "", "closed", "fixed":
		default:
			return fmt.Errorf("unknown boundary %q", d.Aquifer.Boundary)
		}
	case KindEcosystem:
		if d.Grass.RegrowthTime <= 0 {
			return fmt.Errorf("grass regrowth time must be positive, got %d", d.Grass.RegrowthTime)
		}
		if d.Grass.InitialCover < 0 || d.Grass.InitialCover > 1 {
			return fmt.Errorf("initial cover must be in [0,1], got %g", d.Grass.InitialCover)
		}
		if d.Herbivores.Count < 0 || d.Predators.Count < 0 {
			return fmt.Errorf("species counts must be non-negative")
		}
	}
	return nil
}

// ParseSeason maps the deck's season name to a climate.Season. An empty
// value defaults to spring.
func (d *Deck) ParseSeason() (climate.Season, error) {
	switch d.Season {
	case "", "spring":
		return climate.Spring, nil
	case "summer":
		return climate.Summer, nil
	case "autumn", "fall":
		return climate.Autumn, nil
	case "winter":
		return climate.Winter, nil
	default:
		return climate.Spring, fmt.Errorf("unknown season %q", d.Season)
	}
}

// Options tune a build beyond the deck. Zero values take seasonal defaults.
type Options struct {
	RechargeScale float64 // Multiplier on ambient recharge; 0 = seasonal default
	GrowthScale   float64 // Multiplier on regrowth speed; 0 = seasonal default
}

// Scenario is a fully wired run.
type Scenario struct {
	Deck *Deck
	Loop *coupling.Loop
	Sim  coupling.Simulator
	Pop  *abm.Population
}

// Build assembles a deck into a runnable scenario.
func Build(d *Deck, opts Options) (*Scenario, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	season, err := d.ParseSeason()
	if err != nil {
		return nil, err
	}

	if opts.RechargeScale == 0 {
		opts.RechargeScale = climate.RechargeModifier(season)
	}
	if opts.GrowthScale == 0 {
		opts.GrowthScale = climate.GrowthModifier(season)
	}

	switch d.Kind {
	case KindWells:
		return buildWells(d, opts)
	case KindEcosystem:
		return buildEcosystem(d, opts)
	default:
		return nil, fmt.Errorf("unknown scenario kind %q", d.Kind)
	}
}
