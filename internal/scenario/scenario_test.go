package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessellab/acre/internal/abm"
	"github.com/tessellab/acre/internal/climate"
)

const wellsDeck = `
name: test-wells
kind: wells
steps: 10
dt: 1.0
seed: 42
season: summer
grid:
  rows: 8
  cols: 8
  cell_size: 10.0
aquifer:
  conductivity: 0.5
  specific_yield: 0.2
  mean_depth: 3.0
  ambient_recharge: 0.001
farmers:
  count: 5
  well_depth: 5.0
  pump_rate: 0.01
`

const ecosystemDeck = `
name: test-ecosystem
kind: ecosystem
steps: 10
dt: 1.0
seed: 7
grid:
  rows: 10
  cols: 10
  cell_size: 5.0
creep:
  diffusivity: 0.05
  veg_shield: 0.8
  erosion_threshold: 0.02
grass:
  regrowth_time: 8
  initial_cover: 0.5
herbivores:
  count: 20
  initial_energy: 10
  gain_from_food: 4
  reproduce_chance: 0.04
predators:
  count: 5
  initial_energy: 12
  gain_from_food: 10
  reproduce_chance: 0.05
`

func writeDeck(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWellsDeck(t *testing.T) {
	d, err := Load(writeDeck(t, wellsDeck))
	require.NoError(t, err)
	require.Equal(t, "test-wells", d.Name)
	require.Equal(t, KindWells, d.Kind)
	require.Equal(t, 5, d.Farmers.Count)
	require.Equal(t, 10.0, d.Grid.CellSize)

	season, err := d.ParseSeason()
	require.NoError(t, err)
	require.Equal(t, climate.Summer, season)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	base := func() *Deck {
		d, err := Load(writeDeck(t, wellsDeck))
		require.NoError(t, err)
		return d
	}

	d := base()
	d.Kind = "orchard"
	require.ErrorContains(t, d.Validate(), "unknown scenario kind")

	d = base()
	d.Grid.Rows = 0
	require.ErrorContains(t, d.Validate(), "grid must be positive")

	d = base()
	d.Dt = 0
	require.ErrorContains(t, d.Validate(), "dt must be positive")

	d = base()
	d.Farmers.Count = 0
	require.ErrorContains(t, d.Validate(), "needs farmers")

	d = base()
	d.Farmers.Count = 1000
	require.ErrorContains(t, d.Validate(), "exceed")

	d = base()
	d.Season = "monsoon"
	require.ErrorContains(t, d.Validate(), "unknown season")

	d = base()
	d.Aquifer.Boundary = "torus"
	require.ErrorContains(t, d.Validate(), "unknown boundary")
}

func TestBuildWellsRuns(t *testing.T) {
	d, err := Load(writeDeck(t, wellsDeck))
	require.NoError(t, err)

	sc, err := Build(d, Options{})
	require.NoError(t, err)
	require.Equal(t, 5, sc.Pop.Active())

	for i := 0; i < 5; i++ {
		require.NoError(t, sc.Loop.Step())
		require.Equal(t, 5, sc.Loop.Last().Active, "farmers neither die nor reproduce")
	}

	counts := sc.Pop.Counts()
	require.Equal(t, 5, counts[abm.KindFarmer])
}

func TestBuildWellsDeterministic(t *testing.T) {
	d, err := Load(writeDeck(t, wellsDeck))
	require.NoError(t, err)

	a, err := Build(d, Options{})
	require.NoError(t, err)
	b, err := Build(d, Options{})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, a.Loop.Step())
		require.NoError(t, b.Loop.Step())
		require.Equal(t, a.Loop.Last().ObsMean, b.Loop.Last().ObsMean, "step %d", i)
		require.Equal(t, a.Loop.Last().AggMean, b.Loop.Last().AggMean, "step %d", i)
	}
}

func TestBuildEcosystemRuns(t *testing.T) {
	d, err := Load(writeDeck(t, ecosystemDeck))
	require.NoError(t, err)

	sc, err := Build(d, Options{})
	require.NoError(t, err)

	counts := sc.Pop.Counts()
	require.Equal(t, 100, counts[abm.KindGrass], "one patch per cell")
	require.Equal(t, 20, counts[abm.KindHerbivore])
	require.Equal(t, 5, counts[abm.KindPredator])

	// Half the patches start grown, so the initial aggregate is the cover.
	agg := sc.Pop.Aggregate()
	require.InDelta(t, 0.5, agg.Mean(), 1e-9)

	for i := 0; i < 5; i++ {
		require.NoError(t, sc.Loop.Step())
		require.GreaterOrEqual(t, sc.Loop.Last().ObsMin, 0.0, "erosion rate is a magnitude")
	}
}

func TestBuildEcosystemGrowthScale(t *testing.T) {
	d, err := Load(writeDeck(t, ecosystemDeck))
	require.NoError(t, err)

	// Winter growth is slower than spring; both must still build.
	d.Season = "winter"
	_, err = Build(d, Options{})
	require.NoError(t, err)

	d.Season = "spring"
	_, err = Build(d, Options{})
	require.NoError(t, err)
}
