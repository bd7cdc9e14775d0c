package hillslope

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessellab/acre/internal/field"
)

func peakElevation(rows, cols int) *field.Snapshot {
	f := field.New(rows, cols)
	f.Fill(10)
	f.Set(rows/2, cols/2, 14)
	return f.Snapshot()
}

func testConfig() Config {
	return Config{CellSize: 10, Diffusivity: 50, VegShield: 0.8}
}

func TestTotalElevationConserved(t *testing.T) {
	c, err := New(testConfig(), peakElevation(7, 7))
	require.NoError(t, err)

	before := c.Elevation().Mean()
	require.NoError(t, c.Advance(2.0))
	require.InDelta(t, before, c.Elevation().Mean(), 1e-9, "no-flux creep must conserve material")
}

func TestPeakRelaxes(t *testing.T) {
	c, err := New(testConfig(), peakElevation(7, 7))
	require.NoError(t, err)
	require.NoError(t, c.Advance(1.0))

	elev := c.Elevation()
	require.Less(t, elev.At(3, 3), 14.0)
	require.Greater(t, elev.At(3, 2), 10.0, "material moves downslope into neighbors")
}

func TestVegetationSlowsErosion(t *testing.T) {
	bare, err := New(testConfig(), peakElevation(7, 7))
	require.NoError(t, err)

	shielded, err := New(testConfig(), peakElevation(7, 7))
	require.NoError(t, err)
	full := field.New(7, 7)
	full.Fill(1)
	require.NoError(t, shielded.SetForcing(full.Snapshot()))

	require.NoError(t, bare.Advance(1.0))
	require.NoError(t, shielded.Advance(1.0))

	require.Greater(t, bare.Observe().At(3, 3), shielded.Observe().At(3, 3),
		"full cover must erode slower than bare soil")
}

func TestObserveBeforeAdvanceIsZero(t *testing.T) {
	c, err := New(testConfig(), peakElevation(5, 5))
	require.NoError(t, err)
	obs := c.Observe()
	require.Equal(t, 0.0, obs.Max())
	require.Equal(t, 25, obs.CellCount())
}

func TestConfigAndForcingValidation(t *testing.T) {
	_, err := New(Config{CellSize: 0, Diffusivity: 1}, peakElevation(3, 3))
	require.Error(t, err)
	_, err = New(Config{CellSize: 1, Diffusivity: 1, VegShield: 1.5}, peakElevation(3, 3))
	require.Error(t, err)

	c, err := New(testConfig(), peakElevation(3, 3))
	require.NoError(t, err)
	require.Error(t, c.SetForcing(field.New(3, 4).Snapshot()))
	require.Error(t, c.Advance(0))
}
