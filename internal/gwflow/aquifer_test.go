package gwflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessellab/acre/internal/field"
)

func flat(rows, cols int, v float64) *field.Snapshot {
	f := field.New(rows, cols)
	f.Fill(v)
	return f.Snapshot()
}

func testConfig() Config {
	return Config{
		CellSize:      100,
		Conductivity:  5,
		SpecificYield: 0.1,
		Base:          0,
		Boundary:      BoundaryClosed,
	}
}

func TestNewValidatesShapesAndParams(t *testing.T) {
	_, err := New(testConfig(), flat(3, 3, 10), flat(3, 4, 5))
	require.Error(t, err)

	bad := testConfig()
	bad.SpecificYield = 0
	_, err = New(bad, flat(3, 3, 10), flat(3, 3, 5))
	require.Error(t, err)

	bad = testConfig()
	bad.CellSize = 0
	_, err = New(bad, flat(3, 3, 10), flat(3, 3, 5))
	require.Error(t, err)
}

func TestUniformHeadIsSteadyState(t *testing.T) {
	a, err := New(testConfig(), flat(5, 5, 20), flat(5, 5, 12))
	require.NoError(t, err)

	require.NoError(t, a.Advance(1.0))
	head := a.Head()
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			require.InDelta(t, 12.0, head.At(r, c), 1e-9)
		}
	}
}

func TestClosedSystemMassBalance(t *testing.T) {
	// Non-uniform initial head, closed border, no recharge: diffusion must
	// redistribute water without creating or destroying it.
	init := field.New(6, 6)
	init.Fill(10)
	init.Set(2, 2, 14)
	init.Set(3, 4, 8)

	a, err := New(testConfig(), flat(6, 6, 30), init.Snapshot())
	require.NoError(t, err)

	before := a.Head().Mean()
	require.NoError(t, a.Advance(5.0))
	after := a.Head().Mean()
	require.InDelta(t, before, after, 1e-9)

	// The peak must have relaxed toward the mean.
	require.Less(t, a.Head().At(2, 2), 14.0)
	require.Greater(t, a.Head().At(3, 4), 8.0)
}

func TestUniformRechargeRaisesHead(t *testing.T) {
	cfg := testConfig()
	a, err := New(cfg, flat(4, 4, 30), flat(4, 4, 10))
	require.NoError(t, err)

	r := field.New(4, 4)
	r.Fill(0.002) // m/day
	require.NoError(t, a.SetForcing(r.Snapshot()))

	require.NoError(t, a.Advance(1.0))
	// Δh = dt·R/Sy = 1·0.002/0.1 = 0.02 m everywhere.
	require.InDelta(t, 10.02, a.Head().Mean(), 1e-9)
}

func TestPumpingDrawsDownLocally(t *testing.T) {
	a, err := New(testConfig(), flat(7, 7, 30), flat(7, 7, 15))
	require.NoError(t, err)

	pump := field.New(7, 7)
	pump.Set(3, 3, -0.05)
	require.NoError(t, a.SetForcing(pump.Snapshot()))

	require.NoError(t, a.Advance(2.0))
	head := a.Head()
	require.Less(t, head.At(3, 3), 15.0)
	// Drawdown is deepest at the well.
	require.Less(t, head.At(3, 3), head.At(0, 0))
}

func TestFixedHeadBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.Boundary = BoundaryFixedHead
	cfg.BoundaryHead = 9

	a, err := New(cfg, flat(5, 5, 30), flat(5, 5, 12))
	require.NoError(t, err)
	require.NoError(t, a.Advance(1.0))

	head := a.Head()
	for c := 0; c < 5; c++ {
		require.InDelta(t, 9.0, head.At(0, c), 1e-9)
		require.InDelta(t, 9.0, head.At(4, c), 1e-9)
	}
}

func TestObserveDepthToWater(t *testing.T) {
	a, err := New(testConfig(), flat(3, 3, 10), flat(3, 3, 4))
	require.NoError(t, err)

	obs := a.Observe()
	require.Equal(t, 9, obs.CellCount())
	require.InDelta(t, 6.0, obs.At(1, 1), 1e-9)
}

func TestForcingShapeMismatch(t *testing.T) {
	a, err := New(testConfig(), flat(3, 3, 10), flat(3, 3, 4))
	require.NoError(t, err)
	require.Error(t, a.SetForcing(flat(3, 4, 0)))
	require.Error(t, a.Advance(0))
}
