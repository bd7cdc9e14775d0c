package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldIndexing(t *testing.T) {
	f := New(3, 4)
	require.Equal(t, 3, f.Rows())
	require.Equal(t, 4, f.Cols())
	require.Equal(t, 12, f.CellCount())

	f.Set(1, 2, 7.5)
	require.Equal(t, 7.5, f.At(1, 2))
	// Row-major: (1,2) must not alias (2,1).
	require.Equal(t, 0.0, f.At(2, 1))

	f.AddAt(1, 2, 0.5)
	require.Equal(t, 8.0, f.At(1, 2))
}

func TestFromSliceShapeCheck(t *testing.T) {
	_, err := FromSlice(2, 2, []float64{1, 2, 3})
	require.Error(t, err)

	f, err := FromSlice(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 3.0, f.At(1, 0))
}

func TestStats(t *testing.T) {
	f, err := FromSlice(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, 1.0, f.Min())
	require.Equal(t, 6.0, f.Max())
	require.InDelta(t, 3.5, f.Mean(), 1e-12)
}

func TestSnapshotIsImmutable(t *testing.T) {
	f := New(2, 2)
	f.Fill(1)
	s := f.Snapshot()

	f.Set(0, 0, 99)
	require.Equal(t, 1.0, s.At(0, 0), "snapshot must not observe later field mutation")

	// The round trip back to a field is also an independent copy.
	g := s.Field()
	g.Set(1, 1, 42)
	require.Equal(t, 1.0, s.At(1, 1))
}

func TestSnapshotEqual(t *testing.T) {
	f := New(2, 2)
	f.Fill(0.5)
	a := f.Snapshot()
	b := f.Snapshot()
	require.True(t, a.Equal(b, 0))

	f.Set(0, 1, 0.6)
	c := f.Snapshot()
	require.False(t, a.Equal(c, 1e-9))
	require.False(t, a.Equal(nil, 0))

	g := New(2, 3)
	require.False(t, a.Equal(g.Snapshot(), 0))
}

func TestCloneIndependence(t *testing.T) {
	f := New(2, 2)
	f.Fill(3)
	c := f.Clone()
	c.Set(0, 0, -1)
	require.Equal(t, 3.0, f.At(0, 0))
}

func TestOutOfBoundsPanics(t *testing.T) {
	f := New(2, 2)
	require.Panics(t, func() { f.At(2, 0) })
	require.Panics(t, func() { f.Set(0, -1, 1) })
	require.Panics(t, func() { New(0, 5) })
}
