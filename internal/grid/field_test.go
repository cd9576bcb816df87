package grid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gribsnap/internal/geom"
	"gribsnap/internal/grid"
)

var unitBox = geom.BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

func TestNewRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name       string
		values     []float64
		rows, cols int
		want       error
	}{
		{"short", []float64{1, 2, 3}, 2, 2, grid.ErrShape},
		{"long", []float64{1, 2, 3, 4, 5}, 2, 2, grid.ErrShape},
		{"zero rows", nil, 0, 3, grid.ErrEmpty},
		{"negative cols", nil, 2, -1, grid.ErrEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := grid.New(tc.values, tc.rows, tc.cols, unitBox)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestNewRejectsBadBBox(t *testing.T) {
	_, err := grid.New([]float64{1}, 1, 1, geom.BBox{MinX: 5, MaxX: 1, MinY: 0, MaxY: 1})
	require.True(t, errors.Is(err, geom.ErrInvalidBBox))
}

func TestValueAt(t *testing.T) {
	f, err := grid.New([]float64{1, 2, 3, 4, 5, 6}, 2, 3, unitBox)
	require.NoError(t, err)
	require.Equal(t, 3, f.Width())
	require.Equal(t, 2, f.Height())

	v, err := f.ValueAt(1, 2)
	require.NoError(t, err)
	require.Equal(t, 6.0, v)

	v, err = f.ValueAt(0, 1)
	require.NoError(t, err)
	require.Equal(t, 2.0, v)

	for _, rc := range [][2]int{{2, 0}, {0, 3}, {-1, 0}, {0, -1}} {
		_, err := f.ValueAt(rc[0], rc[1])
		require.True(t, errors.Is(err, grid.ErrOutOfRange), "(%d,%d)", rc[0], rc[1])
	}
}

func TestMissingValuesNormalized(t *testing.T) {
	values := []float64{math.NaN(), 2, math.Inf(1), -999, 7, 3}
	f, err := grid.New(values, 2, 3, unitBox, grid.WithMissingValue(-999))
	require.NoError(t, err)

	got := f.Values()
	require.Equal(t, grid.Missing, got[0])
	require.Equal(t, grid.Missing, got[2])
	require.Equal(t, grid.Missing, got[3])
	require.Equal(t, 7.0, got[4])

	lo, hi, ok := f.Extent()
	require.True(t, ok)
	require.Equal(t, 2.0, lo)
	require.Equal(t, 7.0, hi)

	// the caller's slice is untouched
	require.True(t, math.IsNaN(values[0]))
}

func TestHasMissing(t *testing.T) {
	f, err := grid.New([]float64{1, -999, 3}, 1, 3, unitBox, grid.WithMissingValue(-999))
	require.NoError(t, err)
	require.True(t, f.HasMissing())

	f, err = grid.New([]float64{1, 2, 3}, 1, 3, unitBox)
	require.NoError(t, err)
	require.False(t, f.HasMissing())
}

func TestExtentAllMissing(t *testing.T) {
	f, err := grid.New([]float64{math.NaN(), math.NaN()}, 1, 2, unitBox)
	require.NoError(t, err)
	_, _, ok := f.Extent()
	require.False(t, ok)
}

func TestValuesIsACopy(t *testing.T) {
	f, err := grid.New([]float64{1, 2}, 1, 2, unitBox)
	require.NoError(t, err)
	v := f.Values()
	v[0] = 100
	got, _ := f.ValueAt(0, 0)
	require.Equal(t, 1.0, got)
}
