package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gribsnap/internal/classify"
	"gribsnap/internal/contour"
	"gribsnap/internal/geom"
	"gribsnap/internal/grid"
	"gribsnap/internal/render"
)

func ramp(t *testing.T) *grid.Field {
	t.Helper()
	f, err := grid.New([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8}, 3, 3, geom.BBox{MinX: -10, MinY: 0, MaxX: 10, MaxY: 10})
	require.NoError(t, err)
	return f
}

func TestRun(t *testing.T) {
	f := ramp(t)
	opts := render.DefaultOptions()
	opts.Steps = 4
	opts.Workers = 2

	res, err := render.Run(context.Background(), f, opts)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 2, 4, 6}, res.Thresholds.Values)
	require.Equal(t, classify.Domain{Max: 8, Min: 0}, res.Domain)
	require.Equal(t, 3, res.Width)
	require.Equal(t, 3, res.Height)
	require.Len(t, res.Bands, len(res.Thresholds.Values))

	for i, b := range res.Bands {
		require.Equal(t, res.Thresholds.Values[i], b.Value)
		require.Equal(t, classify.ColorFor(b.Value, res.Domain), b.Color)
		require.False(t, b.Empty(), "threshold %g", b.Value)
		require.Len(t, b.Geo, len(b.Grid))
		for _, poly := range b.Geo {
			for _, p := range poly[0] {
				require.GreaterOrEqual(t, p[0], -10.0)
				require.LessOrEqual(t, p[0], 10.0)
				require.GreaterOrEqual(t, p[1], 0.0)
				require.LessOrEqual(t, p[1], 10.0)
			}
		}
	}
}

func TestRunThresholdOverrides(t *testing.T) {
	lo, hi := 2.0, 6.0
	opts := render.Options{Steps: 2, Min: &lo, Max: &hi}
	res, err := render.Run(context.Background(), ramp(t), opts)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 4}, res.Thresholds.Values)
	require.Equal(t, classify.Domain{Max: 6, Min: 2}, res.Domain)
}

func TestRunFlatFieldGivesEmptyBands(t *testing.T) {
	f, err := grid.New([]float64{3, 3, 3, 3}, 2, 2, geom.BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	require.NoError(t, err)
	hi := 10.0
	res, err := render.Run(context.Background(), f, render.Options{Steps: 5, Max: &hi})
	require.NoError(t, err)
	require.Len(t, res.Bands, 5)
	for _, b := range res.Bands {
		require.True(t, b.Empty(), "threshold %g on a flat field", b.Value)
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	f := ramp(t)
	for _, opts := range []render.Options{
		{Steps: 0},
		{Steps: -1},
		{Steps: 3, Workers: -1},
		{Steps: 3, Simplify: -0.5},
	} {
		_, err := render.Run(context.Background(), f, opts)
		require.True(t, errors.Is(err, contour.ErrInvalidConfig), "%+v", opts)
	}

	_, err := render.Run(context.Background(), nil, render.DefaultOptions())
	require.Error(t, err)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := render.Run(ctx, ramp(t), render.DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}
