package geom_test

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"gribsnap/internal/geom"
)

func TestNormalizeLon(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		180:  180,
		-180: -180,
		190:  -170,
		270:  -90,
		-190: 170,
		540:  180,
	}
	for in, want := range cases {
		require.Equal(t, want, geom.NormalizeLon(in), "lon %g", in)
	}
}

func TestNewMapperErrors(t *testing.T) {
	_, err := geom.NewMapper(geom.BBox{MinX: 10, MinY: 0, MaxX: 0, MaxY: 10}, 2, 2)
	require.True(t, errors.Is(err, geom.ErrInvalidBBox))

	_, err = geom.NewMapper(geom.BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, 0, 2)
	require.True(t, errors.Is(err, geom.ErrInvalidBBox))

	_, err = geom.NewMapper(geom.BBox{MinX: 0, MinY: -95, MaxX: 10, MaxY: 10}, 2, 2)
	require.True(t, errors.Is(err, geom.ErrInvalidBBox))
}

func TestMapperPoint(t *testing.T) {
	m, err := geom.NewMapper(geom.BBox{MinX: -10, MinY: 0, MaxX: 10, MaxY: 10}, 4, 4)
	require.NoError(t, err)
	require.False(t, m.Wraps())

	require.Equal(t, orb.Point{-10, 10}, m.Point(orb.Point{0, 0}))
	require.Equal(t, orb.Point{0, 5}, m.Point(orb.Point{2, 2}))
	require.Equal(t, orb.Point{5, 2.5}, m.Point(orb.Point{3, 3}))
}

func TestMapperRoundTrip(t *testing.T) {
	boxes := []geom.BBox{
		{MinX: -10, MinY: 0, MaxX: 10, MaxY: 10},
		{MinX: 0, MinY: -90, MaxX: 360, MaxY: 90},
		{MinX: 100, MinY: -45, MaxX: 260, MaxY: 45},
	}
	for _, bbox := range boxes {
		m, err := geom.NewMapper(bbox, 8, 16)
		require.NoError(t, err)
		for _, p := range []orb.Point{{0.5, 0.5}, {3, 7}, {12.25, 4}, {14.9, 0.1}} {
			back := m.Inverse(m.Point(p))
			require.InDelta(t, p[0], back[0], 1e-9, "bbox %v point %v", bbox, p)
			require.InDelta(t, p[1], back[1], 1e-9, "bbox %v point %v", bbox, p)
		}
	}
}

func TestMapperFoldsEasternLongitudes(t *testing.T) {
	m, err := geom.NewMapper(geom.BBox{MinX: 0, MinY: -90, MaxX: 360, MaxY: 90}, 2, 4)
	require.NoError(t, err)
	g := m.Point(orb.Point{3, 0})
	require.Equal(t, -90.0, g[0])
	require.Equal(t, 90.0, g[1])
}

func TestMapperWraps(t *testing.T) {
	m, err := geom.NewMapper(geom.BBox{MinX: -179.9, MinY: 0, MaxX: 179.9, MaxY: 10}, 3, 4)
	require.NoError(t, err)
	require.True(t, m.Wraps())

	m, err = geom.NewMapper(geom.BBox{MinX: -179.9, MinY: 0, MaxX: 179.9, MaxY: 10}, 3, 3600)
	require.NoError(t, err)
	require.True(t, m.Wraps(), "a nominally global span wraps at any resolution")

	m, err = geom.NewMapper(geom.BBox{MinX: 180, MinY: 0, MaxX: 539.5, MaxY: 10}, 3, 720)
	require.NoError(t, err)
	require.True(t, m.Wraps(), "a west edge at +180 is the same seam")

	m, err = geom.NewMapper(geom.BBox{MinX: 0, MinY: -90, MaxX: 359.75, MaxY: 90}, 3, 1440)
	require.NoError(t, err)
	require.False(t, m.Wraps(), "border columns on the prime meridian are not on the antimeridian")

	m, err = geom.NewMapper(geom.BBox{MinX: -170, MinY: 0, MaxX: 20, MaxY: 10}, 3, 2)
	require.NoError(t, err)
	require.False(t, m.Wraps(), "coarse steps never stretch a regional grid round the globe")
}
