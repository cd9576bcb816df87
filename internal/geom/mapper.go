package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Mapper converts grid-index coordinates to longitude/latitude for one grid:
//
//	lon = MinX + x/cols * (MaxX - MinX)
//	lat = MaxY - y/rows * (MaxY - MinY)
//
// Longitudes are folded into [-180, 180]. Latitudes are never wrapped; a
// mapped latitude outside [-90, 90] can only come from rounding and is clamped.
type Mapper struct {
	bbox       BBox
	rows, cols int

	// wraps is set when the grid spans the whole globe with its west border
	// on the antimeridian, so border columns are snapped onto the seam.
	// Grids whose seam falls between two columns are cut where a ring
	// crosses it instead.
	wraps bool
}

// NewMapper validates the box and shape.
func NewMapper(bbox BBox, rows, cols int) (*Mapper, error) {
	if err := bbox.Validate(); err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid shape %dx%d", ErrInvalidBBox, rows, cols)
	}
	m := &Mapper{bbox: bbox, rows: rows, cols: cols}
	if cols > 1 {
		span := bbox.MaxX - bbox.MinX
		tol := seamTolerance(span / float64(cols))
		m.wraps = 360-span <= tol && 180-math.Abs(NormalizeLon(bbox.MinX)) <= tol
	}
	return m, nil
}

// seamSlack is the shortfall from a full turn, in degrees, that any grid may
// have and still count as global.
const seamSlack = 0.5

// seamTolerance is how far a grid's span may fall short of 360 degrees, and
// its west edge sit from -180, for the grid to be treated as global: three
// cells of the mapping step, never less than seamSlack and never a quarter
// turn or more.
func seamTolerance(step float64) float64 {
	return min(max(3*step, seamSlack), 90-1e-9)
}

// Wraps reports whether border columns are treated as the antimeridian seam.
func (m *Mapper) Wraps() bool { return m.wraps }

// Affine maps a grid point without seam snapping or folding.
func (m *Mapper) Affine(p orb.Point) orb.Point {
	lon := m.bbox.MinX + p[0]/float64(m.cols)*(m.bbox.MaxX-m.bbox.MinX)
	lat := m.bbox.MaxY - p[1]/float64(m.rows)*(m.bbox.MaxY-m.bbox.MinY)
	return orb.Point{lon, lat}
}

// Point maps a grid point to a folded longitude/latitude.
func (m *Mapper) Point(p orb.Point) orb.Point {
	g := m.Affine(p)
	return orb.Point{NormalizeLon(g[0]), clampLat(g[1])}
}

// Inverse maps a longitude/latitude back to grid coordinates. Longitudes
// folded by Point are unfolded relative to the box's west edge.
func (m *Mapper) Inverse(g orb.Point) orb.Point {
	lon := g[0]
	if lon < m.bbox.MinX {
		lon += 360
	}
	spanX := m.bbox.MaxX - m.bbox.MinX
	spanY := m.bbox.MaxY - m.bbox.MinY
	var x, y float64
	if spanX != 0 {
		x = (lon - m.bbox.MinX) / spanX * float64(m.cols)
	}
	if spanY != 0 {
		y = (m.bbox.MaxY - g[1]) / spanY * float64(m.rows)
	}
	return orb.Point{x, y}
}

// seamSide classifies a grid point on a wrapping grid's border: -1 for the
// west border, +1 for the east border, 0 otherwise.
func (m *Mapper) seamSide(p orb.Point) int {
	if !m.wraps {
		return 0
	}
	switch p[0] {
	case 0:
		return -1
	case float64(m.cols - 1):
		return 1
	}
	return 0
}

// NormalizeLon folds a longitude into [-180, 180].
func NormalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}
