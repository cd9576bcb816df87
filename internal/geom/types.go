package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidBBox reports a bounding box that cannot describe a grid.
var ErrInvalidBBox = errors.New("geom: invalid bounding box")

// BBox is a geographic extent in degrees: X is longitude, Y is latitude.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// FromArray builds a BBox from the [minLon, minLat, maxLon, maxLat] form used by
// decoded messages.
func FromArray(a [4]float64) BBox {
	return BBox{MinX: a[0], MinY: a[1], MaxX: a[2], MaxY: a[3]}
}

// Array returns the [minLon, minLat, maxLon, maxLat] form.
func (b BBox) Array() [4]float64 {
	return [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// Validate rejects non-finite, inverted or out-of-world boxes.
// Longitudes may use either the [-180, 180] or the [0, 360] convention.
func (b BBox) Validate() error {
	for _, v := range b.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate in %v", ErrInvalidBBox, b.Array())
		}
	}
	if b.MinX > b.MaxX || b.MinY > b.MaxY {
		return fmt.Errorf("%w: min exceeds max in %v", ErrInvalidBBox, b.Array())
	}
	if b.MinY < -90 || b.MaxY > 90 {
		return fmt.Errorf("%w: latitude outside [-90, 90] in %v", ErrInvalidBBox, b.Array())
	}
	if b.MinX < -180 || b.MaxX > 360 || b.MaxX-b.MinX > 360 {
		return fmt.Errorf("%w: longitude span outside one revolution in %v", ErrInvalidBBox, b.Array())
	}
	return nil
}

// Bound converts to an orb.Bound.
func (b BBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}

// Extend grows the box to include p; when first is set the box collapses onto p.
func (b BBox) Extend(p orb.Point, first bool) BBox {
	if first {
		return BBox{MinX: p[0], MinY: p[1], MaxX: p[0], MaxY: p[1]}
	}
	if p[0] < b.MinX {
		b.MinX = p[0]
	}
	if p[1] < b.MinY {
		b.MinY = p[1]
	}
	if p[0] > b.MaxX {
		b.MaxX = p[0]
	}
	if p[1] > b.MaxY {
		b.MaxY = p[1]
	}
	return b
}
