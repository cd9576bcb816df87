package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Simplify runs Douglas-Peucker with the given tolerance (degrees) over a
// copy of mp. Rings that fall below four points are dropped; a polygon whose
// outer ring goes is dropped entirely.
func Simplify(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	if tolerance <= 0 || len(mp) == 0 {
		return mp
	}
	s := simplify.DouglasPeucker(tolerance)
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, poly := range mp {
		var kept orb.Polygon
		for k, ring := range poly {
			r := s.Ring(ring.Clone())
			if len(r) < 4 {
				if k == 0 {
					break
				}
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}
