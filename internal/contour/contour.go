// Package contour plans iso-values over a grid and extracts filled contour
// polygons with marching squares.
//
// A sample belongs to the band of threshold t when its value is >= t. The grid
// is treated as if surrounded by a border of below-threshold samples, so every
// ring closes; crossings onto that virtual border are placed on the real
// border sample, which keeps all coordinates inside [0, cols-1] x [0, rows-1].
//
// Saddle cells (two diagonal corners high, two low) always separate the high
// corners: the cell center is taken to be below the threshold.
package contour

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"gribsnap/internal/grid"
)

// Band holds the filled polygons for one threshold. Rings are in grid-index
// space: x is the fractional column, y the fractional row (row 0 first).
// Outer rings are counter-clockwise in that (x, y) frame, holes clockwise.
type Band struct {
	Value    float64
	Polygons []orb.Polygon
}

// Empty reports whether the band has no geometry.
func (b Band) Empty() bool { return len(b.Polygons) == 0 }

// Rings counts outer rings and holes.
func (b Band) Rings() int {
	n := 0
	for _, p := range b.Polygons {
		n += len(p)
	}
	return n
}

// Extract returns one band per threshold, in threshold order.
func Extract(f *grid.Field, thresholds []float64) []Band {
	bands := make([]Band, len(thresholds))
	for i, t := range thresholds {
		bands[i] = ExtractBand(f, t)
	}
	return bands
}

// ExtractBand contours a single threshold. Any t in [min, max] of the
// non-missing samples is traced, so t == min covers every sample that has
// data. A flat field, a non-finite threshold, a threshold above the maximum,
// or one below the minimum of a field without missing samples yields an
// empty band.
func ExtractBand(f *grid.Field, t float64) Band {
	band := Band{Value: t}
	if f == nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return band
	}
	lo, hi, ok := f.Extent()
	if !ok || lo == hi || t > hi || (t < lo && !f.HasMissing()) {
		return band
	}
	tr := newTracer(f, t)
	tr.march()
	band.Polygons = assemble(tr.rings())
	return band
}

// Cell corners are numbered tl, tr, br, bl; edge i joins corner i and corner
// (i+1)%4, so edges are top, right, bottom, left.
var (
	cornerOffsets = [4][2]int{{0, 0}, {0, 1}, {1, 1}, {1, 0}} // (dr, dc)
	edgeMidpoints = [4]orb.Point{{0.5, 0}, {1, 0.5}, {0.5, 1}, {0, 0.5}}
	cornerPoints  = [4]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
)

type segment struct {
	to    int       // edge key the segment ends on
	start orb.Point // crossing on the edge the segment starts from
}

// tracer walks the padded grid: padded (r, c) is sample (r-1, c-1).
type tracer struct {
	f      *grid.Field
	t      float64
	pcols  int
	segs   map[int]segment
	starts []int
}

func newTracer(f *grid.Field, t float64) *tracer {
	return &tracer{f: f, t: t, pcols: f.Cols() + 2, segs: make(map[int]segment)}
}

func (tr *tracer) real(r, c int) bool {
	return r >= 1 && r <= tr.f.Rows() && c >= 1 && c <= tr.f.Cols()
}

func (tr *tracer) high(r, c int) bool {
	return tr.real(r, c) && tr.f.At(r-1, c-1) >= tr.t
}

// edgeKey identifies the grid edge between padded points a and b, which
// must be horizontal or vertical neighbours.
func (tr *tracer) edgeKey(r0, c0, r1, c1 int) int {
	vertical := r1 != r0
	if r1 < r0 || c1 < c0 {
		r0, c0 = r1, c1
	}
	k := (r0*tr.pcols + c0) * 2
	if vertical {
		k++
	}
	return k
}

// crossing interpolates where the field equals t along edge a-b.
func (tr *tracer) crossing(r0, c0, r1, c1 int) orb.Point {
	x0, y0 := float64(c0-1), float64(r0-1)
	x1, y1 := float64(c1-1), float64(r1-1)
	switch {
	case !tr.real(r0, c0):
		return orb.Point{x1, y1}
	case !tr.real(r1, c1):
		return orb.Point{x0, y0}
	}
	v0, v1 := tr.f.At(r0-1, c0-1), tr.f.At(r1-1, c1-1)
	frac := (tr.t - v0) / (v1 - v0)
	return orb.Point{x0 + frac*(x1-x0), y0 + frac*(y1-y0)}
}

func (tr *tracer) march() {
	for r := 0; r <= tr.f.Rows(); r++ {
		for c := 0; c <= tr.f.Cols(); c++ {
			tr.cell(r, c)
		}
	}
}

func (tr *tracer) cell(r, c int) {
	var high [4]bool
	for i, o := range cornerOffsets {
		high[i] = tr.high(r+o[0], c+o[1])
	}
	var crossed []int
	for e := 0; e < 4; e++ {
		if high[e] != high[(e+1)%4] {
			crossed = append(crossed, e)
		}
	}
	switch len(crossed) {
	case 0:
		return
	case 2:
		tr.add(r, c, high, crossed[0], crossed[1])
	case 4:
		// saddle: cut off each high corner on its own
		if high[0] {
			tr.add(r, c, high, 3, 0)
			tr.add(r, c, high, 1, 2)
		} else {
			tr.add(r, c, high, 0, 1)
			tr.add(r, c, high, 2, 3)
		}
	}
}

// add records the segment between edges a and b of cell (r, c), oriented so
// high corners lie to its left in the y-down frame (positive cross product).
func (tr *tracer) add(r, c int, high [4]bool, a, b int) {
	corner := 0
	switch {
	case b == (a+1)%4:
		corner = b
	case a == (b+1)%4:
		corner = a
	}
	ma, mb, p := edgeMidpoints[a], edgeMidpoints[b], cornerPoints[corner]
	cross := (mb[0]-ma[0])*(p[1]-ma[1]) - (mb[1]-ma[1])*(p[0]-ma[0])
	if (cross > 0) != high[corner] {
		a, b = b, a
	}

	ar0, ac0, ar1, ac1 := tr.edgeEnds(r, c, a)
	br0, bc0, br1, bc1 := tr.edgeEnds(r, c, b)
	from := tr.edgeKey(ar0, ac0, ar1, ac1)
	tr.segs[from] = segment{
		to:    tr.edgeKey(br0, bc0, br1, bc1),
		start: tr.crossing(ar0, ac0, ar1, ac1),
	}
	tr.starts = append(tr.starts, from)
}

func (tr *tracer) edgeEnds(r, c, e int) (r0, c0, r1, c1 int) {
	a, b := cornerOffsets[e], cornerOffsets[(e+1)%4]
	return r + a[0], c + a[1], r + b[0], c + b[1]
}

// rings chains segments into closed rings in scan order.
func (tr *tracer) rings() []orb.Ring {
	var out []orb.Ring
	for _, start := range tr.starts {
		if _, ok := tr.segs[start]; !ok {
			continue
		}
		var ring orb.Ring
		key := start
		for {
			s, ok := tr.segs[key]
			if !ok {
				break
			}
			delete(tr.segs, key)
			if n := len(ring); n == 0 || ring[n-1] != s.start {
				ring = append(ring, s.start)
			}
			key = s.to
			if key == start {
				break
			}
		}
		for len(ring) > 1 && ring[len(ring)-1] == ring[0] {
			ring = ring[:len(ring)-1]
		}
		if len(ring) < 3 {
			continue
		}
		out = append(out, append(ring, ring[0]))
	}
	return out
}

// assemble pairs every hole with the smallest outer ring that contains it.
func assemble(rings []orb.Ring) []orb.Polygon {
	var polys []orb.Polygon
	var areas []float64
	var holes []orb.Ring
	for _, r := range rings {
		switch r.Orientation() {
		case orb.CCW:
			polys = append(polys, orb.Polygon{r})
			areas = append(areas, math.Abs(planar.Area(r)))
		case orb.CW:
			holes = append(holes, r)
		}
	}
	if len(holes) == 0 {
		return polys
	}

	// smallest first so the innermost container wins
	order := make([]int, len(polys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return areas[order[i]] < areas[order[j]] })

	for _, h := range holes {
		at := pointOnHole(h)
		for _, i := range order {
			if planar.RingContains(polys[i][0], at) {
				polys[i] = append(polys[i], h)
				break
			}
		}
	}
	return polys
}

// pointOnHole picks the midpoint of the hole's first edge; hole vertices
// never sit on an outer ring, but a midpoint keeps clear of shared corners.
func pointOnHole(h orb.Ring) orb.Point {
	return orb.Point{(h[0][0] + h[1][0]) / 2, (h[0][1] + h[1][1]) / 2}
}
