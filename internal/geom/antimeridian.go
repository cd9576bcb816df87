package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// SeamEpsilon is how far an antimeridian point without a partner on the
// other side is pushed off the seam, so stitching leaves it alone.
const SeamEpsilon = 0.0005

// Mapped is the geographic form of one band.
type Mapped struct {
	Polygons orb.MultiPolygon
	// Sphere is set when stitching consumed every ring; Polygons then holds
	// the whole-world polygon.
	Sphere bool
}

// Empty reports whether there is nothing to draw.
func (m Mapped) Empty() bool { return len(m.Polygons) == 0 }

// ToGeographic maps grid-space polygons with a one-off Mapper.
func ToGeographic(polys []orb.Polygon, bbox BBox, rows, cols int) (Mapped, error) {
	m, err := NewMapper(bbox, rows, cols)
	if err != nil {
		return Mapped{}, err
	}
	return m.ToGeographic(polys), nil
}

// ToGeographic maps every ring, then stitches rings cut along the
// antimeridian back together. Edges that cross the seam between two grid
// columns get explicit seam points, so a ring that crosses the antimeridian
// jumps only between -180 and 180 at one latitude. Rings that do not touch
// the seam come out with RFC 7946 winding: outer rings counter-clockwise,
// holes clockwise.
func (m *Mapper) ToGeographic(polys []orb.Polygon) Mapped {
	if len(polys) == 0 {
		return Mapped{}
	}
	out := make(orb.MultiPolygon, 0, len(polys))
	seam := false
	for _, poly := range polys {
		gp := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			gr := make(orb.Ring, 0, len(ring))
			for i, p := range ring {
				g := m.Point(p)
				switch m.seamSide(p) {
				case -1:
					g[0] = -180
				case 1:
					g[0] = 180
				}
				if i > 0 {
					gr = cutAtSeam(gr, g)
				}
				gr = append(gr, g)
			}
			for _, g := range gr {
				if onSeam(g) {
					seam = true
					break
				}
			}
			gp = append(gp, gr)
		}
		out = append(out, gp)
	}

	if seam {
		offsetUnshared(out)
		out = stitch(out)
		if len(out) == 0 {
			return Mapped{Polygons: orb.MultiPolygon{World()}, Sphere: true}
		}
	}
	orient(out)
	return Mapped{Polygons: out}
}

// cutAtSeam appends the seam crossing between r's last point and next when
// the edge between them runs across the antimeridian (a longitude jump of
// more than 180 degrees after folding). The crossing is placed on both sides
// of the seam at the latitude interpolated along the short way round, so the
// ring only ever jumps between two seam points of equal latitude.
func cutAtSeam(r orb.Ring, next orb.Point) orb.Ring {
	prev := r[len(r)-1]
	if math.Abs(next[0]-prev[0]) <= 180 {
		return r
	}
	side, unwrapped := 180.0, next[0]+360
	if prev[0] < 0 {
		side, unwrapped = -180, next[0]-360
	}
	lat := prev[1]
	if d := unwrapped - prev[0]; d != 0 {
		lat += (side - prev[0]) / d * (next[1] - prev[1])
	}
	if a := (orb.Point{side, lat}); a != prev {
		r = append(r, a)
	}
	if b := (orb.Point{-side, lat}); b != next {
		r = append(r, b)
	}
	return r
}

// World is the whole-sphere polygon in flat longitude/latitude.
func World() orb.Polygon {
	return orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}.ToPolygon()
}

func onSeam(p orb.Point) bool { return p[0] == -180 || p[0] == 180 }

// offsetUnshared records which latitudes meet the seam from the west (1) and
// from the east (2), then nudges every seam point whose latitude is not met
// from both sides off the seam.
func offsetUnshared(mp orb.MultiPolygon) {
	shared := map[float64]int{}
	for _, poly := range mp {
		for _, ring := range poly {
			for _, p := range ring {
				switch p[0] {
				case -180:
					shared[p[1]] |= 1
				case 180:
					shared[p[1]] |= 2
				}
			}
		}
	}
	for _, poly := range mp {
		for _, ring := range poly {
			for i, p := range ring {
				if !onSeam(p) || shared[p[1]] == 3 {
					continue
				}
				if p[0] < 0 {
					ring[i][0] = -180 + SeamEpsilon
				} else {
					ring[i][0] = 180 - SeamEpsilon
				}
			}
		}
	}
}

// seamSegment reports an edge that runs along one side of the seam: the
// artificial cut a wrapping grid's border leaves behind.
func seamSegment(a, b orb.Point) bool {
	return onSeam(a) && onSeam(b) && a[0] == b[0]
}

type fragment struct {
	pts []orb.Point
	src int
}

// stitch removes seam segments from outer rings and rejoins the open pieces
// end to start across the seam. Holes never reach a grid border, so they
// follow the outer ring they were attached to.
func stitch(mp orb.MultiPolygon) orb.MultiPolygon {
	outers := make([]orb.Ring, len(mp))
	for i, poly := range mp {
		outers[i] = poly[0]
	}
	rings, owner := stitchRings(outers)

	out := make(orb.MultiPolygon, len(rings))
	for i, r := range rings {
		out[i] = orb.Polygon{r}
	}
	for i, poly := range mp {
		if owner[i] < 0 {
			continue
		}
		out[owner[i]] = append(out[owner[i]], poly[1:]...)
	}
	return out
}

// stitchRings returns the rejoined rings and, per input ring, the index of
// the output ring it ended up in (-1 when it degenerated away).
func stitchRings(rings []orb.Ring) ([]orb.Ring, []int) {
	owner := make([]int, len(rings))
	var out []orb.Ring
	var frags []fragment

	for i, r := range rings {
		owner[i] = -1
		pts := []orb.Point(r[:len(r)-1])
		n := len(pts)
		first := -1
		for k := 0; k < n; k++ {
			if seamSegment(pts[k], pts[(k+1)%n]) {
				first = k
				break
			}
		}
		if first < 0 {
			owner[i] = len(out)
			out = append(out, r)
			continue
		}
		var cur []orb.Point
		for j := 1; j <= n; j++ {
			k := (first + j) % n
			cur = append(cur, pts[k])
			if seamSegment(pts[k], pts[(k+1)%n]) {
				if len(cur) >= 2 {
					frags = append(frags, fragment{pts: cur, src: i})
				}
				cur = nil
			}
		}
	}

	used := make([]bool, len(frags))
	for i := range frags {
		if used[i] {
			continue
		}
		used[i] = true
		ring := append(orb.Ring{}, frags[i].pts...)
		members := []int{frags[i].src}
		startLat := ring[0][1]
		for {
			end := ring[len(ring)-1]
			if end[1] == startLat {
				break
			}
			j := nextFragment(frags, used, end)
			if j < 0 {
				break
			}
			used[j] = true
			ring = append(ring, frags[j].pts...)
			members = append(members, frags[j].src)
		}
		ring = append(ring, ring[0])
		if len(ring) < 4 {
			continue
		}
		for _, src := range members {
			if owner[src] < 0 {
				owner[src] = len(out)
			}
		}
		out = append(out, ring)
	}
	return out, owner
}

// nextFragment finds the unused fragment starting at end's latitude,
// preferring one that starts on the opposite side of the seam.
func nextFragment(frags []fragment, used []bool, end orb.Point) int {
	same := -1
	for j, f := range frags {
		if used[j] || f.pts[0][1] != end[1] {
			continue
		}
		if f.pts[0][0] != end[0] {
			return j
		}
		if same < 0 {
			same = j
		}
	}
	return same
}

// orient applies RFC 7946 winding to rings that stay on one side of the seam.
func orient(mp orb.MultiPolygon) {
	for _, poly := range mp {
		for k, ring := range poly {
			if crossesSeam(ring) {
				continue
			}
			want := orb.CCW
			if k > 0 {
				want = orb.CW
			}
			if o := ring.Orientation(); o != 0 && o != want {
				ring.Reverse()
			}
		}
	}
}

func crossesSeam(r orb.Ring) bool {
	for i, p := range r {
		if onSeam(p) {
			return true
		}
		if i > 0 && math.Abs(p[0]-r[i-1][0]) > 180 {
			return true
		}
	}
	return false
}
