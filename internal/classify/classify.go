// Package classify colors band values on a continuous red-blue diverging
// scale.
package classify

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
)

// rdbu is the 11-class RdBu scheme, red (high) to blue (low).
var rdbu = mustPalette(
	"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
	"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
)

func mustPalette(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// Domain is the value range of the scale. Max maps to the red end and Min to
// the blue end; an inverted pair simply flips the scale.
type Domain struct {
	Max, Min float64
}

// Position returns where v falls along the scale, 0 at Max and 1 at Min,
// clamped. Degenerate domains and NaN land in the middle.
func (d Domain) Position(v float64) float64 {
	span := d.Min - d.Max
	if math.IsNaN(v) || span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0.5
	}
	t := (v - d.Max) / span
	return math.Max(0, math.Min(1, t))
}

// ColorFor maps v into the palette. It is a pure function of its arguments.
func ColorFor(v float64, d Domain) color.RGBA {
	r, g, b := at(d.Position(v)).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// at samples the scheme as a uniform cubic B-spline through its stops, the
// same ramp as d3's interpolateRgbBasis. The curve passes through the end
// stops exactly and smooths the ones in between.
func at(t float64) colorful.Color {
	n := len(rdbu) - 1
	var i int
	switch {
	case t <= 0:
		t, i = 0, 0
	case t >= 1:
		t, i = 1, n-1
	default:
		i = int(math.Floor(t * float64(n)))
	}
	s := t*float64(n) - float64(i)
	v1, v2 := rdbu[i], rdbu[i+1]
	v0 := extend(v1, v2)
	if i > 0 {
		v0 = rdbu[i-1]
	}
	v3 := extend(v2, v1)
	if i < n-1 {
		v3 = rdbu[i+2]
	}
	return colorful.Color{
		R: basis(s, v0.R, v1.R, v2.R, v3.R),
		G: basis(s, v0.G, v1.G, v2.G, v3.G),
		B: basis(s, v0.B, v1.B, v2.B, v3.B),
	}
}

// extend reflects b through a, giving the phantom stop past an end.
func extend(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: 2*a.R - b.R, G: 2*a.G - b.G, B: 2*a.B - b.B}
}

func basis(s, v0, v1, v2, v3 float64) float64 {
	s2 := s * s
	s3 := s2 * s
	return ((1-3*s+3*s2-s3)*v0 + (4-6*s2+3*s3)*v1 + (1+3*s+3*s2-3*s3)*v2 + s3*v3) / 6
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	cc, _ := colorful.MakeColor(c)
	return cc.Hex()
}

// Band is one threshold's geometry together with its color. Grid keeps the
// grid-space polygons for raster and SVG output; Geo holds the stitched
// longitude/latitude form.
type Band struct {
	Value  float64
	Color  color.RGBA
	Grid   []orb.Polygon
	Geo    orb.MultiPolygon
	Sphere bool
}

// Empty reports whether the band has no grid geometry.
func (b Band) Empty() bool { return len(b.Grid) == 0 }
