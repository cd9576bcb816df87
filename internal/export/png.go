package export

import (
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"gribsnap/internal/classify"
)

// Rasterize fills every band's grid-space polygons, in band order, onto a
// transparent width x height canvas scaled by scale. Holes are wound against
// their outer ring, so the rasterizer's winding accumulation leaves them open.
func Rasterize(width, height int, scale float64, bands []classify.Band) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(float64(width) * scale))
	h := int(math.Ceil(float64(height) * scale))
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	z := vector.NewRasterizer(dst.Bounds().Dx(), dst.Bounds().Dy())
	for _, b := range bands {
		if b.Empty() {
			continue
		}
		z.Reset(dst.Bounds().Dx(), dst.Bounds().Dy())
		for _, poly := range b.Grid {
			for _, ring := range poly {
				if len(ring) < 3 {
					continue
				}
				z.MoveTo(float32(ring[0][0]*scale), float32(ring[0][1]*scale))
				for _, p := range ring[1:] {
					z.LineTo(float32(p[0]*scale), float32(p[1]*scale))
				}
				z.ClosePath()
			}
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(b.Color), image.Point{})
	}
	return dst
}

// WritePNG rasterizes the bands and encodes the result as PNG.
func WritePNG(w io.Writer, width, height int, scale float64, bands []classify.Band) error {
	return png.Encode(w, Rasterize(width, height, scale, bands))
}
