package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"gribsnap/internal/classify"
)

// PathData renders a polygon in the SVG path mini-language: each ring is
// "Mx,y" followed by "Lx,y" moves and a closing "Z", outer ring first.
// The repeated closing point of a ring is left to Z.
func PathData(p orb.Polygon) string {
	var sb strings.Builder
	for _, ring := range p {
		n := len(ring)
		if n > 1 && ring[0] == ring[n-1] {
			n--
		}
		if n == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.WriteString(num(ring[i][0]))
			sb.WriteByte(',')
			sb.WriteString(num(ring[i][1]))
		}
		sb.WriteByte('Z')
	}
	return sb.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Path is one <path> element.
type Path struct {
	D    string
	Fill string
}

// SVGPaths pairs every grid-space polygon with its band's fill, in band order.
func SVGPaths(bands []classify.Band) []Path {
	var out []Path
	for _, b := range bands {
		fill := classify.Hex(b.Color)
		for _, p := range b.Grid {
			if d := PathData(p); d != "" {
				out = append(out, Path{D: d, Fill: fill})
			}
		}
	}
	return out
}

// WriteSVG writes a standalone SVG document sized width x height with a
// matching viewBox. Coordinates are grid space, so width and height are the
// grid's column and row counts.
func WriteSVG(w io.Writer, width, height int, bands []classify.Band) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	for _, p := range SVGPaths(bands) {
		fmt.Fprintf(bw, `  <path d="%s" fill="%s" fill-rule="evenodd"/>`+"\n", p.D, p.Fill)
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}
