package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellToLonLat converts a map cell coordinate back to lon/lat using bbox, zoom, and pan.
func (m Model) cellToLonLat(cx, cy, w, h int) (float64, float64, bool) {
	if !(m.bbox.MaxX > m.bbox.MinX && m.bbox.MaxY > m.bbox.MinY) {
		return 0, 0, false
	}
	if w <= 1 || h <= 1 {
		return 0, 0, false
	}
	zx := float64(cx-m.offsetX) / float64(w-1)
	zy := 1.0 - float64(cy-m.offsetY)/float64(h-1)
	nx := 0.5 + (zx-0.5)/m.zoom
	ny := 0.5 + (zy-0.5)/m.zoom
	lon := m.bbox.MinX + nx*(m.bbox.MaxX-m.bbox.MinX)
	lat := m.bbox.MinY + ny*(m.bbox.MaxY-m.bbox.MinY)
	return lon, lat, true
}

// renderMap draws visible bands in threshold order, each filled and outlined
// in its own color, so higher bands paint over the lower ones they nest in.
func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)
	styles := make([]lipgloss.Style, len(m.layers))
	for i, l := range m.layers {
		styles[i] = bandStyle(l.color)
	}

	for i, l := range m.layers {
		if !l.visible {
			continue
		}
		slot := i + 1
		for _, poly := range l.polys {
			var ringsMic [][][2]int
			for _, ring := range poly {
				var sm [][2]int
				for _, p := range ring {
					mx, my, ok := m.screenXYMicro(p[0], p[1], w, h)
					if !ok {
						continue
					}
					sm = append(sm, [2]int{mx, my})
				}
				if len(sm) >= 3 {
					ringsMic = append(ringsMic, sm)
				}
			}
			if len(ringsMic) == 0 {
				continue
			}
			fillEvenOdd(br, ringsMic, slot)
			for _, r := range ringsMic {
				for k := range r {
					a, b := r[k], r[(k+1)%len(r)]
					br.drawLineMicro(a[0], a[1], b[0], b[1], slot)
				}
			}
		}
	}

	lines := br.toLines(styles)

	if m.hovering && m.hoverCellY >= 0 && m.hoverCellY < h {
		lines[m.hoverCellY] = br.row(m.hoverCellY, styles, m.hoverCellX, markStyle.Render("◯"))
	}
	return strings.Join(lines, "\n")
}

// screenXYMicro maps lon/lat into a 2x4 microgrid per cell for braille rendering.
func (m Model) screenXYMicro(lon, lat float64, w, h int) (int, int, bool) {
	if !(m.bbox.MaxX > m.bbox.MinX && m.bbox.MaxY > m.bbox.MinY) {
		return 0, 0, false
	}
	nx := (lon - m.bbox.MinX) / (m.bbox.MaxX - m.bbox.MinX)
	ny := (lat - m.bbox.MinY) / (m.bbox.MaxY - m.bbox.MinY)
	zx := 0.5 + (nx-0.5)*m.zoom
	zy := 0.5 + (ny-0.5)*m.zoom
	wMic := w * 2
	hMic := h * 4
	sx := int(zx*float64(wMic-1)) + m.offsetX*2
	sy := int((1.0-zy)*float64(hMic-1)) + m.offsetY*4
	return sx, sy, true
}
