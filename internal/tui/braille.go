package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	c    [][]int   // per-cell layer index + 1; last writer wins
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	c := make([][]int, h)
	for i := range m {
		m[i] = make([]uint8, w)
		c[i] = make([]int, w)
	}
	return &brailleBuf{w: w, h: h, m: m, c: c}
}

// brailleBits indexes the dot bit by [column][row] inside a 2x4 cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell) in color slot c.
func (b *brailleBuf) setPixel(mx, my, c int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= brailleBits[rx][ry]
	b.c[cy][cx] = c
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1, c int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// toLines renders the buffer, styling runs of cells that share a color slot.
// Slot 0 is unstyled; slot i uses styles[i-1].
func (b *brailleBuf) toLines(styles []lipgloss.Style) []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		out[y] = b.row(y, styles, -1, "")
	}
	return out
}

// row renders one line; when markX is inside the row, that cell is replaced
// by the pre-rendered mark.
func (b *brailleBuf) row(y int, styles []lipgloss.Style, markX int, mark string) string {
	var sb strings.Builder
	run := make([]rune, 0, b.w)
	slot := 0
	flush := func() {
		if len(run) == 0 {
			return
		}
		if slot > 0 && slot-1 < len(styles) {
			sb.WriteString(styles[slot-1].Render(string(run)))
		} else {
			sb.WriteString(string(run))
		}
		run = run[:0]
	}
	for x := 0; x < b.w; x++ {
		if x == markX {
			flush()
			sb.WriteString(mark)
			continue
		}
		mask := b.m[y][x]
		c := b.c[y][x]
		r := ' '
		if mask == 0 {
			c = 0
		} else {
			r = rune(0x2800 + int(mask))
		}
		if c != slot {
			flush()
			slot = c
		}
		run = append(run, r)
	}
	flush()
	return sb.String()
}
