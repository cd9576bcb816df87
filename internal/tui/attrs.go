package tui

import (
	"fmt"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshAttrsFromCurrent rebuilds the band table from the current layers.
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := m.buildAttributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no bands for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range cols {
		w := len(c) + 2
		for _, r := range rows {
			w = max(w, len(r[len(tcols)-1])+1)
		}
		tcols = append(tcols, table.Column{Title: c, Width: min(w, 24)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, strconv.Itoa(i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes returns one row per band.
func (m *Model) buildAttributes() ([]string, [][]string) {
	if len(m.layers) == 0 {
		return []string{}, [][]string{}
	}
	cols := []string{"value", "color", "polygons", "rings", "points", "sphere", "visible"}
	rows := make([][]string, 0, len(m.layers))
	for _, l := range m.layers {
		rings := 0
		for _, p := range l.polys {
			rings += len(p)
		}
		rows = append(rows, []string{
			strconv.FormatFloat(l.value, 'g', 6, 64),
			l.color,
			strconv.Itoa(len(l.polys)),
			strconv.Itoa(rings),
			strconv.Itoa(pointsIn(l.polys)),
			fmt.Sprintf("%v", l.sphere),
			fmt.Sprintf("%v", l.visible),
		})
	}
	return cols, rows
}
