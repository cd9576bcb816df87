package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"gribsnap/internal/grid"
	"gribsnap/internal/render"
)

const sidebarWidth = 28

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, m.height-1-2) // provisional; will be refined in View
		}
	case renderedMsg:
		m.applyResult(msg)
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.editMode {
			switch msg.String() {
			case "esc":
				m.editMode = false
				m.ta.Blur()
				return m, nil
			case "enter":
				opts, err := parseThresholdSpec(m.ta.Value(), m.opts)
				if err != nil {
					m.status = "thresholds: " + err.Error()
					return m, nil
				}
				m.opts = opts
				m.editMode = false
				m.ta.Blur()
				return m, m.rerender()
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		if m.inspectPopup != "" && msg.String() == "esc" {
			m.inspectPopup = ""
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "+", "=":
			if m.zoom < 64 {
				m.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "-", "_":
			if m.zoom > 0.05 {
				m.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "0":
			m.zoom = 1.0
			m.offsetX, m.offsetY = 0, 0
			m.status = "view reset"
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshSidebar()
				m.l.SetSize(sidebarWidth-2, m.height-1-2)
			}
		case "e":
			if m.field == nil && m.rec.Key == "" {
				m.status = "thresholds: nothing to re-render"
				break
			}
			m.editMode = true
			m.ta.SetValue(formatThresholdSpec(m.opts))
			m.ta.Focus()
			m.status = "edit thresholds"
		case "r":
			return m, m.rerender()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspectPopup = m.inspect()
			m.status = "inspect popup"
		case "[":
			if len(m.layers) > 0 {
				m.cursor = (m.cursor - 1 + len(m.layers)) % len(m.layers)
				m.status = m.layerStatus()
			}
		case "]":
			if len(m.layers) > 0 {
				m.cursor = (m.cursor + 1) % len(m.layers)
				m.status = m.layerStatus()
			}
		case " ":
			if len(m.layers) > 0 {
				m.layers[m.cursor].visible = !m.layers[m.cursor].visible
				m.status = m.layerStatus()
			}
		case "l":
			// toggle all layers
			all := true
			for _, l := range m.layers {
				all = all && l.visible
			}
			for i := range m.layers {
				m.layers[i].visible = !all
			}
			m.status = fmt.Sprintf("layers visible: %v", !all)
		case "enter":
			if m.showSidebar {
				switch it := m.l.SelectedItem().(type) {
				case keyItem:
					if rec, err := m.set.Lookup(it.key); err == nil {
						m.selectRecord(rec)
						return m, renderCmd(m.ctx, m.rec, m.opts)
					}
				case fileItem:
					m.loadPath(it.path)
				}
			}
		case "up":
			m.offsetY -= 1
		case "down":
			m.offsetY += 1
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
	case tea.MouseMsg:
		m.trackHover(msg.X, msg.Y)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) rerender() tea.Cmd {
	if m.rec.Key == "" {
		m.status = "nothing to re-render"
		return nil
	}
	m.selectRecord(m.rec)
	return renderCmd(m.ctx, m.rec, m.opts)
}

func (m Model) layerStatus() string {
	l := m.layers[m.cursor]
	return fmt.Sprintf("band %d/%d  value=%g  %s  visible=%v", m.cursor+1, len(m.layers), l.value, l.color, l.visible)
}

// trackHover converts a terminal cell into lon/lat and, when a field is
// loaded, the grid sample under it. The layout must match View.
func (m *Model) trackHover(cx, cy int) {
	mapOriginX, mapOriginY, mapWidth, mapHeight := m.mapArea()
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, mapHeight-2)
	}
	if cx < mapOriginX || cx >= mapOriginX+mapWidth || cy < mapOriginY || cy >= mapOriginY+mapHeight {
		m.hovering = false
		return
	}
	m.hovering = true
	m.hoverCellX = cx - mapOriginX
	m.hoverCellY = cy - mapOriginY
	lon, lat, ok := m.cellToLonLat(m.hoverCellX, m.hoverCellY, mapWidth, mapHeight)
	m.hoverHasGeo = ok
	m.hoverHasValue = false
	if !ok {
		return
	}
	m.hoverLon, m.hoverLat = lon, lat
	if v, ok := m.sampleAt(lon, lat); ok {
		m.hoverHasValue = true
		m.hoverValue = v
	}
}

// mapArea returns the map origin and size in terminal cells.
func (m Model) mapArea() (x, y, w, h int) {
	sw := 0
	if m.showSidebar {
		sw = sidebarWidth
	}
	headerHeight := 1
	footerHeight := 2
	h = max(4, m.height-headerHeight-footerHeight)
	w = max(10, max(10, m.width)-sw-1)
	x = sw
	if m.showSidebar {
		x++
	}
	return x, headerHeight, w, h
}

// sampleAt reads the nearest grid sample; missing samples report false.
func (m Model) sampleAt(lon, lat float64) (float64, bool) {
	if m.field == nil || m.mapper == nil {
		return 0, false
	}
	p := m.mapper.Inverse(orb.Point{lon, lat})
	row, col := int(math.Round(p[1])), int(math.Round(p[0]))
	v, err := m.field.ValueAt(row, col)
	if err != nil || v == grid.Missing {
		return 0, false
	}
	return v, true
}

func (m Model) inspect() string {
	var meta []string
	switch {
	case m.rec.Key != "":
		r := m.rec
		meta = append(meta,
			"key: "+r.Key,
			"variable: "+r.Variable,
			"units: "+r.Units,
			fmt.Sprintf("grid: %dx%d", r.Rows, r.Cols),
			fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3]),
		)
		if !r.ReferenceTime.IsZero() {
			meta = append(meta, "reference: "+r.ReferenceTime.UTC().Format(time.RFC3339))
		}
		if !r.ForecastTime.IsZero() {
			meta = append(meta, "forecast: "+r.ForecastTime.UTC().Format(time.RFC3339))
		}
		meta = append(meta, fmt.Sprintf("range: min=%g max=%g steps=%d", m.lastRange[0], m.lastRange[1], m.opts.Steps))
		if m.mapper != nil {
			meta = append(meta, fmt.Sprintf("wraps antimeridian: %v", m.mapper.Wraps()))
		}
	case m.selPath != "":
		meta = append(meta, "file: "+m.selPath)
	default:
		return "nothing loaded"
	}
	empty := 0
	for _, l := range m.layers {
		if len(l.polys) == 0 {
			empty++
		}
	}
	meta = append(meta, fmt.Sprintf("bands: %d (%d empty)  points: %d", len(m.layers), empty, countPoints(m.layers)))
	return strings.Join(meta, "\n")
}

// parseThresholdSpec applies "min=.. max=.. steps=.." on top of base; "auto"
// clears an override.
func parseThresholdSpec(s string, base render.Options) (render.Options, error) {
	opts := base
	for _, tok := range strings.Fields(s) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return base, fmt.Errorf("expected key=value, got %q", tok)
		}
		switch strings.ToLower(k) {
		case "min", "max":
			var ptr *float64
			if !strings.EqualFold(v, "auto") {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return base, fmt.Errorf("%s: %w", k, err)
				}
				ptr = &f
			}
			if strings.EqualFold(k, "min") {
				opts.Min = ptr
			} else {
				opts.Max = ptr
			}
		case "steps":
			n, err := strconv.Atoi(v)
			if err != nil {
				return base, fmt.Errorf("steps: %w", err)
			}
			opts.Steps = n
		default:
			return base, fmt.Errorf("unknown key %q", k)
		}
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}

func formatThresholdSpec(o render.Options) string {
	f := func(p *float64) string {
		if p == nil {
			return "auto"
		}
		return strconv.FormatFloat(*p, 'g', -1, 64)
	}
	return fmt.Sprintf("min=%s max=%s steps=%d", f(o.Min), f(o.Max), o.Steps)
}
