package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	_, _, mapWidth, contentHeight := m.mapArea()
	contentWidth := max(10, m.width)

	// Update list size with accurate content height when sidebar visible
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}

	// Header
	title := " gribsnap ─ contour preview "
	if m.rec.Key != "" {
		title += "─ " + m.rec.Key + " "
	}
	header := titleStyle.Render(title)
	header = lipgloss.NewStyle().Width(contentWidth).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	mapHeight := contentHeight
	// track map size for inspect (use full area; map canvas has no border)
	m.mapW = max(8, mapWidth)
	m.mapH = max(4, mapHeight)
	var mapView string
	switch {
	case m.showAttrs:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		if colW == 0 {
			colW = min(60, contentWidth-6)
		}
		maxW := min(mapWidth, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.editMode:
		m.ta.SetWidth(min(m.mapW, 60))
		editor := boxStyle.Render(titleStyle.Render("thresholds") + "\n" + m.ta.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, editor)
	default:
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.renderMap(m.mapW, m.mapH))
	}

	// Inspect popup (center-left overlay)
	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		maxPopupW := max(20, min(56, contentWidth/2))
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = lipgloss.Place(contentWidth, contentHeight, lipgloss.Left, lipgloss.Center, box)
	}

	var body string
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	} else {
		body = mapView
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hoverHasGeo {
		s := fmt.Sprintf("  lon=%.5f lat=%.5f", m.hoverLon, m.hoverLat)
		if m.hoverHasValue {
			s += fmt.Sprintf(" value=%g", m.hoverValue)
			if m.rec.Units != "" {
				s += " " + m.rec.Units
			}
		}
		coords = dimStyle.Render(s + "  ")
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, m.renderLegend(), status, help)
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderLegend is a swatch strip, one block per band, the selected band
// underlined and hidden bands dimmed.
func (m Model) renderLegend() string {
	if len(m.layers) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" ")
	for i, l := range m.layers {
		st := bandStyle(l.color)
		glyph := "█"
		if !l.visible {
			glyph = "░"
		}
		if i == m.cursor {
			st = st.Underline(true)
		}
		sb.WriteString(st.Render(glyph))
	}
	return sb.String()
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"Tab messages",
		"Enter open",
		"e thresholds",
		"[/] band",
		"space toggle",
		"a bands",
		"i inspect",
		"l layers",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
