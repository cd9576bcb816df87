package tui

import (
	"context"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"gribsnap/internal/geom"
	"gribsnap/internal/grid"
	"gribsnap/internal/render"
)

// layer is one band as drawn on the canvas.
type layer struct {
	value   float64
	color   string
	polys   orb.MultiPolygon
	sphere  bool
	visible bool
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string

	// Sidebar: message keys when a message set is loaded, band files otherwise
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Source
	ctx       context.Context
	set       grid.MessageSet
	rec       grid.Record
	field     *grid.Field
	mapper    *geom.Mapper
	opts      render.Options
	rendering bool
	lastRange [2]float64

	// Data
	layers []layer
	bbox   geom.BBox
	cursor int

	// last rendered map size (for inspect)
	mapW int
	mapH int

	// threshold editor
	editMode bool
	ta       textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering      bool
	hoverCellX    int
	hoverCellY    int
	hoverHasGeo   bool
	hoverLon      float64
	hoverLat      float64
	hoverHasValue bool
	hoverValue    float64

	// band table
	showAttrs bool
	tbl       table.Model
}

func newModel(ctx context.Context) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:         ctx,
		showSidebar: false,
		helpVisible: true,
		zoom:        1.0,
		status:      "gribsnap ready",
		opts:        render.DefaultOptions(),
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Messages"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// threshold editor setup
	m.ta = textarea.New()
	m.ta.Placeholder = "min=<v|auto> max=<v|auto> steps=<n>. Enter re-renders; Esc cancels."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(3)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m
}

// New previews the record named key from set; rendering starts in Init.
func New(ctx context.Context, set grid.MessageSet, key string, opts render.Options) Model {
	m := newModel(ctx)
	m.set = set
	m.opts = opts
	m.refreshSidebar()
	if rec, err := set.Lookup(key); err == nil {
		m.selectRecord(rec)
	} else if len(set.Records) > 0 {
		m.selectRecord(set.Records[0])
	} else {
		m.status = "no messages to preview"
	}
	return m
}

// NewWithBands opens a previously exported GeoJSON band file.
func NewWithBands(ctx context.Context, path string) Model {
	m := newModel(ctx)
	m.l.Title = "Band files"
	m.refreshSidebar()
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.rendering {
		return renderCmd(m.ctx, m.rec, m.opts)
	}
	return nil
}
