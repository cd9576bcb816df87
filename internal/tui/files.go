package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"gribsnap/internal/classify"
	"gribsnap/internal/geom"
	"gribsnap/internal/grid"
	"gribsnap/internal/render"
)

type keyItem struct {
	key, desc string
}

func (k keyItem) Title() string       { return k.key }
func (k keyItem) Description() string { return k.desc }
func (k keyItem) FilterValue() string { return k.key }

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// refreshSidebar lists the message keys, or GeoJSON band files in the working
// directory when no message set is loaded.
func (m *Model) refreshSidebar() {
	var items []list.Item
	if len(m.set.Records) > 0 {
		for _, r := range m.set.Records {
			items = append(items, keyItem{key: r.Key, desc: r.Describe()})
		}
	} else {
		entries, err := os.ReadDir(m.cwd)
		if err != nil {
			m.status = "read dir error: " + err.Error()
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if ext == ".geojson" || ext == ".json" {
				items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].FilterValue() < items[j].FilterValue() })
	}
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "nothing to list"
	}
}

// selectRecord switches the preview to rec and marks a render as pending.
func (m *Model) selectRecord(rec grid.Record) {
	m.rec = rec
	m.selPath = ""
	m.rendering = true
	m.status = "contouring " + rec.Key + "..."
}

type renderedMsg struct {
	key   string
	field *grid.Field
	res   *render.Result
	err   error
}

func renderCmd(ctx context.Context, rec grid.Record, opts render.Options) tea.Cmd {
	return func() tea.Msg {
		f, err := rec.Field()
		if err != nil {
			return renderedMsg{key: rec.Key, err: err}
		}
		res, err := render.Run(ctx, f, opts)
		return renderedMsg{key: rec.Key, field: f, res: res, err: err}
	}
}

// applyResult swaps in freshly rendered bands.
func (m *Model) applyResult(msg renderedMsg) {
	m.rendering = false
	if msg.err != nil {
		m.status = "render error: " + msg.err.Error()
		return
	}
	if msg.key != m.rec.Key {
		return
	}
	mapper, err := geom.NewMapper(msg.field.BBox(), msg.field.Rows(), msg.field.Cols())
	if err != nil {
		m.status = "render error: " + err.Error()
		return
	}
	m.field, m.mapper = msg.field, mapper
	m.lastRange = [2]float64{msg.res.Thresholds.Min, msg.res.Thresholds.Max}
	m.setLayers(layersFromBands(msg.res.Bands))
	m.status = fmt.Sprintf("rendered %s  bands=%d  min=%g max=%g", m.rec.Key, len(m.layers), m.lastRange[0], m.lastRange[1])
}

func layersFromBands(bands []classify.Band) []layer {
	out := make([]layer, 0, len(bands))
	for _, b := range bands {
		out = append(out, layer{
			value:   b.Value,
			color:   classify.Hex(b.Color),
			polys:   b.Geo,
			sphere:  b.Sphere,
			visible: true,
		})
	}
	return out
}

func (m *Model) setLayers(layers []layer) {
	m.layers = layers
	m.cursor = 0
	m.bbox = layerBounds(layers)
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	if m.showAttrs {
		m.refreshAttrsFromCurrent()
	}
}

// layerBounds is the box around every drawn vertex, or the whole world.
func layerBounds(layers []layer) geom.BBox {
	var bb geom.BBox
	n := 0
	for _, l := range layers {
		for _, poly := range l.polys {
			for _, ring := range poly {
				for _, p := range ring {
					bb = bb.Extend(p, n == 0)
					n++
				}
			}
		}
	}
	if n == 0 || bb.MaxX <= bb.MinX || bb.MaxY <= bb.MinY {
		w := geom.World().Bound()
		return geom.BBox{MinX: w.Min[0], MinY: w.Min[1], MaxX: w.Max[0], MaxY: w.Max[1]}
	}
	return bb
}

// loadPath opens an exported band file; hover values are unavailable there.
func (m *Model) loadPath(p string) {
	bands, err := geom.LoadBands(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	layers := make([]layer, 0, len(bands.Bands))
	for _, b := range bands.Bands {
		layers = append(layers, layer{value: b.Value, color: b.Color, polys: b.Polygons, visible: true})
	}
	m.selPath = p
	m.field, m.mapper = nil, nil
	m.setLayers(layers)
	m.status = "loaded: " + filepath.Base(p) + fmt.Sprintf("  bands=%d points=%d", len(layers), countPoints(layers))
}

func countPoints(layers []layer) int {
	n := 0
	for _, l := range layers {
		n += pointsIn(l.polys)
	}
	return n
}

func pointsIn(mp orb.MultiPolygon) int {
	n := 0
	for _, poly := range mp {
		for _, ring := range poly {
			n += len(ring)
		}
	}
	return n
}
