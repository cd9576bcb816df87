package export_test

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image/color"
	"image/png"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"gribsnap/internal/classify"
	"gribsnap/internal/export"
)

var red = color.RGBA{R: 0xb2, G: 0x18, B: 0x2b, A: 0xff}

func squareBand() classify.Band {
	grid := orb.Polygon{{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}}
	return classify.Band{
		Value: 7.5,
		Color: red,
		Grid:  []orb.Polygon{grid},
		Geo:   orb.MultiPolygon{{{{-5, 5}, {5, 5}, {5, 8}, {-5, 5}}}},
	}
}

func TestWriteGeoJSON(t *testing.T) {
	bands := []classify.Band{squareBand(), {Value: 2.5, Color: red}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteGeoJSON(&buf, bands, "HTSGW", "m"))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2, "empty bands still get a feature")

	f := fc.Features[0]
	require.Equal(t, 7.5, f.Properties.MustFloat64("value"))
	require.Equal(t, "m", f.Properties.MustString("units"))
	require.Equal(t, "HTSGW", f.Properties.MustString("variable"))
	require.Equal(t, "#b2182b", f.Properties.MustString("color"))
	require.Equal(t, "MultiPolygon", f.Geometry.GeoJSONType())
	_, ok := f.Properties["sphere"]
	require.False(t, ok)

	empty, ok := fc.Features[1].Geometry.(orb.MultiPolygon)
	require.True(t, ok)
	require.Empty(t, empty)
}

func TestGeoJSONMarksSphere(t *testing.T) {
	fc := export.FeatureCollection([]classify.Band{{Value: 1, Color: red, Sphere: true}}, "TMP", "K")
	require.Equal(t, true, fc.Features[0].Properties["sphere"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	require.Contains(t, string(data), `"sphere":true`)
}

func TestPathData(t *testing.T) {
	p := orb.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		{{1, 1}, {1, 2.5}, {2.5, 2.5}, {1, 1}},
	}
	require.Equal(t, "M0,0L4,0L4,4L0,4ZM1,1L1,2.5L2.5,2.5Z", export.PathData(p))
	require.Equal(t, "", export.PathData(orb.Polygon{}))
}

func TestWriteSVG(t *testing.T) {
	bands := []classify.Band{squareBand(), {Value: 1, Color: red}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteSVG(&buf, 4, 3, bands))

	var doc struct {
		XMLName xml.Name `xml:"svg"`
		Width   string   `xml:"width,attr"`
		Height  string   `xml:"height,attr"`
		ViewBox string   `xml:"viewBox,attr"`
		Paths   []struct {
			D        string `xml:"d,attr"`
			Fill     string `xml:"fill,attr"`
			FillRule string `xml:"fill-rule,attr"`
		} `xml:"path"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "4", doc.Width)
	require.Equal(t, "3", doc.Height)
	require.Equal(t, "0 0 4 3", doc.ViewBox)
	require.Len(t, doc.Paths, 1)
	require.Equal(t, "M1,1L3,1L3,3L1,3Z", doc.Paths[0].D)
	require.Equal(t, "#b2182b", doc.Paths[0].Fill)
	require.Equal(t, "evenodd", doc.Paths[0].FillRule)
}

func TestRasterize(t *testing.T) {
	img := export.Rasterize(4, 4, 2, []classify.Band{squareBand()})
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 8, img.Bounds().Dy())

	require.Equal(t, red, img.RGBAAt(4, 4), "inside the square")
	require.Equal(t, color.RGBA{}, img.RGBAAt(0, 0), "background stays transparent")
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WritePNG(&buf, 5, 3, 1, []classify.Band{squareBand()}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 5, img.Bounds().Dx())
	require.Equal(t, 3, img.Bounds().Dy())
	r, g, b, a := img.At(2, 2).RGBA()
	require.Equal(t, uint32(0xffff), a)
	require.Equal(t, uint32(red.R)*0x101, r)
	require.Equal(t, uint32(red.G)*0x101, g)
	require.Equal(t, uint32(red.B)*0x101, b)
}
