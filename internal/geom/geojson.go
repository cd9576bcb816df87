package geom

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Band is one contour band read back from an exported FeatureCollection.
type Band struct {
	Value    float64
	Color    string
	Variable string
	Units    string
	Polygons orb.MultiPolygon
}

// Bands is a decoded band file plus the bounds of everything in it.
type Bands struct {
	Bands []Band
	BBox  BBox
}

// LoadBands reads a GeoJSON FeatureCollection of band features
// (MultiPolygon or Polygon geometry, value/color/variable/units properties).
func LoadBands(path string) (Bands, error) {
	f, err := os.Open(path)
	if err != nil {
		return Bands{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Bands{}, err
	}
	return DecodeBands(data)
}

// DecodeBands is LoadBands over an in-memory document.
func DecodeBands(data []byte) (Bands, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Bands{}, fmt.Errorf("geojson: %w", err)
	}
	var out Bands
	points := 0
	addPt := func(p orb.Point) {
		out.BBox = out.BBox.Extend(p, points == 0)
		points++
	}
	for _, feat := range fc.Features {
		var mp orb.MultiPolygon
		switch g := feat.Geometry.(type) {
		case orb.MultiPolygon:
			mp = g
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		default:
			continue
		}
		b := Band{
			Value:    feat.Properties.MustFloat64("value", 0),
			Color:    feat.Properties.MustString("color", ""),
			Variable: feat.Properties.MustString("variable", ""),
			Units:    feat.Properties.MustString("units", ""),
			Polygons: mp,
		}
		for _, poly := range mp {
			for _, ring := range poly {
				for _, p := range ring {
					addPt(p)
				}
			}
		}
		out.Bands = append(out.Bands, b)
	}
	if len(out.Bands) == 0 {
		return Bands{}, errors.New("geojson: no band features found")
	}
	return out, nil
}
