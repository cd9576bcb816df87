package export

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"gribsnap/internal/classify"
)

// FeatureCollection builds one MultiPolygon Feature per band, empty bands
// included, with value, color, variable and units properties. Bands that
// collapsed to the whole sphere also carry "sphere": true.
func FeatureCollection(bands []classify.Band, variable, units string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, b := range bands {
		mp := b.Geo
		if mp == nil {
			mp = orb.MultiPolygon{}
		}
		f := geojson.NewFeature(mp)
		f.Properties["value"] = b.Value
		f.Properties["color"] = classify.Hex(b.Color)
		f.Properties["variable"] = variable
		f.Properties["units"] = units
		if b.Sphere {
			f.Properties["sphere"] = true
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON encodes the collection built by FeatureCollection.
func WriteGeoJSON(w io.Writer, bands []classify.Band, variable, units string) error {
	data, err := json.Marshal(FeatureCollection(bands, variable, units))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
