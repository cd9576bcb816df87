package grid_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gribsnap/internal/grid"
)

const messageSet = `{
  "messages": [
    {
      "key": "HTSGW@groundorwater_1",
      "variable": "HTSGW",
      "name": "Significant height of combined wind waves and swell",
      "units": "m",
      "referenceTime": "2022-12-22T18:00:00Z",
      "rows": 2, "cols": 2,
      "bbox": [-10, 0, 10, 10],
      "values": [0, 0, 0, 10]
    },
    {
      "variable": "WIND",
      "units": "m/s",
      "rows": 1, "cols": 3,
      "bbox": [0, 0, 3, 1],
      "values": [1, null, 3]
    },
    {
      "key": "WIND@heightaboveground_10",
      "variable": "WIND",
      "rows": 1, "cols": 1,
      "bbox": [0, 0, 1, 1],
      "values": [4]
    }
  ]
}`

func TestReadMessages(t *testing.T) {
	set, err := grid.ReadMessages(strings.NewReader(messageSet))
	require.NoError(t, err)
	require.Equal(t, []string{"HTSGW@groundorwater_1", "WIND", "WIND@heightaboveground_10"}, set.Keys())

	rec := set.Records[0]
	require.Equal(t, "m", rec.Units)
	require.Equal(t, 2022, rec.ReferenceTime.Year())
	require.Equal(t, [4]float64{-10, 0, 10, 10}, rec.BBox)

	f, err := set.Records[1].Field()
	require.NoError(t, err)
	v, err := f.ValueAt(0, 1)
	require.NoError(t, err)
	require.Equal(t, grid.Missing, v, "null samples become the missing sentinel")
}

func TestReadMessagesErrors(t *testing.T) {
	_, err := grid.ReadMessages(strings.NewReader(`{"messages": []}`))
	require.Error(t, err)
	_, err = grid.ReadMessages(strings.NewReader(`not json`))
	require.Error(t, err)
}

func TestRecordFieldShapeMismatch(t *testing.T) {
	rec := grid.Record{Key: "bad", Rows: 2, Cols: 2, BBox: [4]float64{0, 0, 1, 1}, Values: []float64{1, 2, 3}}
	_, err := rec.Field()
	require.True(t, errors.Is(err, grid.ErrShape))
}

func TestLookup(t *testing.T) {
	set, err := grid.ReadMessages(strings.NewReader(messageSet))
	require.NoError(t, err)

	cases := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "HTSGW@groundorwater_1", want: "HTSGW@groundorwater_1"},
		{key: "HTSGW", want: "HTSGW@groundorwater_1"},
		{key: "htsgw", want: "HTSGW@groundorwater_1"},
		{key: "WIND", want: "WIND"}, // exact key beats the ambiguous variable
		{key: "UGRD", wantErr: true},
		{key: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			rec, err := set.Lookup(tc.key)
			if tc.wantErr {
				require.True(t, errors.Is(err, grid.ErrNotFound))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, rec.Key)
		})
	}
}

func TestLookupAmbiguous(t *testing.T) {
	set := grid.MessageSet{Records: []grid.Record{
		{Key: "TMP@a", Variable: "TMP"},
		{Key: "TMP@b", Variable: "TMP"},
	}}
	_, err := set.Lookup("TMP")
	require.True(t, errors.Is(err, grid.ErrNotFound))
	require.Contains(t, err.Error(), "ambiguous")
}

func TestLoadMessagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.json")
	require.NoError(t, os.WriteFile(path, []byte(messageSet), 0o644))
	set, err := grid.LoadMessages(path)
	require.NoError(t, err)
	require.Len(t, set.Records, 3)
}

func TestDescribe(t *testing.T) {
	set, err := grid.ReadMessages(strings.NewReader(messageSet))
	require.NoError(t, err)
	d := set.Records[0].Describe()
	require.Contains(t, d, "HTSGW@groundorwater_1")
	require.Contains(t, d, "[m]")
	require.Contains(t, d, "2x2")
}
