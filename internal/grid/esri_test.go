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

const esriGrid = `ncols 3
nrows 2
xllcorner -180
yllcorner -10
cellsize 10
NODATA_value -9999
1 2 3
4 -9999 6
`

func TestReadEsriASCII(t *testing.T) {
	rec, err := grid.ReadEsriASCII(strings.NewReader(esriGrid), "swh")
	require.NoError(t, err)
	require.Equal(t, "swh", rec.Key)
	require.Equal(t, 2, rec.Rows)
	require.Equal(t, 3, rec.Cols)
	require.Equal(t, [4]float64{-180, -10, -150, 10}, rec.BBox)
	require.NotNil(t, rec.MissingValue)

	f, err := rec.Field()
	require.NoError(t, err)
	v, err := f.ValueAt(1, 1)
	require.NoError(t, err)
	require.Equal(t, grid.Missing, v)
	lo, hi, ok := f.Extent()
	require.True(t, ok)
	require.Equal(t, 1.0, lo)
	require.Equal(t, 6.0, hi)
}

func TestReadEsriASCIICenters(t *testing.T) {
	src := "ncols 2\nnrows 1\nxllcenter 0.5\nyllcenter 0.5\ncellsize 1\n7 8\n"
	rec, err := grid.ReadEsriASCII(strings.NewReader(src), "c")
	require.NoError(t, err)
	require.Equal(t, [4]float64{0, 0, 2, 1}, rec.BBox)
	require.Nil(t, rec.MissingValue)
}

func TestReadEsriASCIIErrors(t *testing.T) {
	cases := map[string]string{
		"short":       "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n",
		"no cellsize": "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\n1\n",
		"bad sample":  "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nx\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := grid.ReadEsriASCII(strings.NewReader(src), name)
			require.Error(t, err)
		})
	}
	_, err := grid.ReadEsriASCII(strings.NewReader(cases["short"]), "short")
	require.True(t, errors.Is(err, grid.ErrShape))
}

func TestLoadEsriASCIIKeyFromFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waves.asc")
	require.NoError(t, os.WriteFile(path, []byte(esriGrid), 0o644))
	set, err := grid.LoadEsriASCII(path)
	require.NoError(t, err)
	require.Equal(t, []string{"waves"}, set.Keys())
}
