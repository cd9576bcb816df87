package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadEsriASCII reads an Esri ASCII grid (ncols, nrows, xllcorner|xllcenter,
// yllcorner|yllcenter, cellsize, optional NODATA_value, then rows north to
// south) as a single-record MessageSet keyed by the file name.
func LoadEsriASCII(path string) (MessageSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return MessageSet{}, err
	}
	defer f.Close()
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec, err := ReadEsriASCII(f, key)
	if err != nil {
		return MessageSet{}, err
	}
	return MessageSet{Records: []Record{rec}}, nil
}

// ReadEsriASCII decodes one Esri ASCII grid from r.
func ReadEsriASCII(r io.Reader, key string) (Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var pending string
	for sc.Scan() {
		tok := sc.Text()
		name := strings.ToLower(tok)
		switch name {
		case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		default:
			pending = tok
		}
		if pending != "" {
			break
		}
		if !sc.Scan() {
			return Record{}, fmt.Errorf("esri: header %s has no value", tok)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return Record{}, fmt.Errorf("esri: header %s: %w", tok, err)
		}
		header[name] = v
	}
	for _, req := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[req]; !ok {
			return Record{}, fmt.Errorf("esri: missing header %s", req)
		}
	}
	cols, rows, cell := int(header["ncols"]), int(header["nrows"]), header["cellsize"]
	if cols <= 0 || rows <= 0 || cell <= 0 {
		return Record{}, errors.New("esri: ncols, nrows and cellsize must be positive")
	}

	// corners win over centers; centers sit half a cell inside
	xll, okx := header["xllcorner"]
	if !okx {
		xll = header["xllcenter"] - cell/2
	}
	yll, oky := header["yllcorner"]
	if !oky {
		yll = header["yllcenter"] - cell/2
	}

	rec := Record{
		Key:      key,
		Variable: key,
		Rows:     rows,
		Cols:     cols,
		BBox:     [4]float64{xll, yll, xll + float64(cols)*cell, yll + float64(rows)*cell},
		Values:   make([]float64, 0, rows*cols),
	}
	if nd, ok := header["nodata_value"]; ok {
		rec.MissingValue = &nd
	}

	parse := func(tok string) error {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("esri: sample %d: %w", len(rec.Values), err)
		}
		rec.Values = append(rec.Values, v)
		return nil
	}
	if pending != "" {
		if err := parse(pending); err != nil {
			return Record{}, err
		}
	}
	for sc.Scan() {
		if err := parse(sc.Text()); err != nil {
			return Record{}, err
		}
	}
	if err := sc.Err(); err != nil {
		return Record{}, fmt.Errorf("esri: %w", err)
	}
	if len(rec.Values) != rows*cols {
		return Record{}, fmt.Errorf("esri: %w: %d samples for %dx%d", ErrShape, len(rec.Values), rows, cols)
	}
	return rec, nil
}
