// Package grid holds the immutable scalar field that contouring runs over,
// together with the decoded message records it is built from.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gribsnap/internal/geom"
)

var (
	// ErrEmpty indicates a grid with no rows or no columns.
	ErrEmpty = errors.New("grid: rows and cols must be positive")
	// ErrShape indicates len(values) != rows*cols.
	ErrShape = errors.New("grid: values length does not match rows*cols")
	// ErrOutOfRange indicates a row or column index beyond the grid.
	ErrOutOfRange = errors.New("grid: index out of range")
)

// Missing replaces every non-finite or designated missing sample. It sits
// below any physical threshold so gaps never produce high-value contours.
const Missing = -9999999.0

// Option tunes field construction.
type Option func(*options)

type options struct {
	missing []float64
}

// WithMissingValue designates a source-format fill value (GRIB bitmap fill,
// Esri NODATA) that is normalized to Missing like NaN is.
func WithMissingValue(v float64) Option {
	return func(o *options) { o.missing = append(o.missing, v) }
}

// Field is a row-major scalar grid: index = row*cols + col. Row 0 is the
// northernmost row. A Field is read-only after New and safe for concurrent reads.
type Field struct {
	rows, cols int
	values     []float64
	bbox       geom.BBox

	min, max float64
	hasData  bool
	missing  int
}

// New copies values into a Field, normalizing missing samples to Missing.
func New(values []float64, rows, cols int, bbox geom.BBox, opts ...Option) (*Field, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmpty, rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrShape, len(values), rows, cols)
	}
	if err := bbox.Validate(); err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &Field{rows: rows, cols: cols, bbox: bbox, values: make([]float64, len(values))}
	for i, v := range values {
		if isMissing(v, o.missing) {
			v = Missing
		}
		f.values[i] = v
		if v == Missing {
			f.missing++
			continue
		}
		if !f.hasData {
			f.min, f.max, f.hasData = v, v, true
			continue
		}
		if v < f.min {
			f.min = v
		}
		if v > f.max {
			f.max = v
		}
	}
	return f, nil
}

func isMissing(v float64, designated []float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	for _, m := range designated {
		if v == m {
			return true
		}
	}
	return false
}

func (f *Field) Rows() int       { return f.rows }
func (f *Field) Cols() int       { return f.cols }
func (f *Field) Width() int      { return f.cols }
func (f *Field) Height() int     { return f.rows }
func (f *Field) BBox() geom.BBox { return f.bbox }
func (f *Field) Len() int        { return len(f.values) }

// ValueAt returns the sample at (row, col).
func (f *Field) ValueAt(row, col int) (float64, error) {
	if !f.InBounds(row, col) {
		return 0, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfRange, row, col, f.rows, f.cols)
	}
	return f.values[row*f.cols+col], nil
}

// At is ValueAt without the bounds check, for tight loops that already
// iterate inside the grid.
func (f *Field) At(row, col int) float64 {
	return f.values[row*f.cols+col]
}

// InBounds reports whether (row, col) addresses a sample.
func (f *Field) InBounds(row, col int) bool {
	return row >= 0 && row < f.rows && col >= 0 && col < f.cols
}

// Extent returns the min and max over non-missing samples. ok is false when
// every sample is missing.
func (f *Field) Extent() (min, max float64, ok bool) {
	return f.min, f.max, f.hasData
}

// HasMissing reports whether any sample was normalized to Missing.
func (f *Field) HasMissing() bool { return f.missing > 0 }

// Values returns a copy of the normalized samples.
func (f *Field) Values() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)
	return out
}
