package contour

import (
	"errors"
	"fmt"

	"gribsnap/internal/grid"
)

// ErrInvalidConfig reports a threshold plan that cannot be built.
var ErrInvalidConfig = errors.New("contour: invalid configuration")

// DefaultSteps is the number of iso-values planned when the caller sets none.
const DefaultSteps = 20

// Thresholds is the ordered set of iso-values plus the range they were cut from.
// Values ascend when Min < Max, descend when the caller inverted the range, and
// are all equal to Min for a flat range.
type Thresholds struct {
	Values []float64
	Min    float64
	Max    float64
}

// PlanOption overrides one end of the planned range.
type PlanOption func(*plan)

type plan struct {
	min, max       float64
	hasMin, hasMax bool
}

// WithMin pins the low end of the range instead of reading the field.
func WithMin(v float64) PlanOption {
	return func(p *plan) { p.min, p.hasMin = v, true }
}

// WithMax pins the high end of the range instead of reading the field.
func WithMax(v float64) PlanOption {
	return func(p *plan) { p.max, p.hasMax = v, true }
}

// Plan derives steps iso-values min + i/steps*(max-min), i in [0, steps).
// Overrides bypass the field entirely; f may be nil when both are given.
// An all-missing field plans around grid.Missing.
func Plan(f *grid.Field, steps int, opts ...PlanOption) (Thresholds, error) {
	if steps <= 0 {
		return Thresholds{}, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, steps)
	}
	var p plan
	for _, opt := range opts {
		opt(&p)
	}
	if !p.hasMin || !p.hasMax {
		if f == nil {
			return Thresholds{}, fmt.Errorf("%w: no field to derive the range from", ErrInvalidConfig)
		}
		lo, hi, ok := f.Extent()
		if !ok {
			lo, hi = grid.Missing, grid.Missing
		}
		if !p.hasMin {
			p.min = lo
		}
		if !p.hasMax {
			p.max = hi
		}
	}

	t := Thresholds{Values: make([]float64, steps), Min: p.min, Max: p.max}
	span := p.max - p.min
	for i := range t.Values {
		t.Values[i] = p.min + float64(i)/float64(steps)*span
	}
	return t, nil
}
