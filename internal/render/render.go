// Package render runs the full pipeline for one field: plan thresholds,
// extract bands, map them to longitude/latitude and color them.
package render

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gribsnap/internal/classify"
	"gribsnap/internal/contour"
	"gribsnap/internal/geom"
	"gribsnap/internal/grid"
	"gribsnap/internal/platform/obs"
)

// Options controls one run. Min and Max are nil when the field's own extent
// should be used.
type Options struct {
	Steps    int
	Min, Max *float64
	// Workers bounds per-threshold parallelism; 0 uses GOMAXPROCS.
	Workers int
	// Simplify is the Douglas-Peucker tolerance in degrees; 0 disables it.
	Simplify float64
}

// DefaultOptions returns the defaults: 20 steps, field extent, all CPUs.
func DefaultOptions() Options {
	return Options{Steps: contour.DefaultSteps}
}

// Validate rejects options that must fail before any grid work starts.
func (o Options) Validate() error {
	if o.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", contour.ErrInvalidConfig, o.Steps)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", contour.ErrInvalidConfig, o.Workers)
	}
	if o.Simplify < 0 {
		return fmt.Errorf("%w: simplify tolerance must not be negative", contour.ErrInvalidConfig)
	}
	return nil
}

func (o Options) planOptions() []contour.PlanOption {
	var opts []contour.PlanOption
	if o.Min != nil {
		opts = append(opts, contour.WithMin(*o.Min))
	}
	if o.Max != nil {
		opts = append(opts, contour.WithMax(*o.Max))
	}
	return opts
}

// Result is everything the writers need. Width and Height are the grid's
// column and row counts, the size of the identity-projected canvas.
type Result struct {
	Thresholds contour.Thresholds
	Domain     classify.Domain
	Bands      []classify.Band
	Width      int
	Height     int
}

// Run executes the pipeline. Only option validation and an unusable field
// are fatal; a band that fails during extraction comes back empty.
func Run(ctx context.Context, f *grid.Field, opts Options) (_ *Result, err error) {
	defer obs.Time(ctx, "render.run")(&err)

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("render: nil field")
	}
	th, err := contour.Plan(f, opts.Steps, opts.planOptions()...)
	if err != nil {
		return nil, err
	}
	mapper, err := geom.NewMapper(f.BBox(), f.Rows(), f.Cols())
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	log.Printf("min: %g, max: %g, steps: %d", th.Min, th.Max, opts.Steps)

	res := &Result{
		Thresholds: th,
		Domain:     classify.Domain{Max: th.Max, Min: th.Min},
		Bands:      make([]classify.Band, len(th.Values)),
		Width:      f.Width(),
		Height:     f.Height(),
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range th.Values {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Bands[i] = band(f, mapper, t, res.Domain, opts.Simplify)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// band computes one classified band; a panic inside extraction or mapping
// is logged and leaves the band empty.
func band(f *grid.Field, m *geom.Mapper, t float64, d classify.Domain, tolerance float64) (b classify.Band) {
	b = classify.Band{Value: t, Color: classify.ColorFor(t, d)}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("band %g: %v; leaving it empty", t, r)
			b = classify.Band{Value: t, Color: classify.ColorFor(t, d)}
		}
	}()

	cb := contour.ExtractBand(f, t)
	if cb.Empty() {
		return b
	}
	mapped := m.ToGeographic(cb.Polygons)
	b.Grid = cb.Polygons
	b.Sphere = mapped.Sphere
	b.Geo = mapped.Polygons
	if !mapped.Sphere {
		b.Geo = geom.Simplify(b.Geo, tolerance)
	}
	return b
}
