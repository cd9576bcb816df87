// Package cache stores rendered GeoJSON band collections keyed by a hash of
// the field and the render options, so repeated runs over the same message
// skip contouring.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"gribsnap/internal/grid"
	"gribsnap/internal/render"
)

// ErrMiss is returned by Get when the key is not stored.
var ErrMiss = errors.New("cache: miss")

// Store is a byte-payload cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Key hashes everything that changes the rendered bands: shape, box, samples
// and threshold options, plus any labels (variable, units) baked into the
// payload. Workers does not affect output and is left out.
func Key(f *grid.Field, opts render.Options, labels ...string) string {
	d := xxhash.New()
	var buf []byte
	putF := func(v float64) {
		buf = binary.LittleEndian.AppendUint64(buf[:0], math.Float64bits(v))
		d.Write(buf)
	}
	putOpt := func(v *float64) {
		if v == nil {
			d.Write([]byte{0})
			return
		}
		d.Write([]byte{1})
		putF(*v)
	}

	buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(f.Rows()))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.Cols()))
	d.Write(buf)
	for _, v := range f.BBox().Array() {
		putF(v)
	}
	for _, v := range f.Values() {
		putF(v)
	}
	buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(opts.Steps))
	d.Write(buf)
	putOpt(opts.Min)
	putOpt(opts.Max)
	putF(opts.Simplify)
	for _, l := range labels {
		d.WriteString(l)
		d.Write([]byte{0})
	}
	return "bands:" + strconv.FormatUint(d.Sum64(), 16)
}

// Open picks an adapter from the DSN scheme:
//
//	sqlite:<path>            SQLite file (":memory:" works for tests)
//	postgres://...           Postgres via pgx
//	redis://... rediss://... Redis
func Open(ctx context.Context, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		s, err = asStore(OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:")))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err = asStore(OpenPostgres(ctx, dsn))
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		s, err = asStore(OpenRedis(ctx, dsn))
	default:
		err = fmt.Errorf("cache: unsupported dsn %q", dsn)
	}
	return s, err
}

// asStore keeps a failed open from turning into a non-nil Store holding a
// nil pointer.
func asStore[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
