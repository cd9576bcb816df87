package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"gribsnap/internal/geom"
)

// ErrNotFound reports a key that matches no record in a MessageSet.
var ErrNotFound = errors.New("grid: no matching message")

// Record is one decoded message as handed over by the message decoder.
type Record struct {
	Key           string     `json:"key"`
	Variable      string     `json:"variable"`
	Name          string     `json:"name,omitempty"`
	Units         string     `json:"units"`
	ReferenceTime time.Time  `json:"referenceTime,omitzero"`
	ForecastTime  time.Time  `json:"forecastTime,omitzero"`
	Rows          int        `json:"rows"`
	Cols          int        `json:"cols"`
	BBox          [4]float64 `json:"bbox"`
	Values        []float64  `json:"-"`
	// MissingValue is the source-format fill value, when the format has one.
	MissingValue *float64 `json:"missingValue,omitempty"`
}

// Field validates the record shape and builds the normalized Field.
func (r Record) Field() (*Field, error) {
	var opts []Option
	if r.MissingValue != nil {
		opts = append(opts, WithMissingValue(*r.MissingValue))
	}
	f, err := New(r.Values, r.Rows, r.Cols, geom.FromArray(r.BBox), opts...)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", r.Key, err)
	}
	return f, nil
}

// Describe is the one-line summary printed by --list.
func (r Record) Describe() string {
	var b strings.Builder
	b.WriteString(r.Key)
	if r.Name != "" {
		fmt.Fprintf(&b, "  %s", r.Name)
	}
	if r.Units != "" {
		fmt.Fprintf(&b, " [%s]", r.Units)
	}
	fmt.Fprintf(&b, "  %dx%d", r.Rows, r.Cols)
	if !r.ForecastTime.IsZero() {
		fmt.Fprintf(&b, "  %s", r.ForecastTime.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// MessageSet is an ordered collection of records.
type MessageSet struct {
	Records []Record
}

// Keys lists the record keys in file order.
func (s MessageSet) Keys() []string {
	keys := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		keys = append(keys, r.Key)
	}
	return keys
}

// Lookup finds a record by exact key, falling back to a variable abbreviation
// or key prefix ("HTSGW" for "HTSGW@groundorwater_1") when it is unambiguous.
func (s MessageSet) Lookup(key string) (Record, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Record{}, fmt.Errorf("%w: empty key", ErrNotFound)
	}
	for _, r := range s.Records {
		if r.Key == key {
			return r, nil
		}
	}
	var hits []Record
	for _, r := range s.Records {
		if strings.EqualFold(r.Variable, key) || strings.HasPrefix(r.Key, key+"@") {
			hits = append(hits, r)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	keys := make([]string, 0, len(hits))
	for _, h := range hits {
		keys = append(keys, h.Key)
	}
	sort.Strings(keys)
	return Record{}, fmt.Errorf("%w: %q is ambiguous (%s)", ErrNotFound, key, strings.Join(keys, ", "))
}

// jsonRecord carries nullable samples; null marks a missing value.
type jsonRecord struct {
	Record
	Data []*float64 `json:"values"`
}

// LoadMessages reads a JSON message set: {"messages": [record, ...]}.
func LoadMessages(path string) (MessageSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return MessageSet{}, err
	}
	defer f.Close()
	return ReadMessages(f)
}

// ReadMessages decodes a JSON message set from r.
func ReadMessages(r io.Reader) (MessageSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return MessageSet{}, err
	}
	var raw struct {
		Messages []jsonRecord `json:"messages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return MessageSet{}, fmt.Errorf("grid: decode message set: %w", err)
	}
	if len(raw.Messages) == 0 {
		return MessageSet{}, errors.New("grid: message set is empty")
	}
	set := MessageSet{Records: make([]Record, 0, len(raw.Messages))}
	for i, m := range raw.Messages {
		rec := m.Record
		if rec.Key == "" {
			rec.Key = rec.Variable
		}
		if rec.Key == "" {
			rec.Key = fmt.Sprintf("message_%d", i)
		}
		rec.Values = make([]float64, len(m.Data))
		for j, v := range m.Data {
			if v == nil {
				rec.Values[j] = math.NaN()
				continue
			}
			rec.Values[j] = *v
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}
