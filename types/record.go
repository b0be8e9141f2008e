package types

import "fmt"

// Record is one event/sample: an ordered mapping from field name to a
// numeric value. Records are immutable once constructed and safe to share
// across goroutines.
//
// Field order is preserved from construction. Lookup is a linear scan,
// which beats a map for the handful of fields a typical event carries.
type Record struct {
	names  []string
	values []float64
}

// NewRecord creates a Record from parallel name/value slices.
//
// The slices are copied, so callers may reuse their buffers.
//
// Parameters:
//   - names: Field names in order
//   - values: Field values, one per name
//
// Returns:
//   - Record: Immutable record
//   - error: If the slice lengths differ or a name is duplicated
//
// Example:
//
//	rec, err := types.NewRecord([]string{"x", "y", "eventID"}, []float64{0.3, -1.2, 42})
func NewRecord(names []string, values []float64) (Record, error) {
	if len(names) != len(values) {
		return Record{}, fmt.Errorf("record: %d names but %d values", len(names), len(values))
	}
	for i, n := range names {
		for j := 0; j < i; j++ {
			if names[j] == n {
				return Record{}, fmt.Errorf("record: duplicate field %q", n)
			}
		}
	}

	r := Record{
		names:  make([]string, len(names)),
		values: make([]float64, len(values)),
	}
	copy(r.names, names)
	copy(r.values, values)

	return r, nil
}

// MustRecord is NewRecord that panics on error. Intended for tests and
// generators whose field layout is fixed at compile time.
func MustRecord(names []string, values []float64) Record {
	r, err := NewRecord(names, values)
	if err != nil {
		panic(err)
	}

	return r
}

// Get returns the value of the named field and whether it exists.
func (r Record) Get(name string) (float64, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}

	return 0, false
}

// Has reports whether the record carries the named field.
func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Fields returns a copy of the field names in construction order.
func (r Record) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// LabeledRecord is a Record plus its training target and sample weight.
//
// For classification the target is 1 (signal) or 0 (background); for
// regression it is the regression target. Weight defaults to 1.
type LabeledRecord struct {
	Record Record
	Target float64
	Weight float64
}
