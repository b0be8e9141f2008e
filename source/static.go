package source

import (
	"context"

	"github.com/seiche/crossfold/types"
)

// Static implements a record source with a fixed list of records.
type Static struct {
	records []types.Record
}

var _ types.RecordSource = (*Static)(nil)

// NewStatic creates a static record source.
//
// The source returns the same records on every call. The slice is copied,
// and records themselves are immutable, so the source is safe to share.
//
// Parameters:
//   - records: Fixed record list
//
// Returns:
//   - *Static: Initialized source
//
// Example:
//
//	recs := []types.Record{
//	    types.MustRecord([]string{"x", "eventID"}, []float64{0.4, 0}),
//	    types.MustRecord([]string{"x", "eventID"}, []float64{1.1, 1}),
//	}
//	src := source.NewStatic(recs)
func NewStatic(records []types.Record) *Static {
	cp := make([]types.Record, len(records))
	copy(cp, records)

	return &Static{records: cp}
}

// ListRecords returns the static record list.
func (s *Static) ListRecords(ctx context.Context) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]types.Record, len(s.records))
	copy(out, s.records)

	return out, nil
}
