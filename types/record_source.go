package types

import "context"

// RecordSource provides the records of one dataset (e.g. the signal or the
// background sample).
//
// Implementations can read various backends:
//   - Static: fixed in-memory list
//   - Gaussian: deterministic toy generator
//   - Custom: any columnar/tabular reader
//
// The DataLoader calls ListRecords once per Evaluate; implementations
// should return consistent results for the same backend state and handle
// context cancellation gracefully.
type RecordSource interface {
	// ListRecords returns all records of the dataset.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []Record: Records in a stable order
	//   - error: Read error (nil on success)
	ListRecords(ctx context.Context) ([]Record, error)
}
