package source

import (
	"context"
	"math/rand"

	"github.com/seiche/crossfold/types"
)

// Gaussian is a deterministic toy record generator: n records with two
// Gaussian-distributed variables "x" and "y" around a common offset, plus
// a sequential "eventID" spectator running 1..n.
//
// The generator is seeded, so the same configuration produces the same
// records on every run. The eventID is integral, sequential and
// independent of the variable values, which makes it the intended split
// key for deterministic fold assignment.
type Gaussian struct {
	n      int
	offset float64
	scale  float64
	seed   int64
}

var _ types.RecordSource = (*Gaussian)(nil)

// NewGaussian creates a toy Gaussian source.
//
// Parameters:
//   - n: Number of records to generate
//   - offset: Mean of both variables (e.g. +1 for signal, -1 for background)
//   - scale: Standard deviation of both variables
//   - seed: PRNG seed; same seed, same records
//
// Returns:
//   - *Gaussian: Initialized source
//
// Example:
//
//	sig := source.NewGaussian(1000, 1.0, 1.0, 100)
//	bkg := source.NewGaussian(1000, -1.0, 1.0, 101)
func NewGaussian(n int, offset, scale float64, seed int64) *Gaussian {
	return &Gaussian{n: n, offset: offset, scale: scale, seed: seed}
}

// ListRecords generates the records. Each call re-seeds, so repeated
// calls return identical data.
func (g *Gaussian) ListRecords(ctx context.Context) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(g.seed))
	names := []string{"x", "y", "eventID"}

	records := make([]types.Record, 0, g.n)
	for i := 0; i < g.n; i++ {
		x := rng.NormFloat64()*g.scale + g.offset
		y := rng.NormFloat64()*g.scale + g.offset

		rec, err := types.NewRecord(names, []float64{x, y, float64(i + 1)})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}
