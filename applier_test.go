package crossfold

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seiche/crossfold/split"
	"github.com/seiche/crossfold/store"
	cftest "github.com/seiche/crossfold/testing"
	"github.com/seiche/crossfold/types"
)

// evaluatePersisted runs a persisted classification cross-validation and
// returns its store and splitter for application tests.
func evaluatePersisted(t *testing.T, numFolds int) (store.ModelStore, types.FoldSplitter) {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemory()
	cfg := newClassificationConfig(numFolds)
	cfg.ModelPersistence = true

	cv, err := New("cv", newClassificationLoader(), &cfg, WithModelStore(st))
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))
	require.NoError(t, cv.Evaluate(ctx))

	return st, cv.Splitter()
}

func TestLoadApplier(t *testing.T) {
	ctx := context.Background()
	st, splitter := evaluatePersisted(t, 2)
	codec := cftest.NewCentroidTrainer()

	t.Run("scores new records", func(t *testing.T) {
		applier, err := LoadApplier(ctx, st, "Centroid", splitter, codec)
		require.NoError(t, err)
		require.Equal(t, "Centroid", applier.Method())

		names := []string{"x", "y", "eventID"}
		signalish := types.MustRecord(names, []float64{1.2, 0.9, 123456})
		backgroundish := types.MustRecord(names, []float64{-1.1, -0.8, 123457})

		sigScore, err := applier.Score(signalish)
		require.NoError(t, err)
		bkgScore, err := applier.Score(backgroundish)
		require.NoError(t, err)

		require.Greater(t, sigScore, bkgScore)
	})

	t.Run("scoring is deterministic", func(t *testing.T) {
		applier, err := LoadApplier(ctx, st, "Centroid", splitter, codec)
		require.NoError(t, err)

		rec := types.MustRecord([]string{"x", "y", "eventID"}, []float64{0.3, -0.2, 42})
		first, err := applier.Score(rec)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := applier.Score(rec)
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	})

	t.Run("rebuilt splitter with same config matches", func(t *testing.T) {
		rebuilt, err := split.NewExpression(splitExpr, 2, []string{"x", "y", "eventID"})
		require.NoError(t, err)

		_, err = LoadApplier(ctx, st, "Centroid", rebuilt, codec)
		require.NoError(t, err)
	})

	t.Run("different expression rejected", func(t *testing.T) {
		drifted, err := split.NewExpression("int([eventID])%int([NumFolds])", 2, []string{"eventID"})
		require.NoError(t, err)

		_, err = LoadApplier(ctx, st, "Centroid", drifted, codec)
		require.ErrorIs(t, err, ErrSplitMismatch)
	})

	t.Run("different fold count rejected", func(t *testing.T) {
		drifted, err := split.NewExpression(splitExpr, 3, []string{"eventID"})
		require.NoError(t, err)

		_, err = LoadApplier(ctx, st, "Centroid", drifted, codec)
		require.ErrorIs(t, err, ErrSplitMismatch)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := LoadApplier(ctx, st, "BDTG", splitter, codec)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("nil arguments", func(t *testing.T) {
		_, err := LoadApplier(ctx, nil, "Centroid", splitter, codec)
		require.ErrorIs(t, err, ErrInvalidConfig)

		_, err = LoadApplier(ctx, st, "Centroid", nil, codec)
		require.ErrorIs(t, err, ErrInvalidConfig)

		_, err = LoadApplier(ctx, st, "Centroid", splitter, nil)
		require.ErrorIs(t, err, ErrCodecRequired)
	})
}

func TestApplierReproducesHoldoutScores(t *testing.T) {
	ctx := context.Background()
	st, splitter := evaluatePersisted(t, 4)

	applier, err := LoadApplier(ctx, st, "Centroid", splitter, cftest.NewCentroidTrainer())
	require.NoError(t, err)

	// Re-scoring the original dataset must route every record to the model
	// that held it out during cross-validation, so scores stay legitimate
	// out-of-sample estimates.
	loader := newClassificationLoader()
	records, err := loader.load(ctx, types.AnalysisClassification)
	require.NoError(t, err)

	correct := 0
	for _, lr := range records {
		score, err := applier.Score(lr.Record)
		require.NoError(t, err)
		if (score > 0) == (lr.Target > 0.5) {
			correct++
		}
	}

	// Well-separated Gaussians: expect high out-of-sample accuracy.
	require.Greater(t, float64(correct)/float64(len(records)), 0.85)
}
