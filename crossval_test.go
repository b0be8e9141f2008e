package crossfold

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seiche/crossfold/source"
	"github.com/seiche/crossfold/split"
	"github.com/seiche/crossfold/store"
	cftest "github.com/seiche/crossfold/testing"
	"github.com/seiche/crossfold/types"
)

const splitExpr = "int(fabs([eventID]))%int([NumFolds])"

func newClassificationLoader() *DataLoader {
	dl := NewDataLoader()
	dl.AddVariable("x")
	dl.AddVariable("y")
	dl.AddSpectator("eventID")
	dl.AddSignalSource(source.NewGaussian(1000, 1.0, 1.0, 100), 1.0)
	dl.AddBackgroundSource(source.NewGaussian(1000, -1.0, 1.0, 101), 1.0)

	return dl
}

func newClassificationConfig(numFolds int) Config {
	return Config{
		Silent:       true,
		AnalysisType: types.AnalysisClassification,
		NumFolds:     numFolds,
		SplitExpr:    splitExpr,
	}
}

// recordingTrainer wraps CentroidTrainer and captures each training
// sample's eventID set, so tests can verify complement construction.
type recordingTrainer struct {
	inner *cftest.CentroidTrainer

	mu        sync.Mutex
	trainSets []map[float64]int // eventID -> occurrences, one per Train call
}

func (tr *recordingTrainer) Train(ctx context.Context, records []types.LabeledRecord, variables []string) (types.FoldModel, error) {
	ids := make(map[float64]int, len(records))
	for _, lr := range records {
		id, ok := lr.Record.Get("eventID")
		if !ok {
			return nil, errors.New("recording trainer: record is missing eventID")
		}
		ids[id]++
	}

	tr.mu.Lock()
	tr.trainSets = append(tr.trainSets, ids)
	tr.mu.Unlock()

	return tr.inner.Train(ctx, records, variables)
}

func TestNewValidation(t *testing.T) {
	loader := newClassificationLoader()
	cfg := newClassificationConfig(2)

	t.Run("nil config", func(t *testing.T) {
		_, err := New("cv", loader, nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil loader", func(t *testing.T) {
		c := cfg
		_, err := New("cv", nil, &c)
		require.ErrorIs(t, err, ErrDataLoaderRequired)
	})

	t.Run("invalid fold count", func(t *testing.T) {
		c := cfg
		c.NumFolds = -3
		_, err := New("cv", loader, &c)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("empty split expression without splitter", func(t *testing.T) {
		c := cfg
		c.SplitExpr = ""
		_, err := New("cv", loader, &c)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed split expression", func(t *testing.T) {
		c := cfg
		c.SplitExpr = "int(fabs([eventID])"
		_, err := New("cv", loader, &c)
		require.ErrorIs(t, err, split.ErrConfig)
	})

	t.Run("expression references undeclared field", func(t *testing.T) {
		c := cfg
		c.SplitExpr = "[runNumber]%[NumFolds]"
		_, err := New("cv", loader, &c)
		require.ErrorIs(t, err, split.ErrUnboundIdentifier)
	})

	t.Run("splitter fold count mismatch", func(t *testing.T) {
		c := cfg
		splitter, err := split.NewHash("eventID", 3)
		require.NoError(t, err)

		_, err = New("cv", loader, &c, WithSplitter(splitter))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("fitter without histograms", func(t *testing.T) {
		c := cfg
		_, err := New("cv", loader, &c, WithFitter(&fakeFitter{}, nil))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		c := Config{Silent: true, SplitExpr: splitExpr}
		cv, err := New("cv", loader, &c)
		require.NoError(t, err)
		require.Equal(t, 2, cv.splitter.NumFolds())
	})
}

func TestBookMethod(t *testing.T) {
	cfg := newClassificationConfig(2)
	cv, err := New("cv", newClassificationLoader(), &cfg)
	require.NoError(t, err)

	t.Run("nil trainer", func(t *testing.T) {
		require.ErrorIs(t, cv.BookMethod("BDTG", nil), ErrTrainerRequired)
	})

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, cv.BookMethod("BDTG", cftest.NewCentroidTrainer()))
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := cv.BookMethod("BDTG", cftest.NewCentroidTrainer())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestEvaluateClassification(t *testing.T) {
	ctx := context.Background()

	cfg := newClassificationConfig(4)
	cv, err := New("cv", newClassificationLoader(), &cfg,
		WithLogger(cftest.NewTestLogger(t)),
	)
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

	require.NoError(t, cv.Evaluate(ctx))

	results, err := cv.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	require.Equal(t, "Centroid", result.Method())
	require.Equal(t, 4, result.NumFolds())

	// The two Gaussians are well separated, so every fold should classify
	// almost perfectly, and the folds should agree with each other.
	require.Greater(t, result.ROCAverage(), 0.85)
	require.Less(t, result.ROCStandardDeviation(), 0.05)

	total := 0
	for _, n := range result.FoldCounts() {
		require.Positive(t, n)
		total += n
	}
	require.Equal(t, 2000, total)

	require.Nil(t, result.FitResults())

	t.Run("second evaluate rejected", func(t *testing.T) {
		require.ErrorIs(t, cv.Evaluate(ctx), ErrAlreadyEvaluated)
	})

	t.Run("booking after evaluate rejected", func(t *testing.T) {
		err := cv.BookMethod("Late", cftest.NewCentroidTrainer())
		require.ErrorIs(t, err, ErrAlreadyEvaluated)
	})
}

func TestEvaluateHoldoutGuarantee(t *testing.T) {
	ctx := context.Background()

	trainer := &recordingTrainer{inner: cftest.NewCentroidTrainer()}
	cfg := newClassificationConfig(2)
	cv, err := New("cv", newClassificationLoader(), &cfg, WithConcurrency(1))
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", trainer))

	require.NoError(t, cv.Evaluate(ctx))

	require.Len(t, trainer.trainSets, 2)

	// With 1000 signal plus 1000 background events carrying sequential
	// eventIDs 1..1000 and the split expression eventID%2, each training
	// sample must hold exactly the 500 even or the 500 odd IDs, each
	// appearing once per source.
	parities := make(map[float64]bool, 2)
	for _, ids := range trainer.trainSets {
		require.Len(t, ids, 500)

		var parity float64 = -1
		for id, n := range ids {
			require.Equal(t, 2, n, "eventID %v should appear in both sources", id)
			p := math.Mod(id, 2)
			if parity < 0 {
				parity = p
			}
			require.Equal(t, parity, p, "training sample mixes fold parities")
		}
		parities[parity] = true
	}

	// One model trained on the even IDs, the other on the odd IDs: the
	// holdouts partition the dataset.
	require.Len(t, parities, 2)
}

func TestEvaluateRegression(t *testing.T) {
	ctx := context.Background()
	names := []string{"x", "target", "eventID"}

	records := make([]types.Record, 0, 100)
	for i := 0; i < 100; i++ {
		x := float64(i) / 10
		records = append(records, types.MustRecord(names, []float64{x, 3 + x, float64(i)}))
	}

	dl := NewDataLoader()
	dl.AddVariable("x")
	dl.AddSpectator("target")
	dl.AddSpectator("eventID")
	dl.AddSource(source.NewStatic(records))
	dl.SetRegressionTarget("target")

	cfg := Config{
		Silent:       true,
		AnalysisType: types.AnalysisRegression,
		NumFolds:     4,
		SplitExpr:    splitExpr,
	}
	cv, err := New("cv", dl, &cfg)
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Mean", cftest.NewMeanTrainer()))

	require.NoError(t, cv.Evaluate(ctx))

	results, err := cv.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)

	// The mean predictor's RMSE is roughly the target spread; the point is
	// that the regression path runs and yields a finite positive metric.
	require.Greater(t, results[0].MetricAverage(), 0.0)
	require.False(t, math.IsNaN(results[0].MetricStandardDeviation()))
	require.Contains(t, results[0].String(), "RMSE")
}

func TestEvaluateHooks(t *testing.T) {
	ctx := context.Background()

	var foldsTrained, evaluationsDone atomic.Int64
	hooks := &types.Hooks{
		OnFoldTrained: func(_ context.Context, method string, fold int, metric float64) error {
			require.Equal(t, "Centroid", method)
			require.GreaterOrEqual(t, fold, 0)
			require.Less(t, fold, 4)
			require.False(t, math.IsNaN(metric))
			foldsTrained.Add(1)
			return nil
		},
		OnEvaluationDone: func(context.Context) error {
			evaluationsDone.Add(1)
			return nil
		},
	}

	cfg := newClassificationConfig(4)
	cv, err := New("cv", newClassificationLoader(), &cfg, WithHooks(hooks))
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

	require.NoError(t, cv.Evaluate(ctx))
	require.Equal(t, int64(4), foldsTrained.Load())
	require.Equal(t, int64(1), evaluationsDone.Load())
}

func TestEvaluateHookError(t *testing.T) {
	ctx := context.Background()

	hookErr := errors.New("downstream unavailable")
	hooks := &types.Hooks{
		OnFoldTrained: func(context.Context, string, int, float64) error {
			return hookErr
		},
	}

	cfg := newClassificationConfig(2)
	cv, err := New("cv", newClassificationLoader(), &cfg, WithHooks(hooks))
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

	require.ErrorIs(t, cv.Evaluate(ctx), hookErr)
}

// failingTrainer always fails to train.
type failingTrainer struct {
	err error
}

func (tr *failingTrainer) Train(context.Context, []types.LabeledRecord, []string) (types.FoldModel, error) {
	return nil, tr.err
}

func TestEvaluateOnErrorHook(t *testing.T) {
	ctx := context.Background()

	t.Run("training failure notifies", func(t *testing.T) {
		trainErr := errors.New("model diverged")
		var notified atomic.Int64
		hooks := &types.Hooks{
			OnError: func(_ context.Context, err error) error {
				require.ErrorIs(t, err, trainErr)
				notified.Add(1)
				return nil
			},
		}

		cfg := newClassificationConfig(2)
		cv, err := New("cv", newClassificationLoader(), &cfg, WithHooks(hooks))
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Broken", &failingTrainer{err: trainErr}))

		require.ErrorIs(t, cv.Evaluate(ctx), trainErr)
		require.Equal(t, int64(1), notified.Load())
	})

	t.Run("assignment failure notifies", func(t *testing.T) {
		var notified atomic.Int64
		hooks := &types.Hooks{
			OnError: func(_ context.Context, err error) error {
				require.ErrorIs(t, err, split.ErrEvaluation)
				notified.Add(1)
				return nil
			},
		}

		dl := NewDataLoader()
		dl.AddVariable("x")
		dl.AddSignalSource(source.NewStatic([]types.Record{
			types.MustRecord([]string{"x", "eventID"}, []float64{0.5, 0}),
		}), 1)
		dl.AddBackgroundSource(source.NewStatic([]types.Record{
			types.MustRecord([]string{"x"}, []float64{-0.5}),
		}), 1)

		splitter, err := split.NewExpression(splitExpr, 2, []string{"eventID"})
		require.NoError(t, err)

		cfg := newClassificationConfig(2)
		cv, err := New("cv", dl, &cfg, WithSplitter(splitter), WithHooks(hooks))
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

		require.ErrorIs(t, cv.Evaluate(ctx), split.ErrEvaluation)
		require.Equal(t, int64(1), notified.Load())
	})

	t.Run("hook error does not mask the evaluation error", func(t *testing.T) {
		trainErr := errors.New("model diverged")
		hooks := &types.Hooks{
			OnError: func(context.Context, error) error {
				return errors.New("pager unreachable")
			},
		}

		cfg := newClassificationConfig(2)
		cv, err := New("cv", newClassificationLoader(), &cfg, WithHooks(hooks))
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Broken", &failingTrainer{err: trainErr}))

		require.ErrorIs(t, cv.Evaluate(ctx), trainErr)
	})

	t.Run("not called on success", func(t *testing.T) {
		var notified atomic.Int64
		hooks := &types.Hooks{
			OnError: func(context.Context, error) error {
				notified.Add(1)
				return nil
			},
		}

		cfg := newClassificationConfig(2)
		cv, err := New("cv", newClassificationLoader(), &cfg, WithHooks(hooks))
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

		require.NoError(t, cv.Evaluate(ctx))
		require.Equal(t, int64(0), notified.Load())
	})
}

// countingHistogram counts fills and sums weights.
type countingHistogram struct {
	mu     sync.Mutex
	fills  int
	weight float64
}

func (h *countingHistogram) Fill(coords []float64, weight float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fills++
	h.weight += weight
}

type fakeFitter struct{}

func (f *fakeFitter) Fit(_ context.Context, _ types.Histogram, initial []float64) (types.FitResult, error) {
	return types.FitResult{Params: initial, Chi2: 1.0}, nil
}

func TestEvaluateHistogramsAndFits(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	hists := make(map[int]*countingHistogram)
	factory := func(method string, fold int) types.Histogram {
		require.Equal(t, "Centroid", method)
		h := &countingHistogram{}
		mu.Lock()
		hists[fold] = h
		mu.Unlock()
		return h
	}

	cfg := newClassificationConfig(2)
	cv, err := New("cv", newClassificationLoader(), &cfg,
		WithScoreHistograms(factory),
		WithFitter(&fakeFitter{}, []float64{1, 0, 1}),
	)
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

	require.NoError(t, cv.Evaluate(ctx))

	require.Len(t, hists, 2)
	totalFills := 0
	for fold, h := range hists {
		require.Positive(t, h.fills, "fold %d histogram never filled", fold)
		require.InDelta(t, float64(h.fills), h.weight, 1e-9) // unit weights
		totalFills += h.fills
	}
	require.Equal(t, 2000, totalFills)

	results, err := cv.Results()
	require.NoError(t, err)

	fits := results[0].FitResults()
	require.Len(t, fits, 2)
	for _, fit := range fits {
		require.Equal(t, []float64{1, 0, 1}, fit.Params)
		require.Equal(t, 1.0, fit.Chi2)
	}
}

func TestEvaluateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no methods booked", func(t *testing.T) {
		cfg := newClassificationConfig(2)
		cv, err := New("cv", newClassificationLoader(), &cfg)
		require.NoError(t, err)
		require.ErrorIs(t, cv.Evaluate(ctx), ErrNoMethodsBooked)
	})

	t.Run("results before evaluate", func(t *testing.T) {
		cfg := newClassificationConfig(2)
		cv, err := New("cv", newClassificationLoader(), &cfg)
		require.NoError(t, err)

		_, err = cv.Results()
		require.ErrorIs(t, err, ErrNotEvaluated)
	})

	t.Run("no records", func(t *testing.T) {
		dl := NewDataLoader()
		dl.AddVariable("x")
		dl.AddSpectator("eventID")
		dl.AddSignalSource(source.NewStatic(nil), 1)
		dl.AddBackgroundSource(source.NewStatic(nil), 1)

		cfg := newClassificationConfig(2)
		cv, err := New("cv", dl, &cfg)
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

		require.ErrorIs(t, cv.Evaluate(ctx), ErrNoRecords)
	})

	t.Run("persistence without codec", func(t *testing.T) {
		cfg := newClassificationConfig(2)
		cfg.ModelPersistence = true
		cv, err := New("cv", newClassificationLoader(), &cfg)
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("NoCodec", &codecFreeTrainer{}))

		require.ErrorIs(t, cv.Evaluate(ctx), ErrCodecRequired)
	})

	t.Run("assignment failure aborts", func(t *testing.T) {
		// One record lacks a field the split expression needs. Loader
		// validation is bypassed by referencing the field only in the
		// expression, with a splitter bound directly.
		names := []string{"x", "eventID"}
		dl := NewDataLoader()
		dl.AddVariable("x")
		dl.AddSignalSource(source.NewStatic([]types.Record{
			types.MustRecord(names, []float64{0.5, 0}),
		}), 1)
		dl.AddBackgroundSource(source.NewStatic([]types.Record{
			types.MustRecord([]string{"x"}, []float64{-0.5}),
		}), 1)

		splitter, err := split.NewExpression(splitExpr, 2, []string{"eventID"})
		require.NoError(t, err)

		cfg := newClassificationConfig(2)
		cv, err := New("cv", dl, &cfg, WithSplitter(splitter))
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

		require.ErrorIs(t, cv.Evaluate(ctx), split.ErrEvaluation)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		cfg := newClassificationConfig(2)
		cv, err := New("cv", newClassificationLoader(), &cfg)
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

		require.ErrorIs(t, cv.Evaluate(cancelled), context.Canceled)
	})
}

// codecFreeTrainer trains fine but cannot persist.
type codecFreeTrainer struct{}

func (tr *codecFreeTrainer) Train(ctx context.Context, records []types.LabeledRecord, variables []string) (types.FoldModel, error) {
	return cftest.NewCentroidTrainer().Train(ctx, records, variables)
}

func TestEvaluatePersistence(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	cfg := newClassificationConfig(2)
	cfg.ModelPersistence = true
	cv, err := New("cv", newClassificationLoader(), &cfg, WithModelStore(st))
	require.NoError(t, err)
	require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))

	require.NoError(t, cv.Evaluate(ctx))

	keys, err := st.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"Centroid/fold-0",
		"Centroid/fold-1",
		"Centroid/manifest",
	}, keys)
}

func TestEvaluateDeterminism(t *testing.T) {
	ctx := context.Background()

	run := func() []float64 {
		cfg := newClassificationConfig(4)
		cv, err := New("cv", newClassificationLoader(), &cfg)
		require.NoError(t, err)
		require.NoError(t, cv.BookMethod("Centroid", cftest.NewCentroidTrainer()))
		require.NoError(t, cv.Evaluate(ctx))

		results, err := cv.Results()
		require.NoError(t, err)
		return results[0].FoldMetrics()
	}

	first := run()
	for i := 0; i < 3; i++ {
		require.Equal(t, first, run())
	}
}
