// Package crossfold provides deterministic k-fold cross-validation with
// spectator-based fold assignment.
//
// Crossfold splits a dataset into k folds by evaluating a user-supplied
// expression over each record's spectator fields, trains one model per
// fold on the complement of that fold, evaluates it on the held-out
// fold, and aggregates the per-fold metric (ROC AUC for classification,
// RMSE for regression) into a mean and standard deviation. Because fold
// membership is a pure function of record content, the split is
// reproducible across runs and machines, and persisted models can later
// be applied to new data with the guarantee that no record is ever
// scored by a model that trained on it.
//
// # Quick Start
//
// Basic usage with an expression-based split:
//
//	import "github.com/seiche/crossfold"
//
//	loader := crossfold.NewDataLoader()
//	loader.AddVariable("x")
//	loader.AddVariable("y")
//	loader.AddSpectator("eventID")
//	loader.AddSignalSource(signal, 1.0)
//	loader.AddBackgroundSource(background, 1.0)
//
//	cfg, err := crossfold.ParseOptions(
//	    "!V:!Silent:ModelPersistence:AnalysisType=Classification:" +
//	        "NumFolds=4:SplitExpr=int(fabs([eventID]))%int([NumFolds])")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cv, err := crossfold.New("cv", loader, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cv.BookMethod("BDTG", trainer)
//
//	if err := cv.Evaluate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	results, _ := cv.Results()
//	fmt.Println(results[0])
//
// # Key Features
//
//   - Deterministic Splits: Fold membership is computed from spectator
//     fields, never from random shuffling or dataset order
//   - Split Expressions: A small arithmetic language over [field]
//     references, parsed once into a typed form and evaluated per record
//   - Holdout Guarantee: The per-fold holdouts partition the dataset;
//     assignment failures abort the run instead of mis-filing records
//   - Model Persistence: Trained models and the split fingerprint are
//     written to a pluggable store (in-memory or NATS JetStream)
//   - Drift Rejection: LoadApplier refuses models whose recorded split
//     fingerprint does not match the splitter at hand
//
// # Architecture
//
// An evaluation proceeds in fixed phases:
//
//	LOAD → ASSIGN FOLDS → per method: TRAIN k MODELS → SCORE HOLDOUTS → AGGREGATE
//
// Fold trainings within a method run concurrently, bounded by
// WithConcurrency. Training and model scoring are delegated to a
// ClassifierTrainer supplied by the caller; crossfold owns the split,
// the orchestration and the aggregation, not the learning algorithm.
//
// # Advanced Usage
//
// Custom splitter with options:
//
//	import (
//	    "github.com/seiche/crossfold"
//	    "github.com/seiche/crossfold/split"
//	)
//
//	splitter, err := split.NewHash("eventID", 4, split.WithSeed(7))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hooks := &crossfold.Hooks{
//	    OnFoldTrained: func(ctx context.Context, method string, fold int, metric float64) error {
//	        // React to a finished fold
//	        return nil
//	    },
//	}
//
//	cv, err := crossfold.New("cv", loader, &cfg,
//	    crossfold.WithSplitter(splitter),
//	    crossfold.WithHooks(hooks),
//	    crossfold.WithModelStore(natsStore),
//	)
//
// See the examples/ directory for complete working examples.
package crossfold
