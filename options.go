package crossfold

import (
	"github.com/seiche/crossfold/store"
	"github.com/seiche/crossfold/types"
)

// Option configures a CrossValidation with optional dependencies.
type Option func(*cvOptions)

// cvOptions holds optional CrossValidation configuration.
type cvOptions struct {
	logger      types.Logger
	metrics     types.MetricsCollector
	hooks       *types.Hooks
	splitter    types.FoldSplitter
	modelStore  store.ModelStore
	concurrency int
	histFactory func(method string, fold int) types.Histogram
	fitter      types.Fitter
	fitInitial  []float64
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (e.g. logging.NewSlog)
//
// Returns:
//   - Option: Functional option for New
func WithLogger(logger types.Logger) Option {
	return func(o *cvOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation (e.g. metrics.NewPrometheus)
//
// Returns:
//   - Option: Functional option for New
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *cvOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	hooks := &crossfold.Hooks{
//	    OnFoldTrained: func(ctx context.Context, method string, fold int, metric float64) error {
//	        return publish(method, fold, metric)
//	    },
//	}
//	cv, _ := crossfold.New("cv", loader, &cfg, crossfold.WithHooks(hooks))
func WithHooks(hooks *types.Hooks) Option {
	return func(o *cvOptions) {
		o.hooks = hooks
	}
}

// WithSplitter injects a custom fold splitter, replacing the expression
// splitter that would otherwise be built from Config.SplitExpr.
//
// The splitter's fold count must match Config.NumFolds.
//
// Parameters:
//   - splitter: FoldSplitter implementation (e.g. split.NewHash)
//
// Returns:
//   - Option: Functional option for New
func WithSplitter(splitter types.FoldSplitter) Option {
	return func(o *cvOptions) {
		o.splitter = splitter
	}
}

// WithModelStore sets the model store used when Config.ModelPersistence is
// enabled. Defaults to an in-memory store.
//
// Parameters:
//   - st: ModelStore implementation (e.g. store.NewNATS)
//
// Returns:
//   - Option: Functional option for New
func WithModelStore(st store.ModelStore) Option {
	return func(o *cvOptions) {
		o.modelStore = st
	}
}

// WithConcurrency limits how many folds train in parallel. The default is
// the fold count (all folds in parallel); 1 forces sequential training.
//
// Parameters:
//   - n: Maximum concurrent fold trainings (values < 1 mean the default)
//
// Returns:
//   - Option: Functional option for New
func WithConcurrency(n int) Option {
	return func(o *cvOptions) {
		o.concurrency = n
	}
}

// WithScoreHistograms books one histogram per method and fold, filled with
// the holdout scores during Evaluate. The histogram implementation comes
// from the external numerical backend; each entry is filled at
// (score, target) with the record weight.
//
// Parameters:
//   - factory: Called once per method/fold to create the histogram
//
// Returns:
//   - Option: Functional option for New
func WithScoreHistograms(factory func(method string, fold int) types.Histogram) Option {
	return func(o *cvOptions) {
		o.histFactory = factory
	}
}

// WithFitter fits the given fitter to every filled score histogram after
// its fold completes, storing the FitResult on the method's Result.
// Requires WithScoreHistograms.
//
// Parameters:
//   - fitter: External fitting backend
//   - initial: Starting parameter values handed to each fit
//
// Returns:
//   - Option: Functional option for New
func WithFitter(fitter types.Fitter, initial []float64) Option {
	return func(o *cvOptions) {
		o.fitter = fitter
		o.fitInitial = initial
	}
}
