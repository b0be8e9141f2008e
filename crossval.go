package crossfold

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/seiche/crossfold/internal/logging"
	"github.com/seiche/crossfold/internal/metrics"
	"github.com/seiche/crossfold/internal/roc"
	"github.com/seiche/crossfold/split"
	"github.com/seiche/crossfold/store"
	"github.com/seiche/crossfold/types"
)

// CrossValidation orchestrates deterministic k-fold cross-validation.
//
// For each fold f in [0, NumFolds) it trains one model per booked method
// on all records whose assigned fold differs from f, evaluates it on the
// records in fold f, and aggregates the per-fold metric (mean and
// standard deviation) into a Result.
//
// Fold membership comes from a single FoldSplitter instance evaluated
// exactly once per record, so the holdouts partition the dataset: every
// record is scored by exactly one model that never saw it in training.
//
// Thread safety:
//   - New, BookMethod and Evaluate are meant to be called from one
//     goroutine (ordinary configure-then-run discipline)
//   - Evaluate internally trains folds in parallel
//   - Results is safe to call from any goroutine after Evaluate returned
//
// Lifecycle:
//   - Create with New()
//   - Book one or more methods with BookMethod()
//   - Call Evaluate() once
//   - Read Results()
type CrossValidation struct {
	name   string
	cfg    Config
	loader *DataLoader

	splitter   types.FoldSplitter
	logger     types.Logger
	metrics    types.MetricsCollector
	hooks      *types.Hooks
	modelStore store.ModelStore

	concurrency int
	histFactory func(method string, fold int) types.Histogram
	fitter      types.Fitter
	fitInitial  []float64

	mu        sync.Mutex
	methods   []bookedMethod
	results   []*Result
	evaluated atomic.Bool
}

type bookedMethod struct {
	name    string
	trainer types.ClassifierTrainer
}

// New creates a CrossValidation instance.
//
// Unless WithSplitter overrides it, the splitter is built from
// cfg.SplitExpr and cfg.NumFolds, with identifiers bound to the loader's
// declared fields. The same splitter instance is used for training-set
// construction, holdout scoring and (via its fingerprint) later model
// application; see Applier.
//
// Parameters:
//   - name: Run name, used in logging
//   - loader: Data loader with declared fields and attached sources
//   - cfg: Configuration (missing values are defaulted in place)
//   - opts: Optional configuration (logger, metrics, splitter, store, ...)
//
// Returns:
//   - *CrossValidation: Initialized orchestrator
//   - error: Validation error if the configuration is invalid
//
// Example:
//
//	cfg, _ := crossfold.ParseOptions("!V:!Silent:ModelPersistence:NumFolds=2:SplitExpr=int(fabs([eventID]))%int([NumFolds])")
//	cv, err := crossfold.New("cv", loader, &cfg)
func New(name string, loader *DataLoader, cfg *Config, opts ...Option) (*CrossValidation, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if loader == nil {
		return nil, ErrDataLoaderRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &cvOptions{}
	for _, opt := range opts {
		opt(options)
	}

	splitter := options.splitter
	if splitter == nil {
		if cfg.SplitExpr == "" {
			return nil, fmt.Errorf("%w: SplitExpr is empty and no splitter was injected", ErrInvalidConfig)
		}
		var err error
		splitter, err = split.NewExpression(cfg.SplitExpr, cfg.NumFolds, loader.Fields())
		if err != nil {
			return nil, err
		}
	} else if splitter.NumFolds() != cfg.NumFolds {
		return nil, fmt.Errorf("%w: splitter has %d folds but NumFolds is %d",
			ErrInvalidConfig, splitter.NumFolds(), cfg.NumFolds)
	}

	logger := options.logger
	if logger == nil {
		if cfg.Silent {
			logger = logging.Nop{}
		} else {
			logger = logging.NewSlogDefault()
		}
	}

	collector := options.metrics
	if collector == nil {
		collector = metrics.NewNop()
	}

	modelStore := options.modelStore
	if cfg.ModelPersistence && modelStore == nil {
		modelStore = store.NewMemory()
	}

	concurrency := options.concurrency
	if concurrency < 1 {
		concurrency = cfg.NumFolds
	}

	if options.fitter != nil && options.histFactory == nil {
		return nil, fmt.Errorf("%w: WithFitter requires WithScoreHistograms", ErrInvalidConfig)
	}

	return &CrossValidation{
		name:        name,
		cfg:         *cfg,
		loader:      loader,
		splitter:    splitter,
		logger:      logger,
		metrics:     collector,
		hooks:       options.hooks,
		modelStore:  modelStore,
		concurrency: concurrency,
		histFactory: options.histFactory,
		fitter:      options.fitter,
		fitInitial:  options.fitInitial,
	}, nil
}

// Splitter returns the fold splitter of this run. Hand the same splitter
// (or one with an equal fingerprint) to LoadApplier when scoring new data
// with the persisted models.
func (cv *CrossValidation) Splitter() types.FoldSplitter {
	return cv.splitter
}

// BookMethod registers a method to train and evaluate.
//
// Parameters:
//   - name: Method name, unique within this run
//   - trainer: The external toolkit's trainer
//
// Returns:
//   - error: ErrTrainerRequired, ErrAlreadyEvaluated, or a duplicate-name error
func (cv *CrossValidation) BookMethod(name string, trainer types.ClassifierTrainer) error {
	if trainer == nil {
		return ErrTrainerRequired
	}
	if cv.evaluated.Load() {
		return ErrAlreadyEvaluated
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()

	for _, m := range cv.methods {
		if m.name == name {
			return fmt.Errorf("%w: method %q already booked", ErrInvalidConfig, name)
		}
	}
	cv.methods = append(cv.methods, bookedMethod{name: name, trainer: trainer})

	return nil
}

// Evaluate runs the full cross-validation: fold assignment, per-fold
// training and holdout evaluation for every booked method, metric
// aggregation, and (when enabled) model persistence.
//
// Any fold assignment failure aborts the run: a record whose fold cannot
// be computed must not be silently placed anywhere, because that would
// corrupt the holdout guarantee.
//
// Parameters:
//   - ctx: Context for cancellation; aborts in-flight fold trainings
//
// Returns:
//   - error: First error encountered (assignment, training, scoring,
//     persistence or hook)
func (cv *CrossValidation) Evaluate(ctx context.Context) error {
	if !cv.evaluated.CompareAndSwap(false, true) {
		return ErrAlreadyEvaluated
	}

	if err := cv.evaluate(ctx); err != nil {
		cv.notifyError(ctx, err)
		return err
	}

	return nil
}

func (cv *CrossValidation) evaluate(ctx context.Context) error {
	cv.mu.Lock()
	methods := make([]bookedMethod, len(cv.methods))
	copy(methods, cv.methods)
	cv.mu.Unlock()

	if len(methods) == 0 {
		return ErrNoMethodsBooked
	}
	if cv.cfg.ModelPersistence {
		for _, m := range methods {
			if _, ok := m.trainer.(types.ModelCodec); !ok {
				return fmt.Errorf("%w: method %q", ErrCodecRequired, m.name)
			}
		}
	}

	start := time.Now()
	cv.logger.Info("cross-validation started",
		"name", cv.name,
		"numFolds", cv.cfg.NumFolds,
		"methods", len(methods),
		"analysisType", cv.cfg.AnalysisType.String(),
	)

	records, err := cv.loader.load(ctx, cv.cfg.AnalysisType)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoRecords
	}

	byFold, err := cv.assignFolds(records)
	if err != nil {
		return err
	}

	results := make([]*Result, 0, len(methods))
	for _, method := range methods {
		result, err := cv.evaluateMethod(ctx, method, records, byFold)
		if err != nil {
			return fmt.Errorf("method %q: %w", method.name, err)
		}
		results = append(results, result)
	}

	cv.mu.Lock()
	cv.results = results
	cv.mu.Unlock()

	elapsed := time.Since(start)
	cv.metrics.RecordEvaluationDuration(elapsed.Seconds())
	cv.logger.Info("cross-validation finished", "name", cv.name, "elapsed", elapsed)

	if cv.hooks != nil && cv.hooks.OnEvaluationDone != nil {
		if err := cv.hooks.OnEvaluationDone(ctx); err != nil {
			return fmt.Errorf("OnEvaluationDone hook: %w", err)
		}
	}

	return nil
}

// notifyError reports an evaluation failure to the OnError hook. The hook
// cannot rescue the evaluation, so its own error is only logged.
func (cv *CrossValidation) notifyError(ctx context.Context, err error) {
	if cv.hooks == nil || cv.hooks.OnError == nil {
		return
	}
	if hookErr := cv.hooks.OnError(ctx, err); hookErr != nil {
		cv.logger.Warn("OnError hook failed", "error", hookErr)
	}
}

// Results returns one Result per booked method, in booking order.
//
// Returns:
//   - []*Result: Per-method results
//   - error: ErrNotEvaluated before a successful Evaluate
func (cv *CrossValidation) Results() ([]*Result, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	if cv.results == nil {
		return nil, ErrNotEvaluated
	}

	out := make([]*Result, len(cv.results))
	copy(out, cv.results)

	return out, nil
}

// assignFolds maps every record to its fold exactly once and groups the
// record indices by fold.
func (cv *CrossValidation) assignFolds(records []types.LabeledRecord) ([][]int, error) {
	byFold := make([][]int, cv.cfg.NumFolds)

	for i, lr := range records {
		fold, err := cv.splitter.AssignFold(lr.Record)
		if err != nil {
			cv.metrics.RecordSplitError()
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		cv.metrics.RecordFoldAssignment(fold)
		byFold[fold] = append(byFold[fold], i)
	}

	if cv.cfg.Verbose {
		for f, idx := range byFold {
			cv.logger.Debug("fold populated", "fold", f, "records", len(idx))
		}
	}

	return byFold, nil
}

// foldOutcome carries one fold's training outcome from its goroutine to
// the result assembly.
type foldOutcome struct {
	metric float64
	count  int
	fit    types.FitResult
	hasFit bool
}

func (cv *CrossValidation) evaluateMethod(
	ctx context.Context,
	method bookedMethod,
	records []types.LabeledRecord,
	byFold [][]int,
) (*Result, error) {
	numFolds := cv.cfg.NumFolds
	outcomes := xsync.NewMap[int, *foldOutcome]()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cv.concurrency)

	for fold := 0; fold < numFolds; fold++ {
		g.Go(func() error {
			outcome, err := cv.trainFold(gctx, method, records, byFold, fold)
			if err != nil {
				return err
			}
			outcomes.Store(fold, outcome)

			if cv.hooks != nil && cv.hooks.OnFoldTrained != nil {
				if err := cv.hooks.OnFoldTrained(gctx, method.name, fold, outcome.metric); err != nil {
					return fmt.Errorf("OnFoldTrained hook: %w", err)
				}
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cv.cfg.ModelPersistence {
		if err := cv.writeManifest(ctx, method.name); err != nil {
			return nil, err
		}
	}

	result := &Result{
		method:      method.name,
		analysis:    cv.cfg.AnalysisType,
		foldMetrics: make([]float64, numFolds),
		foldCounts:  make([]int, numFolds),
		fits:        make([]types.FitResult, numFolds),
		hasFits:     cv.fitter != nil,
	}
	for fold := 0; fold < numFolds; fold++ {
		outcome, ok := outcomes.Load(fold)
		if !ok {
			return nil, fmt.Errorf("fold %d produced no outcome", fold)
		}
		result.foldMetrics[fold] = outcome.metric
		result.foldCounts[fold] = outcome.count
		if outcome.hasFit {
			result.fits[fold] = outcome.fit
		}
		cv.metrics.RecordFoldMetric(method.name, fold, outcome.metric)
	}

	cv.logger.Info("method evaluated",
		"method", method.name,
		"avg", result.MetricAverage(),
		"std", result.MetricStandardDeviation(),
	)

	return result, nil
}

// trainFold trains one fold's model on the complement of the fold and
// evaluates it on the fold's holdout.
func (cv *CrossValidation) trainFold(
	ctx context.Context,
	method bookedMethod,
	records []types.LabeledRecord,
	byFold [][]int,
	fold int,
) (*foldOutcome, error) {
	holdoutIdx := byFold[fold]

	trainSet := make([]types.LabeledRecord, 0, len(records)-len(holdoutIdx))
	for f, idx := range byFold {
		if f == fold {
			continue
		}
		for _, i := range idx {
			trainSet = append(trainSet, records[i])
		}
	}

	trainStart := time.Now()
	model, err := method.trainer.Train(ctx, trainSet, cv.loader.Variables())
	if err != nil {
		return nil, fmt.Errorf("fold %d: train: %w", fold, err)
	}
	cv.metrics.RecordFoldTrainingDuration(method.name, fold, time.Since(trainStart).Seconds())

	var hist types.Histogram
	if cv.histFactory != nil {
		hist = cv.histFactory(method.name, fold)
	}

	scores := make([]float64, 0, len(holdoutIdx))
	targets := make([]float64, 0, len(holdoutIdx))
	for _, i := range holdoutIdx {
		lr := records[i]
		score, err := model.Score(lr.Record)
		if err != nil {
			return nil, fmt.Errorf("fold %d: score record %d: %w", fold, i, err)
		}
		scores = append(scores, score)
		targets = append(targets, lr.Target)
		if hist != nil {
			hist.Fill([]float64{score, lr.Target}, lr.Weight)
		}
	}

	var metric float64
	switch cv.cfg.AnalysisType {
	case types.AnalysisRegression:
		metric, err = roc.RMSE(scores, targets)
	default:
		metric, err = roc.AUC(scores, targets)
	}
	if err != nil {
		return nil, fmt.Errorf("fold %d: %w", fold, err)
	}

	outcome := &foldOutcome{metric: metric, count: len(holdoutIdx)}

	if cv.fitter != nil && hist != nil {
		fit, err := cv.fitter.Fit(ctx, hist, cv.fitInitial)
		if err != nil {
			return nil, fmt.Errorf("fold %d: fit: %w", fold, err)
		}
		outcome.fit = fit
		outcome.hasFit = true
	}

	if cv.cfg.ModelPersistence {
		codec := method.trainer.(types.ModelCodec) // checked in Evaluate
		data, err := codec.EncodeModel(model)
		if err != nil {
			return nil, fmt.Errorf("fold %d: encode model: %w", fold, err)
		}
		if err := cv.modelStore.Put(ctx, store.ModelKey(method.name, fold), data); err != nil {
			return nil, fmt.Errorf("fold %d: persist model: %w", fold, err)
		}
	}

	cv.logger.Info("fold trained",
		"method", method.name,
		"fold", fold,
		"trainEvents", len(trainSet),
		"testEvents", len(holdoutIdx),
		"metric", metric,
	)

	return outcome, nil
}

// writeManifest stores the split configuration next to a method's models.
func (cv *CrossValidation) writeManifest(ctx context.Context, method string) error {
	manifest := store.Manifest{
		Method:           method,
		NumFolds:         cv.cfg.NumFolds,
		SplitFingerprint: cv.splitter.Fingerprint(),
		Variables:        cv.loader.Variables(),
		AnalysisType:     cv.cfg.AnalysisType.String(),
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := cv.modelStore.Put(ctx, store.ManifestKey(method), data); err != nil {
		return fmt.Errorf("persist manifest: %w", err)
	}

	return nil
}
