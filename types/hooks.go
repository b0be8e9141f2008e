package types

import "context"

// Hooks defines callbacks for cross-validation lifecycle events.
//
// All hooks are optional. They are invoked inline from the fold worker
// goroutines, so implementations should complete quickly and respect
// context cancellation; an OnFoldTrained or OnEvaluationDone error aborts
// the evaluation.
//
// Example:
//
//	hooks := &crossfold.Hooks{
//	    OnFoldTrained: func(ctx context.Context, method string, fold int, metric float64) error {
//	        log.Printf("%s fold %d: %.4f", method, fold, metric)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnFoldTrained is called after one fold's model has been trained and
	// evaluated on its holdout. metric is the fold's holdout metric.
	OnFoldTrained func(ctx context.Context, method string, fold int, metric float64) error

	// OnEvaluationDone is called once after all booked methods have been
	// evaluated on all folds.
	OnEvaluationDone func(ctx context.Context) error

	// OnError is called when the evaluation fails (fold assignment,
	// training, scoring or persistence). The evaluation is already doomed
	// at that point: the hook is a notification channel, and its own
	// return value is logged, not propagated.
	OnError func(ctx context.Context, err error) error
}
