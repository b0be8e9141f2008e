package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called from the orchestrator's fold goroutines and must be
// thread-safe.
//
// The interface composes smaller, domain-focused interfaces so custom
// collectors can embed NopMetrics and override only what they need.
type MetricsCollector interface {
	SplitMetrics
	TrainingMetrics
}

// SplitMetrics defines metrics for fold assignment.
type SplitMetrics interface {
	// RecordFoldAssignment records one record assigned to the given fold.
	RecordFoldAssignment(fold int)

	// RecordSplitError records a failed fold assignment.
	RecordSplitError()
}

// TrainingMetrics defines metrics for per-fold training and evaluation.
type TrainingMetrics interface {
	// RecordFoldTrainingDuration records the wall time of one fold training.
	//
	// Parameters:
	//   - method: Booked method name
	//   - fold: Fold index
	//   - seconds: Training duration in seconds
	RecordFoldTrainingDuration(method string, fold int, seconds float64)

	// RecordFoldMetric records the holdout metric of one fold (ROC AUC for
	// classification, RMSE for regression).
	RecordFoldMetric(method string, fold int, value float64)

	// RecordEvaluationDuration records the wall time of a full Evaluate run.
	RecordEvaluationDuration(seconds float64)
}
