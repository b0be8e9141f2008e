package crossfold

import "errors"

// Sentinel errors returned by the CrossValidation orchestrator.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDataLoaderRequired is returned when the data loader is nil.
	ErrDataLoaderRequired = errors.New("data loader is required")

	// ErrTrainerRequired is returned when a method is booked with a nil trainer.
	ErrTrainerRequired = errors.New("classifier trainer is required")

	// ErrNoMethodsBooked is returned when Evaluate is called without any booked method.
	ErrNoMethodsBooked = errors.New("no methods booked")

	// ErrNoRecords is returned when the data loader yields no records.
	ErrNoRecords = errors.New("data loader yielded no records")

	// ErrAlreadyEvaluated is returned when Evaluate or BookMethod is called after
	// a completed evaluation.
	ErrAlreadyEvaluated = errors.New("cross-validation already evaluated")

	// ErrNotEvaluated is returned when Results is called before Evaluate.
	ErrNotEvaluated = errors.New("cross-validation not evaluated yet")

	// ErrCodecRequired is returned when model persistence is enabled but a booked
	// trainer does not implement ModelCodec.
	ErrCodecRequired = errors.New("trainer does not support model persistence")

	// ErrSplitMismatch is returned when persisted models are loaded with a split
	// configuration that differs from the one they were trained under. Scoring
	// with a drifted split would break the holdout guarantee, so it is rejected.
	ErrSplitMismatch = errors.New("split configuration differs from training")
)
