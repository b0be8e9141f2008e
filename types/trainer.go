package types

import "context"

// FoldModel is an opaque trained classifier (or regressor) associated with
// exactly one fold: trained on all records NOT in that fold, evaluated on
// records IN that fold.
//
// Score must be safe for concurrent use once training has completed.
type FoldModel interface {
	// Score evaluates the model response for one record.
	//
	// For classification, larger scores mean more signal-like. For
	// regression, the score is the predicted target.
	//
	// Parameters:
	//   - record: Record carrying at least the model's input variables
	//
	// Returns:
	//   - float64: Model response
	//   - error: Scoring error (e.g. missing input variable)
	Score(record Record) (float64, error)
}

// ClassifierTrainer trains one FoldModel from a training sample.
//
// Training algorithms (boosted trees, Fisher discriminants, ...) are the
// external toolkit's responsibility; crossfold only orchestrates which
// records each training run sees. Implementations may be called
// concurrently for different folds and must not share mutable state
// between calls.
type ClassifierTrainer interface {
	// Train fits a model on the given labeled records.
	//
	// Parameters:
	//   - ctx: Context for cancellation; long trainings should honor it
	//   - records: Training sample (the complement of the holdout fold)
	//   - variables: Names of the input-variable fields. Spectator fields
	//     are present on the records but must not be used as inputs.
	//
	// Returns:
	//   - FoldModel: Trained model
	//   - error: Training failure (propagated, never retried here)
	Train(ctx context.Context, records []LabeledRecord, variables []string) (FoldModel, error)
}

// ModelCodec serializes FoldModels for persistence.
//
// Trainers that support model persistence implement this alongside
// ClassifierTrainer. The byte format is the toolkit's own; crossfold
// treats it as opaque.
type ModelCodec interface {
	// EncodeModel serializes a trained model.
	EncodeModel(model FoldModel) ([]byte, error)

	// DecodeModel reconstructs a model previously encoded by EncodeModel.
	DecodeModel(data []byte) (FoldModel, error)
}
