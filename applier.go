package crossfold

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/seiche/crossfold/store"
	"github.com/seiche/crossfold/types"
)

// Applier scores records with the persisted per-fold models of one method.
//
// Each record is routed to the model of its own fold. That model was
// trained on the complement of the fold, so a record is never scored by
// a model that saw it during training, and re-scoring the original
// dataset reproduces the cross-validation holdout scores exactly.
type Applier struct {
	method   string
	splitter types.FoldSplitter
	models   []types.FoldModel
}

// LoadApplier loads a method's persisted models from a store and binds
// them to a fold splitter.
//
// The splitter must reproduce the split the models were trained under:
// its fingerprint is checked against the one recorded in the method's
// manifest, and any mismatch (different expression, different fold
// count, different hash seed) fails with ErrSplitMismatch. Routing
// records with a drifted split would silently hand them to models that
// may have trained on them.
//
// Parameters:
//   - ctx: Context for store access
//   - st: Store the models were persisted to
//   - method: Method name used at booking time
//   - splitter: Splitter configured identically to the training run
//   - codec: Codec able to decode the method's model payloads
//
// Returns:
//   - *Applier: Ready-to-score applier
//   - error: ErrSplitMismatch on configuration drift, store.ErrNotFound
//     when the method was never persisted
func LoadApplier(
	ctx context.Context,
	st store.ModelStore,
	method string,
	splitter types.FoldSplitter,
	codec types.ModelCodec,
) (*Applier, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: model store is required", ErrInvalidConfig)
	}
	if splitter == nil {
		return nil, fmt.Errorf("%w: splitter is required", ErrInvalidConfig)
	}
	if codec == nil {
		return nil, ErrCodecRequired
	}

	raw, err := st.Get(ctx, store.ManifestKey(method))
	if err != nil {
		return nil, fmt.Errorf("load manifest for %q: %w", method, err)
	}

	var manifest store.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest for %q: %w", method, err)
	}

	if manifest.NumFolds != splitter.NumFolds() {
		return nil, fmt.Errorf("%w: models were trained with %d folds, splitter has %d",
			ErrSplitMismatch, manifest.NumFolds, splitter.NumFolds())
	}
	if manifest.SplitFingerprint != splitter.Fingerprint() {
		return nil, fmt.Errorf("%w: split fingerprint %#x does not match trained fingerprint %#x",
			ErrSplitMismatch, splitter.Fingerprint(), manifest.SplitFingerprint)
	}

	models := make([]types.FoldModel, manifest.NumFolds)
	for fold := 0; fold < manifest.NumFolds; fold++ {
		data, err := st.Get(ctx, store.ModelKey(method, fold))
		if err != nil {
			return nil, fmt.Errorf("load model for %q fold %d: %w", method, fold, err)
		}
		model, err := codec.DecodeModel(data)
		if err != nil {
			return nil, fmt.Errorf("decode model for %q fold %d: %w", method, fold, err)
		}
		models[fold] = model
	}

	return &Applier{
		method:   method,
		splitter: splitter,
		models:   models,
	}, nil
}

// Method returns the name the models were booked under.
func (a *Applier) Method() string {
	return a.method
}

// Score assigns the record to its fold and scores it with that fold's
// model.
//
// Parameters:
//   - record: Record carrying the splitter's identifiers and the model's
//     input variables
//
// Returns:
//   - float64: Model score
//   - error: Fold assignment or scoring error
func (a *Applier) Score(record types.Record) (float64, error) {
	fold, err := a.splitter.AssignFold(record)
	if err != nil {
		return 0, err
	}

	return a.models[fold].Score(record)
}
