package crossfold

import (
	"context"
	"fmt"

	"github.com/seiche/crossfold/types"
)

// DataLoader declares the field layout of the analysis and attaches the
// record sources.
//
// Variables are model inputs. Spectators are fields carried on every
// record for control purposes only — most importantly the split key — and
// are never handed to trainers as inputs. For classification, signal and
// background sources are labeled 1 and 0; for regression, a single source
// is used together with a declared target spectator.
type DataLoader struct {
	variables  []string
	spectators []string

	signal       types.RecordSource
	signalWeight float64

	background       types.RecordSource
	backgroundWeight float64

	regressionTarget string
}

// NewDataLoader creates an empty data loader.
func NewDataLoader() *DataLoader {
	return &DataLoader{}
}

// AddVariable declares a model input variable.
func (dl *DataLoader) AddVariable(name string) {
	dl.variables = append(dl.variables, name)
}

// AddSpectator declares a control field (e.g. the event ID used by the
// split expression) that is excluded from model inputs.
func (dl *DataLoader) AddSpectator(name string) {
	dl.spectators = append(dl.spectators, name)
}

// AddSignalSource attaches the signal sample with a global event weight.
func (dl *DataLoader) AddSignalSource(src types.RecordSource, weight float64) {
	dl.signal = src
	dl.signalWeight = weight
}

// AddBackgroundSource attaches the background sample with a global event
// weight.
func (dl *DataLoader) AddBackgroundSource(src types.RecordSource, weight float64) {
	dl.background = src
	dl.backgroundWeight = weight
}

// AddSource attaches the single sample of a regression analysis. It is an
// alias for AddSignalSource with unit weight.
func (dl *DataLoader) AddSource(src types.RecordSource) {
	dl.AddSignalSource(src, 1.0)
}

// SetRegressionTarget names the spectator holding the regression target.
// The field must also be declared with AddSpectator.
func (dl *DataLoader) SetRegressionTarget(name string) {
	dl.regressionTarget = name
}

// Variables returns the declared input variables.
func (dl *DataLoader) Variables() []string {
	out := make([]string, len(dl.variables))
	copy(out, dl.variables)

	return out
}

// Spectators returns the declared spectators.
func (dl *DataLoader) Spectators() []string {
	out := make([]string, len(dl.spectators))
	copy(out, dl.spectators)

	return out
}

// Fields returns all declared fields (variables then spectators). This is
// the identifier set split expressions may reference.
func (dl *DataLoader) Fields() []string {
	out := make([]string, 0, len(dl.variables)+len(dl.spectators))
	out = append(out, dl.variables...)
	out = append(out, dl.spectators...)

	return out
}

// load reads all sources, validates the declared fields on every record
// and attaches targets and weights.
func (dl *DataLoader) load(ctx context.Context, analysis types.AnalysisType) ([]types.LabeledRecord, error) {
	if len(dl.variables) == 0 {
		return nil, fmt.Errorf("%w: no variables declared", ErrInvalidConfig)
	}

	switch analysis {
	case types.AnalysisClassification:
		return dl.loadClassification(ctx)
	case types.AnalysisRegression:
		return dl.loadRegression(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown analysis type %d", ErrInvalidConfig, int(analysis))
	}
}

func (dl *DataLoader) loadClassification(ctx context.Context) ([]types.LabeledRecord, error) {
	if dl.signal == nil || dl.background == nil {
		return nil, fmt.Errorf("%w: classification needs both signal and background sources", ErrInvalidConfig)
	}

	sig, err := dl.labelSource(ctx, dl.signal, 1, dl.signalWeight)
	if err != nil {
		return nil, fmt.Errorf("signal source: %w", err)
	}
	bkg, err := dl.labelSource(ctx, dl.background, 0, dl.backgroundWeight)
	if err != nil {
		return nil, fmt.Errorf("background source: %w", err)
	}

	return append(sig, bkg...), nil
}

func (dl *DataLoader) loadRegression(ctx context.Context) ([]types.LabeledRecord, error) {
	if dl.signal == nil {
		return nil, fmt.Errorf("%w: regression needs a source", ErrInvalidConfig)
	}
	if dl.regressionTarget == "" {
		return nil, fmt.Errorf("%w: regression needs a target (SetRegressionTarget)", ErrInvalidConfig)
	}
	declared := false
	for _, s := range dl.spectators {
		if s == dl.regressionTarget {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("%w: regression target %q must be declared as a spectator", ErrInvalidConfig, dl.regressionTarget)
	}

	records, err := dl.signal.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.LabeledRecord, 0, len(records))
	for i, rec := range records {
		if err := dl.validateRecord(rec, i); err != nil {
			return nil, err
		}
		target, _ := rec.Get(dl.regressionTarget) // present, validated above
		out = append(out, types.LabeledRecord{Record: rec, Target: target, Weight: 1})
	}

	return out, nil
}

func (dl *DataLoader) labelSource(ctx context.Context, src types.RecordSource, target, weight float64) ([]types.LabeledRecord, error) {
	records, err := src.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	if weight == 0 {
		weight = 1
	}

	out := make([]types.LabeledRecord, 0, len(records))
	for i, rec := range records {
		if err := dl.validateRecord(rec, i); err != nil {
			return nil, err
		}
		out = append(out, types.LabeledRecord{Record: rec, Target: target, Weight: weight})
	}

	return out, nil
}

// validateRecord checks that every declared field is present. Catching a
// missing field here, before fold assignment, gives a clearer error than
// failing inside the splitter or the trainer.
func (dl *DataLoader) validateRecord(rec types.Record, index int) error {
	for _, name := range dl.variables {
		if !rec.Has(name) {
			return fmt.Errorf("record %d is missing variable %q", index, name)
		}
	}
	for _, name := range dl.spectators {
		if !rec.Has(name) {
			return fmt.Errorf("record %d is missing spectator %q", index, name)
		}
	}

	return nil
}
