package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/seiche/crossfold/types"
)

// CentroidTrainer is a minimal reference ClassifierTrainer: it computes
// the signal and background centroids in variable space and scores a
// record by how much closer it sits to the signal centroid.
//
// It trains in one pass, serializes to JSON, and separates any two
// classes whose means differ, which is all the cross-validation tests and
// examples need.
type CentroidTrainer struct{}

var (
	_ types.ClassifierTrainer = (*CentroidTrainer)(nil)
	_ types.ModelCodec        = (*CentroidTrainer)(nil)
)

// NewCentroidTrainer creates a centroid trainer.
func NewCentroidTrainer() *CentroidTrainer {
	return &CentroidTrainer{}
}

// Train computes the per-class centroids of the input variables.
func (tr *CentroidTrainer) Train(ctx context.Context, records []types.LabeledRecord, variables []string) (types.FoldModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return nil, errors.New("centroid trainer: no input variables")
	}

	sig := make([]float64, len(variables))
	bkg := make([]float64, len(variables))
	nSig, nBkg := 0, 0

	for _, lr := range records {
		acc := bkg
		if lr.Target > 0.5 {
			acc = sig
			nSig++
		} else {
			nBkg++
		}
		for i, name := range variables {
			v, ok := lr.Record.Get(name)
			if !ok {
				return nil, fmt.Errorf("centroid trainer: record is missing variable %q", name)
			}
			acc[i] += v
		}
	}
	if nSig == 0 || nBkg == 0 {
		return nil, errors.New("centroid trainer: training sample must contain both classes")
	}

	for i := range variables {
		sig[i] /= float64(nSig)
		bkg[i] /= float64(nBkg)
	}

	return &CentroidModel{Variables: variables, Signal: sig, Background: bkg}, nil
}

// EncodeModel serializes a CentroidModel to JSON.
func (tr *CentroidTrainer) EncodeModel(model types.FoldModel) ([]byte, error) {
	cm, ok := model.(*CentroidModel)
	if !ok {
		return nil, fmt.Errorf("centroid trainer: cannot encode model of type %T", model)
	}

	return json.Marshal(cm)
}

// DecodeModel reconstructs a CentroidModel from JSON.
func (tr *CentroidTrainer) DecodeModel(data []byte) (types.FoldModel, error) {
	var cm CentroidModel
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, fmt.Errorf("centroid trainer: decode model: %w", err)
	}

	return &cm, nil
}

// CentroidModel is the trained model of CentroidTrainer.
type CentroidModel struct {
	Variables  []string  `json:"variables"`
	Signal     []float64 `json:"signal"`
	Background []float64 `json:"background"`
}

var _ types.FoldModel = (*CentroidModel)(nil)

// Score returns the background-to-signal distance difference: positive
// means the record is closer to the signal centroid.
func (m *CentroidModel) Score(record types.Record) (float64, error) {
	dSig, dBkg := 0.0, 0.0
	for i, name := range m.Variables {
		v, ok := record.Get(name)
		if !ok {
			return 0, fmt.Errorf("centroid model: record is missing variable %q", name)
		}
		ds := v - m.Signal[i]
		db := v - m.Background[i]
		dSig += ds * ds
		dBkg += db * db
	}

	return math.Sqrt(dBkg) - math.Sqrt(dSig), nil
}

// MeanTrainer is a trivial regression trainer: the model always predicts
// the mean training target. Useful as a regression baseline in tests.
type MeanTrainer struct{}

var (
	_ types.ClassifierTrainer = (*MeanTrainer)(nil)
	_ types.ModelCodec        = (*MeanTrainer)(nil)
)

// NewMeanTrainer creates a mean-predicting regression trainer.
func NewMeanTrainer() *MeanTrainer {
	return &MeanTrainer{}
}

// Train computes the mean target of the training sample.
func (tr *MeanTrainer) Train(ctx context.Context, records []types.LabeledRecord, _ []string) (types.FoldModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("mean trainer: empty training sample")
	}

	sum := 0.0
	for _, lr := range records {
		sum += lr.Target
	}

	return &MeanModel{Mean: sum / float64(len(records))}, nil
}

// EncodeModel serializes a MeanModel to JSON.
func (tr *MeanTrainer) EncodeModel(model types.FoldModel) ([]byte, error) {
	mm, ok := model.(*MeanModel)
	if !ok {
		return nil, fmt.Errorf("mean trainer: cannot encode model of type %T", model)
	}

	return json.Marshal(mm)
}

// DecodeModel reconstructs a MeanModel from JSON.
func (tr *MeanTrainer) DecodeModel(data []byte) (types.FoldModel, error) {
	var mm MeanModel
	if err := json.Unmarshal(data, &mm); err != nil {
		return nil, fmt.Errorf("mean trainer: decode model: %w", err)
	}

	return &mm, nil
}

// MeanModel is the trained model of MeanTrainer.
type MeanModel struct {
	Mean float64 `json:"mean"`
}

var _ types.FoldModel = (*MeanModel)(nil)

// Score returns the constant mean prediction.
func (m *MeanModel) Score(types.Record) (float64, error) {
	return m.Mean, nil
}
