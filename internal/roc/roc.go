// Package roc computes the per-fold holdout metrics and their
// aggregation across folds.
package roc

import (
	"errors"
	"math"
	"sort"
)

// ErrDegenerate indicates that the AUC is undefined because the holdout
// contains only one class.
var ErrDegenerate = errors.New("roc: holdout contains a single class")

// AUC computes the area under the ROC curve from scores and binary
// targets using the rank-statistic (Mann-Whitney U) formulation, with
// midrank handling for tied scores.
//
// targets[i] > 0.5 marks a signal entry, anything else background.
//
// Parameters:
//   - scores: Model responses, larger = more signal-like
//   - targets: Binary targets, same length as scores
//
// Returns:
//   - float64: AUC in [0, 1]
//   - error: ErrDegenerate if either class is empty, or a length mismatch
func AUC(scores, targets []float64) (float64, error) {
	if len(scores) != len(targets) {
		return 0, errors.New("roc: scores and targets length mismatch")
	}

	type entry struct {
		score  float64
		signal bool
	}
	entries := make([]entry, len(scores))
	nSig, nBkg := 0, 0
	for i, s := range scores {
		sig := targets[i] > 0.5
		entries[i] = entry{score: s, signal: sig}
		if sig {
			nSig++
		} else {
			nBkg++
		}
	}
	if nSig == 0 || nBkg == 0 {
		return 0, ErrDegenerate
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].score < entries[j].score })

	// Sum of signal midranks (1-based). Ties share the average rank of
	// their run.
	rankSum := 0.0
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].score == entries[i].score {
			j++
		}
		midrank := float64(i+j+1) / 2 // average of ranks i+1..j
		for k := i; k < j; k++ {
			if entries[k].signal {
				rankSum += midrank
			}
		}
		i = j
	}

	u := rankSum - float64(nSig)*float64(nSig+1)/2

	return u / (float64(nSig) * float64(nBkg)), nil
}

// RMSE computes the root-mean-square error of scores against targets.
func RMSE(scores, targets []float64) (float64, error) {
	if len(scores) != len(targets) {
		return 0, errors.New("roc: scores and targets length mismatch")
	}
	if len(scores) == 0 {
		return 0, errors.New("roc: empty holdout")
	}

	sum := 0.0
	for i, s := range scores {
		d := s - targets[i]
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(scores))), nil
}

// Mean returns the arithmetic mean of values (0 for an empty slice).
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values around their
// mean (0 for fewer than two values).
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)))
}
