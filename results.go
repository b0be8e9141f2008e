package crossfold

import (
	"fmt"
	"strings"

	"github.com/seiche/crossfold/internal/roc"
	"github.com/seiche/crossfold/types"
)

// Result holds the per-fold and aggregated outcome of one booked method.
//
// The per-fold metric is the ROC AUC of the fold's holdout for
// classification and the RMSE for regression. Results are read-only once
// Evaluate has returned.
type Result struct {
	method   string
	analysis types.AnalysisType

	foldMetrics []float64 // indexed by fold
	foldCounts  []int     // holdout sizes, indexed by fold
	fits        []types.FitResult
	hasFits     bool
}

// Method returns the booked method name.
func (r *Result) Method() string {
	return r.method
}

// NumFolds returns the number of folds.
func (r *Result) NumFolds() int {
	return len(r.foldMetrics)
}

// FoldMetrics returns a copy of the per-fold metric values, indexed by
// fold.
func (r *Result) FoldMetrics() []float64 {
	out := make([]float64, len(r.foldMetrics))
	copy(out, r.foldMetrics)

	return out
}

// FoldCounts returns a copy of the per-fold holdout sizes.
func (r *Result) FoldCounts() []int {
	out := make([]int, len(r.foldCounts))
	copy(out, r.foldCounts)

	return out
}

// MetricAverage returns the mean of the per-fold metric.
func (r *Result) MetricAverage() float64 {
	return roc.Mean(r.foldMetrics)
}

// MetricStandardDeviation returns the standard deviation of the per-fold
// metric around its mean.
func (r *Result) MetricStandardDeviation() float64 {
	return roc.StdDev(r.foldMetrics)
}

// ROCAverage returns the mean per-fold ROC AUC. For regression runs the
// per-fold metric is the RMSE and this is its mean.
func (r *Result) ROCAverage() float64 {
	return r.MetricAverage()
}

// ROCStandardDeviation returns the standard deviation of the per-fold ROC
// AUC (RMSE for regression).
func (r *Result) ROCStandardDeviation() float64 {
	return r.MetricStandardDeviation()
}

// FitResults returns the per-fold histogram fit results, or nil when no
// fitter was configured.
func (r *Result) FitResults() []types.FitResult {
	if !r.hasFits {
		return nil
	}
	out := make([]types.FitResult, len(r.fits))
	copy(out, r.fits)

	return out
}

// String formats a one-line summary, e.g.
//
//	BDTG ROC: avg (std): 0.9231 (0.0042) over 4 folds
func (r *Result) String() string {
	metric := "ROC"
	if r.analysis == types.AnalysisRegression {
		metric = "RMSE"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: avg (std): %.4f (%.4f) over %d folds",
		r.method, metric, r.MetricAverage(), r.MetricStandardDeviation(), r.NumFolds())

	return b.String()
}
