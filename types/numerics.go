package types

import "context"

// Histogram is the minimal filling surface of an external histogramming
// backend. Binning, storage and serialization belong to the backend;
// crossfold only fills.
//
// The coordinate slice carries one value per histogram dimension, so the
// same interface covers 1D response histograms and 2D (score, target)
// maps.
type Histogram interface {
	// Fill adds one entry at the given coordinates with the given weight.
	Fill(coords []float64, weight float64)
}

// FitResult carries the outcome of fitting a function to a histogram.
type FitResult struct {
	// Params are the fitted parameter values.
	Params []float64

	// Chi2 is the fit quality (chi-squared or equivalent figure of merit
	// of the backend's minimizer).
	Chi2 float64
}

// Fitter fits a parametric function to a filled histogram.
//
// The function shape, the minimizer and its convergence criteria are the
// numerical backend's concern. The orchestrator only hands over the
// histogram it filled and the initial parameter values.
type Fitter interface {
	// Fit runs the fit and returns the fitted parameters.
	//
	// Parameters:
	//   - ctx: Context for cancellation of long minimizations
	//   - hist: Histogram previously filled by the caller
	//   - initial: Starting parameter values
	//
	// Returns:
	//   - FitResult: Fitted parameters and fit quality
	//   - error: Fit failure (e.g. divergence), propagated as-is
	Fit(ctx context.Context, hist Histogram, initial []float64) (FitResult, error)
}
