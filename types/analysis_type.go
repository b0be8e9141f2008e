package types

import "fmt"

// AnalysisType selects the learning task and with it the per-fold metric.
type AnalysisType int

const (
	// AnalysisClassification is binary signal/background classification;
	// the per-fold metric is the ROC AUC of the holdout.
	AnalysisClassification AnalysisType = iota

	// AnalysisRegression is scalar regression; the per-fold metric is the
	// RMSE on the holdout.
	AnalysisRegression
)

// String returns the canonical option-string spelling.
func (a AnalysisType) String() string {
	switch a {
	case AnalysisClassification:
		return "Classification"
	case AnalysisRegression:
		return "Regression"
	default:
		return fmt.Sprintf("AnalysisType(%d)", int(a))
	}
}

// ParseAnalysisType parses the option-string spelling of an analysis type.
//
// Returns:
//   - AnalysisType: Parsed value
//   - error: If s is neither "Classification" nor "Regression"
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch s {
	case "Classification":
		return AnalysisClassification, nil
	case "Regression":
		return AnalysisRegression, nil
	default:
		return 0, fmt.Errorf("unknown analysis type %q", s)
	}
}
