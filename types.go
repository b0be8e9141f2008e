package crossfold

import "github.com/seiche/crossfold/types"

// Re-export types from the types subpackage.
//
// The aliases give users a convenient crossfold.Record, crossfold.Logger,
// etc. while letting internal packages depend on the types package without
// importing the root package (which would create import cycles).
type (
	Record        = types.Record
	LabeledRecord = types.LabeledRecord
	AnalysisType  = types.AnalysisType
)

// Re-export interfaces from the types subpackage for convenience.
type (
	RecordSource      = types.RecordSource
	FoldSplitter      = types.FoldSplitter
	ClassifierTrainer = types.ClassifierTrainer
	FoldModel         = types.FoldModel
	ModelCodec        = types.ModelCodec
	Histogram         = types.Histogram
	Fitter            = types.Fitter
	FitResult         = types.FitResult
	Logger            = types.Logger
	MetricsCollector  = types.MetricsCollector
	Hooks             = types.Hooks
)

// Re-export AnalysisType constants from the types subpackage.
const (
	AnalysisClassification = types.AnalysisClassification
	AnalysisRegression     = types.AnalysisRegression
)
