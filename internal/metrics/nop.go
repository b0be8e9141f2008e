// Package metrics provides the built-in types.MetricsCollector
// implementations.
package metrics

import "github.com/seiche/crossfold/types"

// NopMetrics is a types.MetricsCollector that records nothing.
//
// It is the default collector and a convenient embedding base for custom
// collectors that only care about a subset of the interface.
type NopMetrics struct{}

var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (*NopMetrics) RecordFoldAssignment(int) {}

func (*NopMetrics) RecordSplitError() {}

func (*NopMetrics) RecordFoldTrainingDuration(string, int, float64) {}

func (*NopMetrics) RecordFoldMetric(string, int, float64) {}

func (*NopMetrics) RecordEvaluationDuration(float64) {}
