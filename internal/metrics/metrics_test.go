package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNop_ImplementsAll(t *testing.T) {
	// Must not panic.
	m := NewNop()
	m.RecordFoldAssignment(0)
	m.RecordSplitError()
	m.RecordFoldTrainingDuration("BDTG", 1, 0.5)
	m.RecordFoldMetric("BDTG", 1, 0.9)
	m.RecordEvaluationDuration(1.5)
}

func TestPrometheus_RecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "testns")

	m.RecordFoldAssignment(0)
	m.RecordFoldAssignment(0)
	m.RecordFoldAssignment(1)
	m.RecordSplitError()
	m.RecordFoldMetric("BDTG", 1, 0.875)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	assignments := testutil.ToFloat64(m.foldAssignments.WithLabelValues("0"))
	require.Equal(t, 2.0, assignments)

	errCount := testutil.ToFloat64(m.splitErrors)
	require.Equal(t, 1.0, errCount)

	metric := testutil.ToFloat64(m.foldMetric.WithLabelValues("BDTG", "1"))
	require.Equal(t, 0.875, metric)
}

func TestPrometheus_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Constructing two collectors on the same registry is fine as long as
	// only one records.
	_ = NewPrometheus(reg, "dup")
	m := NewPrometheus(reg, "dup")
	m.RecordEvaluationDuration(0.25)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 5)
}

func TestPrometheus_Defaults(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry(), "")
	require.Equal(t, "crossfold", m.namespace)
}
