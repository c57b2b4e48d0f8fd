package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conductor-ci/conductor/types"
)

func TestRecordSuite(t *testing.T) {
	suite := types.NewSuiteResult("metrics-test")
	suite.RunID = "run-metrics-1"

	pass := types.NewTestResult("TestA", "UnitA")
	require.NoError(t, pass.MarkPassed())
	suite.AddResult(pass)

	fail := types.NewTestResult("TestB", "UnitA")
	require.NoError(t, fail.MarkFailed("boom", ""))
	suite.AddResult(fail)

	require.NoError(t, suite.Complete())

	RecordSuite(suite)

	passed := testutil.ToFloat64(testsTotal.WithLabelValues("metrics-test", "run-metrics-1", "pass"))
	failed := testutil.ToFloat64(testsTotal.WithLabelValues("metrics-test", "run-metrics-1", "fail"))
	assert.Equal(t, 1.0, passed)
	assert.Equal(t, 1.0, failed)

	result := testutil.ToFloat64(runResults.WithLabelValues("metrics-test", "run-metrics-1", "fail"))
	assert.Equal(t, 1.0, result)
}

func TestRecordError(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("report_junit"))
	RecordError("report_junit")
	after := testutil.ToFloat64(errorsTotal.WithLabelValues("report_junit"))
	assert.Equal(t, before+1, after)
}

func TestRecordRunDuration(t *testing.T) {
	RecordRun("metrics-test", "run-metrics-2", types.TestStatusPass, 1500*time.Millisecond)
	seconds := testutil.ToFloat64(runDuration.WithLabelValues("metrics-test", "run-metrics-2"))
	assert.Equal(t, 1.5, seconds)
}
