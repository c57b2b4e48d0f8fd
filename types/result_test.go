package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestResult(t *testing.T) {
	r := NewTestResult("TestSpriteLoads", "SpriteBatchTest")

	assert.Equal(t, "TestSpriteLoads", r.TestName)
	assert.Equal(t, "SpriteBatchTest", r.TestClass)
	assert.Equal(t, DefaultCategory, r.Category)
	assert.False(t, r.IsFinal())
	assert.False(t, r.Start.IsZero())
	assert.Empty(t, r.Status)
}

func TestTerminalMarks(t *testing.T) {
	tests := []struct {
		name       string
		mark       func(r *TestResult) error
		wantStatus TestStatus
		wantMsg    string
	}{
		{
			name:       "passed",
			mark:       func(r *TestResult) error { return r.MarkPassed() },
			wantStatus: TestStatusPass,
		},
		{
			name:       "failed",
			mark:       func(r *TestResult) error { return r.MarkFailed("expected 5 got 4", "trace") },
			wantStatus: TestStatusFail,
			wantMsg:    "expected 5 got 4",
		},
		{
			name:       "errored",
			mark:       func(r *TestResult) error { return r.MarkError("panic: boom", "stack") },
			wantStatus: TestStatusError,
			wantMsg:    "panic: boom",
		},
		{
			name:       "skipped",
			mark:       func(r *TestResult) error { return r.MarkSkipped("gpu unavailable") },
			wantStatus: TestStatusSkip,
			wantMsg:    "gpu unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTestResult("TestOne", "UnitOne")
			require.NoError(t, tt.mark(r))

			assert.True(t, r.IsFinal())
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.wantMsg, r.ErrorMessage)
			assert.False(t, r.End.IsZero())
			assert.Equal(t, r.End.Sub(r.Start), r.Duration)
		})
	}
}

func TestSecondMarkIsRejected(t *testing.T) {
	r := NewTestResult("TestOne", "UnitOne")
	require.NoError(t, r.MarkPassed())

	firstEnd := r.End
	err := r.MarkFailed("late failure", "")
	require.ErrorIs(t, err, ErrAlreadyFinal)

	// The already-recorded outcome never changes
	assert.Equal(t, TestStatusPass, r.Status)
	assert.Empty(t, r.ErrorMessage)
	assert.Equal(t, firstEnd, r.End)
}

func TestAddAssertion(t *testing.T) {
	r := NewTestResult("TestOne", "UnitOne")

	require.NoError(t, r.AddAssertion(AssertionRecord{Kind: "equals", Passed: true, Message: "equals: 5"}))
	require.NoError(t, r.AddAssertion(AssertionRecord{Kind: "equals", Passed: false, Message: "expected 5 got 4"}))
	require.NoError(t, r.MarkFailed(r.FailureMessage(), ""))

	err := r.AddAssertion(AssertionRecord{Kind: "true", Passed: true})
	require.ErrorIs(t, err, ErrAlreadyFinal)
	assert.Len(t, r.Assertions, 2)

	// RecordedAt is backfilled when the evaluator leaves it zero
	assert.False(t, r.Assertions[0].RecordedAt.IsZero())
}

func TestFailureMessageAggregatesFailedAssertions(t *testing.T) {
	r := NewTestResult("TestOne", "UnitOne")
	require.NoError(t, r.AddAssertion(AssertionRecord{Kind: "equals", Passed: false, Message: "expected 5 got 4"}))
	require.NoError(t, r.AddAssertion(AssertionRecord{Kind: "true", Passed: true, Message: "ok"}))
	require.NoError(t, r.AddAssertion(AssertionRecord{Kind: "contains", Passed: false, Message: "expected abc to contain xyz"}))

	assert.Len(t, r.FailedAssertions(), 2)
	assert.Equal(t, "expected 5 got 4; expected abc to contain xyz", r.FailureMessage())
}

func TestFullName(t *testing.T) {
	r := NewTestResult("TestOne", "UnitOne")
	assert.Equal(t, "UnitOne.TestOne", r.FullName())

	r = NewTestResult("TestOne", "")
	assert.Equal(t, "TestOne", r.FullName())
}

func TestSetMetadataIsOpaque(t *testing.T) {
	r := NewTestResult("TestOne", "UnitOne")
	r.SetMetadata("frame_diff", map[string]any{"pixels": 42})
	r.SetMetadata("recorded_at", time.Unix(0, 0))

	assert.Len(t, r.Metadata, 2)
	assert.Equal(t, map[string]any{"pixels": 42}, r.Metadata["frame_diff"])
}

func TestWritesAfterFinalAreDropped(t *testing.T) {
	r := NewTestResult("TestHang", "HangingTest")
	r.AppendOutput("before timeout")
	r.SetMetadata("frames", 3)
	require.NoError(t, r.MarkError("timeout after 1s", ""))

	// A body that outlived its timeout may still try to write; the result
	// must not change once the terminal mark is recorded.
	r.AppendOutput("after abandonment")
	r.SetMetadata("late", true)

	assert.Equal(t, []string{"before timeout"}, r.Output)
	assert.Equal(t, 3, r.Metadata["frames"])
	assert.NotContains(t, r.Metadata, "late")
}
