// Package types contains shared types used across the conductor testing pipeline.
package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TestStatus represents the possible terminal states of a test execution
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// DefaultCategory is assigned to tests whose unit does not declare a category.
const DefaultCategory = "default"

// ErrAlreadyFinal is returned when a terminal mark or an assertion append is
// attempted on a test result that has already reached a terminal status.
var ErrAlreadyFinal = errors.New("test result already finalized")

// AssertionRecord captures a single evaluated assertion inside a test.
// Records are append-only during execution and immutable afterwards.
type AssertionRecord struct {
	Kind       string    `json:"kind"`
	Expected   any       `json:"expected"`
	Actual     any       `json:"actual"`
	Passed     bool      `json:"passed"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TestResult captures the outcome of a single test method run.
// It is owned by the execution engine while the test runs and becomes
// read-only after exactly one terminal Mark call.
type TestResult struct {
	TestName     string
	TestClass    string
	Category     string
	Status       TestStatus
	Start        time.Time
	End          time.Time
	Duration     time.Duration
	ErrorMessage string
	StackTrace   string
	Assertions   []AssertionRecord
	Metadata     map[string]any
	Output       []string

	// Index is the position of this test in discovery order. Reporters
	// re-sequence by Index so parallel completion order never leaks into
	// artifacts.
	Index int

	// mu serializes the terminal mark against writes from the test body.
	// An abandoned body (e.g. one that outlived its timeout) may still call
	// AppendOutput or SetMetadata; those writes are dropped once final.
	mu    sync.Mutex
	final bool
}

// NewTestResult creates a result record for a test that is beginning to run.
// Status stays unset until one of the Mark methods is called.
func NewTestResult(testName, testClass string) *TestResult {
	return &TestResult{
		TestName:  testName,
		TestClass: testClass,
		Category:  DefaultCategory,
		Start:     time.Now(),
		Metadata:  make(map[string]any),
	}
}

// IsFinal reports whether a terminal status has been recorded.
func (tr *TestResult) IsFinal() bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.final
}

// MarkPassed records a passing outcome.
func (tr *TestResult) MarkPassed() error {
	return tr.finalize(TestStatusPass, "", "")
}

// MarkFailed records an assertion-mismatch outcome.
func (tr *TestResult) MarkFailed(message, stackTrace string) error {
	return tr.finalize(TestStatusFail, message, stackTrace)
}

// MarkError records an unexpected-failure outcome, preserving the original
// message and stack trace verbatim for diagnostics.
func (tr *TestResult) MarkError(message, stackTrace string) error {
	return tr.finalize(TestStatusError, message, stackTrace)
}

// MarkSkipped records a deliberate omission with its reason.
func (tr *TestResult) MarkSkipped(reason string) error {
	return tr.finalize(TestStatusSkip, reason, "")
}

func (tr *TestResult) finalize(status TestStatus, message, stackTrace string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.final {
		return fmt.Errorf("%w: already %s, attempted %s", ErrAlreadyFinal, tr.Status, status)
	}
	tr.Status = status
	tr.ErrorMessage = message
	tr.StackTrace = stackTrace
	tr.End = time.Now()
	tr.Duration = tr.End.Sub(tr.Start)
	tr.final = true
	return nil
}

// AddAssertion appends an assertion record. Assertions can only be recorded
// before the terminal mark.
func (tr *TestResult) AddAssertion(record AssertionRecord) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.final {
		return fmt.Errorf("%w: cannot record assertion %q", ErrAlreadyFinal, record.Kind)
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	tr.Assertions = append(tr.Assertions, record)
	return nil
}

// SetMetadata attaches opaque collaborator data to the result. The pipeline
// never interprets these values; they pass through to the JSON artifact.
// Writes after the terminal mark are dropped.
func (tr *TestResult) SetMetadata(key string, value any) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.final {
		return
	}
	if tr.Metadata == nil {
		tr.Metadata = make(map[string]any)
	}
	tr.Metadata[key] = value
}

// AppendOutput records a captured output line from the test body. Writes
// after the terminal mark are dropped, severing bodies that outlived their
// timeout from the result the pipeline goes on to aggregate.
func (tr *TestResult) AppendOutput(line string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.final {
		return
	}
	tr.Output = append(tr.Output, line)
}

// FailedAssertions returns the assertions that did not pass, in record order.
func (tr *TestResult) FailedAssertions() []AssertionRecord {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	var failed []AssertionRecord
	for _, a := range tr.Assertions {
		if !a.Passed {
			failed = append(failed, a)
		}
	}
	return failed
}

// FailureMessage aggregates the messages of all failed assertions into a
// single diagnostic string.
func (tr *TestResult) FailureMessage() string {
	failed := tr.FailedAssertions()
	if len(failed) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(failed))
	for _, a := range failed {
		msgs = append(msgs, a.Message)
	}
	return strings.Join(msgs, "; ")
}

// FullName returns the canonical "{class}.{test}" identifier used in reports.
func (tr *TestResult) FullName() string {
	if tr.TestClass == "" {
		return tr.TestName
	}
	return tr.TestClass + "." + tr.TestName
}
