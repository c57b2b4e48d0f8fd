package types

import (
	"context"
	"fmt"
	"sync"
)

// DiscoveredTestUnit describes one discoverable test-bearing file, as
// reported by the discovery service.
type DiscoveredTestUnit struct {
	Path      string   `yaml:"-"`
	ClassName string   `yaml:"class"`
	Category  string   `yaml:"category,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
}

// HasTag reports whether the unit carries the given tag.
func (u DiscoveredTestUnit) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TestFunc is a single test body. It receives the per-test context handle and
// returns a success boolean by convention: false marks the test failed with a
// message aggregated from its recorded assertions. Long-running bodies must
// honor ctx cancellation for timeouts to take effect.
type TestFunc func(ctx context.Context, t *TestContext) bool

// TestCase binds a test name to its function. Units expose an explicit
// ordered table of cases; the execution engine iterates it in declaration
// order without reflection.
type TestCase struct {
	Name string
	Fn   TestFunc
}

// TestUnit is one registered test class: a setup/teardown pair around an
// ordered table of test cases.
type TestUnit interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
	Tests() []TestCase
}

// MetricsSource is an optional collaborator that snapshots performance
// counters. The pipeline stores the snapshot as opaque metadata and never
// interprets it.
type MetricsSource interface {
	Snapshot() map[string]any
}

// PerformanceCapable marks units that want a metrics snapshot attached to
// each of their test results.
type PerformanceCapable interface {
	MetricsSource() MetricsSource
}

// VisualCapable marks units whose visual-diagnostics collaborator attaches
// artifact references (paths, hashes) as opaque per-test metadata.
type VisualCapable interface {
	VisualArtifacts(testName string) map[string]any
}

// TestContext is the handle passed to every test function. It records
// assertions, captured output, skips and metadata onto the owning TestResult.
// It is safe for use from the single goroutine running the test body.
type TestContext struct {
	mu      sync.Mutex
	result  *TestResult
	skipped bool
	reason  string
}

// NewTestContext wraps a running test result.
func NewTestContext(result *TestResult) *TestContext {
	return &TestContext{result: result}
}

// RecordAssertion appends an assertion record and returns whether it passed,
// so bodies can chain it into their success return value.
func (t *TestContext) RecordAssertion(record AssertionRecord) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	// Append failures after finalization are programming errors; the record
	// is dropped and the outcome already stands.
	_ = t.result.AddAssertion(record)
	return record.Passed
}

// Log captures an output line onto the test result.
func (t *TestContext) Log(args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.AppendOutput(fmt.Sprint(args...))
}

// Logf captures a formatted output line onto the test result.
func (t *TestContext) Logf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.AppendOutput(fmt.Sprintf(format, args...))
}

// Skip marks the test as deliberately omitted. The body should return
// promptly afterwards; the engine records the skip regardless of the
// returned boolean.
func (t *TestContext) Skip(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skipped = true
	t.reason = reason
}

// Skipped reports whether Skip was called, with its reason.
func (t *TestContext) Skipped() (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.skipped, t.reason
}

// SetMetadata attaches opaque collaborator data to the test result.
func (t *TestContext) SetMetadata(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.SetMetadata(key, value)
}

// Result exposes the underlying record. The engine owns terminal marks; test
// bodies should only read from it.
func (t *TestContext) Result() *TestResult {
	return t.result
}
