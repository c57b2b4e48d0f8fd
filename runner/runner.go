// Package runner executes discovered test units and aggregates their results
// into a suite. Tests run strictly sequentially in discovery order by
// default; parallel execution is an explicit opt-in.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/conductor-ci/conductor/registry"
	"github.com/conductor-ci/conductor/types"
)

// Config holds configuration for creating a new Runner.
type Config struct {
	Registry    *registry.Registry
	Log         zerolog.Logger
	SuiteName   string
	RunID       string        // Generated when empty
	Timeout     time.Duration // Per-test budget; 0 disables the timeout
	FailFast    bool          // Stop scheduling after the first fail/error
	Parallel    bool          // Opt-in parallel execution
	Concurrency int           // Worker count when parallel; 0 picks a default
}

// Runner executes test units against the registry.
type Runner struct {
	cfg Config
	log zerolog.Logger

	mu    sync.Mutex
	suite *types.SuiteResult

	stopped bool
}

// NewRunner creates a new runner instance.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.SuiteName == "" {
		cfg.SuiteName = "conductor"
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative")
	}
	return &Runner{
		cfg: cfg,
		log: cfg.Log.With().Str("component", "runner").Logger(),
	}, nil
}

// unitPlan is the execution plan for one discovered unit: its instantiated
// test unit, ordered case table and the discovery index of its first test.
type unitPlan struct {
	unit       types.DiscoveredTestUnit
	instance   types.TestUnit
	cases      []types.TestCase
	start      int
	resolveErr error
}

// Run executes every unit in discovery order and returns the completed suite.
// Exactly one TestResult is appended per test invocation, and the final
// sequence is re-sorted into discovery order regardless of execution strategy.
func (r *Runner) Run(ctx context.Context, units []types.DiscoveredTestUnit) (*types.SuiteResult, error) {
	suite := types.NewSuiteResult(r.cfg.SuiteName)
	if r.cfg.RunID != "" {
		suite.RunID = r.cfg.RunID
	} else {
		suite.RunID = uuid.New().String()
	}
	r.suite = suite

	plans := r.plan(units)
	r.log.Info().
		Str("run_id", suite.RunID).
		Int("units", len(plans)).
		Bool("parallel", r.cfg.Parallel).
		Msg("Starting test run")

	if r.cfg.Parallel {
		r.stopped = r.runParallel(ctx, plans)
	} else {
		r.stopped = r.runSerial(ctx, plans)
	}

	suite.SortByIndex()
	if err := suite.Complete(); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("run_id", suite.RunID).
		Str("status", string(suite.Status())).
		Int("total", suite.TotalTests()).
		Int("passed", suite.PassedTests()).
		Int("failed", suite.FailedTests()).
		Int("errored", suite.ErroredTests()).
		Int("skipped", suite.SkippedTests()).
		Msg("Test run complete")
	return suite, nil
}

// plan resolves each unit against the registry and assigns discovery-order
// indices. Unresolved units keep a single index slot for their error result.
func (r *Runner) plan(units []types.DiscoveredTestUnit) []unitPlan {
	plans := make([]unitPlan, 0, len(units))
	next := 0
	for _, unit := range units {
		p := unitPlan{unit: unit, start: next}
		factory, ok := r.cfg.Registry.Resolve(unit.ClassName)
		if !ok {
			p.resolveErr = fmt.Errorf("no registered test unit for class %q", unit.ClassName)
			next++
			plans = append(plans, p)
			continue
		}
		p.instance = factory()
		p.cases = p.instance.Tests()
		if len(p.cases) == 0 {
			p.resolveErr = fmt.Errorf("test unit %q declares no tests", unit.ClassName)
			next++
			plans = append(plans, p)
			continue
		}
		next += len(p.cases)
		plans = append(plans, p)
	}
	return plans
}

func (r *Runner) runSerial(ctx context.Context, plans []unitPlan) bool {
	for _, p := range plans {
		if r.runUnit(ctx, p) {
			r.log.Warn().Str("class", p.unit.ClassName).Msg("Fail-fast triggered, aborting remaining tests")
			return true
		}
	}
	return false
}

// Stopped reports whether fail-fast cut the previous run short. It is only
// meaningful after Run returns.
func (r *Runner) Stopped() bool {
	return r.stopped
}

// runUnit executes one unit's case table. It returns true when fail-fast is
// set and a test failed or errored, signalling the caller to stop scheduling.
func (r *Runner) runUnit(ctx context.Context, p unitPlan) bool {
	if p.resolveErr != nil {
		result := types.NewTestResult(p.unit.ClassName, p.unit.ClassName)
		result.Category = categoryFor(p.unit)
		result.Index = p.start
		_ = result.MarkError(p.resolveErr.Error(), "")
		r.addResult(result)
		return r.cfg.FailFast
	}

	var setupErr error
	if err := p.instance.Setup(ctx); err != nil {
		setupErr = fmt.Errorf("setup failed: %w", err)
		r.log.Error().Str("class", p.unit.ClassName).Err(err).Msg("Unit setup failed")
	}

	stopped := false
	for i, tc := range p.cases {
		if setupErr != nil {
			result := types.NewTestResult(tc.Name, p.unit.ClassName)
			result.Category = categoryFor(p.unit)
			result.Index = p.start + i
			_ = result.MarkError(setupErr.Error(), "")
			r.addResult(result)
			if r.cfg.FailFast {
				stopped = true
				break
			}
			continue
		}

		result := r.executeCase(ctx, p, tc, p.start+i)
		r.addResult(result)
		if r.cfg.FailFast && (result.Status == types.TestStatusFail || result.Status == types.TestStatusError) {
			stopped = true
			break
		}
	}

	if setupErr == nil {
		if err := p.instance.Teardown(ctx); err != nil {
			r.log.Warn().Str("class", p.unit.ClassName).Err(err).Msg("Unit teardown failed")
		}
	}
	return stopped
}

// executeCase runs a single test function under the timeout budget with
// panic isolation. Every invocation produces exactly one result.
func (r *Runner) executeCase(ctx context.Context, p unitPlan, tc types.TestCase, index int) *types.TestResult {
	result := types.NewTestResult(tc.Name, p.unit.ClassName)
	result.Category = categoryFor(p.unit)
	result.Index = index
	tctx := types.NewTestContext(result)

	r.log.Debug().Str("test", result.FullName()).Msg("Running test")

	testCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.Timeout > 0 {
		testCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	type outcome struct {
		ok       bool
		panicked bool
		panicVal any
		stack    string
	}
	done := make(chan outcome, 1)
	go func() {
		var out outcome
		defer func() {
			if rec := recover(); rec != nil {
				out.panicked = true
				out.panicVal = rec
				out.stack = string(debug.Stack())
			}
			done <- out
		}()
		out.ok = tc.Fn(testCtx, tctx)
	}()

	var out outcome
	timedOut := false
	select {
	case out = <-done:
	case <-testCtx.Done():
		// A timeout cancels only this test's context; the body is expected
		// to observe cancellation and return. Sibling tests are unaffected.
		timedOut = testCtx.Err() == context.DeadlineExceeded
		select {
		case out = <-done:
		case <-time.After(100 * time.Millisecond):
			out = outcome{}
		}
	}

	// Metadata must land before the terminal mark; finalized results drop
	// further writes.
	r.attachCapabilityMetadata(p.instance, tc.Name, result)

	switch {
	case timedOut:
		_ = result.MarkError(fmt.Sprintf("timeout after %gs", r.cfg.Timeout.Seconds()), "")
	case out.panicked:
		_ = result.MarkError(fmt.Sprintf("panic: %v", out.panicVal), out.stack)
	default:
		if skipped, reason := tctx.Skipped(); skipped {
			_ = result.MarkSkipped(reason)
			break
		}
		if !out.ok || len(result.FailedAssertions()) > 0 {
			message := result.FailureMessage()
			if message == "" {
				message = "test reported failure"
			}
			_ = result.MarkFailed(message, "")
			break
		}
		_ = result.MarkPassed()
	}

	r.log.Debug().
		Str("test", result.FullName()).
		Str("status", string(result.Status)).
		Dur("duration", result.Duration).
		Msg("Test finished")
	return result
}

// attachCapabilityMetadata copies opaque diagnostics from optional unit
// capabilities onto the finished result.
func (r *Runner) attachCapabilityMetadata(instance types.TestUnit, testName string, result *types.TestResult) {
	if instance == nil {
		return
	}
	if pc, ok := instance.(types.PerformanceCapable); ok {
		if src := pc.MetricsSource(); src != nil {
			result.SetMetadata("metrics", src.Snapshot())
		}
	}
	if vc, ok := instance.(types.VisualCapable); ok {
		if artifacts := vc.VisualArtifacts(testName); artifacts != nil {
			result.SetMetadata("visual", artifacts)
		}
	}
}

// categoryFor keeps the default category when a unit declares none.
func categoryFor(unit types.DiscoveredTestUnit) string {
	if unit.Category == "" {
		return types.DefaultCategory
	}
	return unit.Category
}

// addResult appends to the suite under the single mutual-exclusion boundary
// shared with parallel workers.
func (r *Runner) addResult(result *types.TestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suite.AddResult(result)
}
