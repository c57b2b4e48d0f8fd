package conductor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/conductor-ci/conductor/discovery"
	"github.com/conductor-ci/conductor/metrics"
	"github.com/conductor-ci/conductor/registry"
	"github.com/conductor-ci/conductor/reporting"
	"github.com/conductor-ci/conductor/runner"
	"github.com/conductor-ci/conductor/types"
)

// Phase is the orchestrator's position in the run pipeline.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseFiltering   Phase = "filtering"
	PhaseExecuting   Phase = "executing"
	PhaseReporting   Phase = "reporting"
	PhaseDone        Phase = "done"
	PhaseAborted     Phase = "aborted"
)

// Conductor composes discovery, execution and reporting, owns the run-level
// configuration and derives the process exit status from the run outcome.
type Conductor struct {
	cfg        *Config
	log        zerolog.Logger
	registry   *registry.Registry
	discoverer *discovery.Discoverer
	out        io.Writer

	mu     sync.Mutex
	phase  Phase
	result *types.SuiteResult
}

// New creates a Conductor from a validated config and a unit registry.
func New(cfg *Config, reg *registry.Registry) (*Conductor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	return &Conductor{
		cfg:        cfg,
		log:        cfg.Log,
		registry:   reg,
		discoverer: discovery.New(cfg.Log),
		out:        os.Stdout,
		phase:      PhaseIdle,
	}, nil
}

// SetOutput redirects the console summary, used by tests.
func (c *Conductor) SetOutput(out io.Writer) {
	c.out = out
}

// Phase returns the current pipeline phase.
func (c *Conductor) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Conductor) setPhase(phase Phase) {
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()
	c.log.Debug().Str("phase", string(phase)).Msg("Pipeline phase")
}

// Result returns the suite result of the last run, nil before any run.
func (c *Conductor) Result() *types.SuiteResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Run executes one full pipeline pass. The returned error type encodes the
// process exit status: nil for success, TestFailureError, NoTestsError,
// ReportError or RuntimeError.
func (c *Conductor) Run(ctx context.Context) error {
	c.setPhase(PhaseDiscovering)
	scan := c.discoverer.Scan(c.cfg.Roots)
	for _, msg := range scan.Errors {
		c.log.Warn().Str("error", msg).Msg("Discovery error")
	}

	c.setPhase(PhaseFiltering)
	filters := c.cfg.Filters()
	pattern, err := discovery.CompilePattern(filters.NamePattern)
	if err != nil {
		c.setPhase(PhaseAborted)
		return NewRuntimeError(err)
	}
	units := discovery.Filter(scan.Units, filters.Category, filters.Tags, pattern)
	c.log.Info().
		Int("discovered", len(scan.Units)).
		Int("selected", len(units)).
		Msg("Discovery complete")

	if len(units) == 0 {
		c.setPhase(PhaseAborted)
		return NewNoTestsError(fmt.Sprintf("no test units selected from %d discovery roots", len(c.cfg.Roots)))
	}

	if c.cfg.DryRun {
		c.printDryRun(units)
		c.setPhase(PhaseDone)
		return nil
	}

	c.setPhase(PhaseExecuting)
	testRunner, err := runner.NewRunner(runner.Config{
		Registry:    c.registry,
		Log:         c.cfg.Log,
		SuiteName:   c.cfg.SuiteName,
		Timeout:     c.cfg.Timeout,
		FailFast:    c.cfg.FailFast,
		Parallel:    c.cfg.Parallel,
		Concurrency: c.cfg.Concurrency,
	})
	if err != nil {
		c.setPhase(PhaseAborted)
		return NewRuntimeError(err)
	}

	suite, err := testRunner.Run(ctx, units)
	if err != nil {
		c.setPhase(PhaseAborted)
		return NewRuntimeError(err)
	}
	c.mu.Lock()
	c.result = suite
	c.mu.Unlock()
	metrics.RecordSuite(suite)

	c.setPhase(PhaseReporting)
	reportErr := c.report(suite)

	if testRunner.Stopped() {
		c.setPhase(PhaseAborted)
	} else {
		c.setPhase(PhaseDone)
	}

	// Test failures win over report failures; a clean run with a failed
	// artifact write is still surfaced distinctly from success.
	if suite.HasFailures() {
		return NewTestFailureError(fmt.Sprintf("%d of %d tests failed",
			suite.FailedTests()+suite.ErroredTests(), suite.TotalTests()))
	}
	if reportErr != nil {
		return NewReportError(reportErr)
	}
	return nil
}

// report prints the console summary and writes every configured artifact.
// The summary is printed even for partial runs.
func (c *Conductor) report(suite *types.SuiteResult) error {
	fmt.Fprint(c.out, reporting.RenderSummaryTable(suite))

	reporters, err := reporting.ForFormats(c.cfg.Reports, reporting.Config{
		IncludeMetadata: true,
		PrettyPrint:     true,
	})
	if err != nil {
		return err
	}

	var failures []string
	for _, r := range reporters {
		outputPath := filepath.Join(c.cfg.ReportDir, r.DefaultFilename())
		if err := r.Generate(suite, outputPath); err != nil {
			c.log.Error().Str("format", r.Format()).Str("path", outputPath).Err(err).Msg("Report generation failed")
			metrics.RecordError("report_" + r.Format())
			failures = append(failures, fmt.Sprintf("%s: %v", r.Format(), err))
			continue
		}
		c.log.Info().Str("format", r.Format()).Str("path", outputPath).Msg("Report written")
	}
	if len(failures) > 0 {
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}

// printDryRun enumerates the selected units without executing them.
func (c *Conductor) printDryRun(units []types.DiscoveredTestUnit) {
	fmt.Fprintf(c.out, "Dry run: %d test units selected\n", len(units))
	for _, unit := range units {
		tags := ""
		if len(unit.Tags) > 0 {
			tags = " [" + strings.Join(unit.Tags, ",") + "]"
		}
		fmt.Fprintf(c.out, "  %s (%s)%s from %s\n", unit.ClassName, unit.Category, tags, unit.Path)
	}
}
