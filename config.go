// Package conductor orchestrates the test pipeline: discovery, filtering,
// execution and report generation, plus the process exit status derived from
// the run.
package conductor

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/conductor-ci/conductor/discovery"
	"github.com/conductor-ci/conductor/flags"
	"github.com/conductor-ci/conductor/reporting"
)

// Config holds the run-level configuration. Every option is a named, typed
// field; open-ended key bags exist only as opaque test metadata.
type Config struct {
	Roots       []string      // Discovery root directories
	SuiteName   string        // Name recorded on the suite result
	Category    string        // Category filter, empty matches all
	Tags        []string      // Tag filters, unit must carry all
	NamePattern string        // Class-name regexp filter
	Timeout     time.Duration // Per-test timeout, 0 disables
	FailFast    bool          // Stop scheduling after first fail/error
	Parallel    bool          // Opt-in parallel execution
	Concurrency int           // Worker count when parallel
	Reports     []string      // Report formats to generate
	ReportDir   string        // Directory for report artifacts
	DryRun      bool          // Enumerate without executing
	Verbose     bool          // Debug logging
	RunInterval time.Duration // Interval between runs; 0 means run once
	RunOnce     bool          // Derived from RunInterval
	MetricsAddr string        // Metrics endpoint address, empty disables
	Log         zerolog.Logger
}

// NewConfig creates a Config from the cli context. All validation happens
// here, before any execution begins; violations surface as RuntimeError.
func NewConfig(ctx *cli.Context, log zerolog.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, NewRuntimeError(fmt.Errorf("missing required flags: %w", err))
	}

	roots := ctx.StringSlice(flags.Roots.Name)
	if len(roots) == 0 {
		return nil, NewRuntimeError(errors.New("at least one discovery root is required"))
	}
	absRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, NewRuntimeError(fmt.Errorf("failed to resolve absolute path for root %q: %w", root, err))
		}
		absRoots = append(absRoots, abs)
	}

	cfg := &Config{
		Roots:       absRoots,
		SuiteName:   ctx.String(flags.SuiteName.Name),
		Category:    ctx.String(flags.Category.Name),
		Tags:        ctx.StringSlice(flags.Tags.Name),
		NamePattern: ctx.String(flags.NamePattern.Name),
		Timeout:     ctx.Duration(flags.Timeout.Name),
		FailFast:    ctx.Bool(flags.FailFast.Name),
		Parallel:    ctx.Bool(flags.Parallel.Name),
		Concurrency: ctx.Int(flags.Concurrency.Name),
		Reports:     ctx.StringSlice(flags.Reports.Name),
		ReportDir:   ctx.String(flags.ReportDir.Name),
		DryRun:      ctx.Bool(flags.DryRun.Name),
		Verbose:     ctx.Bool(flags.Verbose.Name),
		RunInterval: ctx.Duration(flags.RunInterval.Name),
		MetricsAddr: ctx.String(flags.MetricsAddr.Name),
		Log:         log,
	}
	cfg.RunOnce = cfg.RunInterval == 0

	if err := cfg.Validate(); err != nil {
		return nil, NewRuntimeError(err)
	}
	return cfg, nil
}

// Validate checks the configuration for violations that must be reported
// before the run starts.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return errors.New("at least one discovery root is required")
	}
	if c.SuiteName == "" {
		return errors.New("suite name is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %s", c.Timeout)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative: %d", c.Concurrency)
	}
	if c.Concurrency > 0 && !c.Parallel {
		return errors.New("concurrency requires parallel mode")
	}
	if _, err := discovery.CompilePattern(c.NamePattern); err != nil {
		return err
	}
	if len(c.Reports) == 0 && !c.DryRun {
		return errors.New("at least one report format is required")
	}
	if _, err := reporting.ForFormats(c.Reports, reporting.Config{}); err != nil {
		return err
	}
	return nil
}

// Filters returns the discovery filters derived from the configuration.
func (c *Config) Filters() discovery.Filters {
	return discovery.Filters{
		Category:    c.Category,
		Tags:        c.Tags,
		NamePattern: c.NamePattern,
	}
}
