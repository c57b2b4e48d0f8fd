// Package flags defines the CLI surface of the conductor binary.
package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "CONDUCTOR"

// prefixEnvVar derives the environment variable fallback for a flag name.
func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Roots = &cli.StringSliceFlag{
		Name:     "root",
		Required: true,
		EnvVars:  prefixEnvVar("ROOT"),
		Usage:    "Discovery root directory; repeat for multiple roots",
	}
	SuiteName = &cli.StringFlag{
		Name:    "suite-name",
		Value:   "conductor",
		EnvVars: prefixEnvVar("SUITE_NAME"),
		Usage:   "Name recorded on the suite result and report artifacts",
	}
	Category = &cli.StringFlag{
		Name:    "category",
		EnvVars: prefixEnvVar("CATEGORY"),
		Usage:   "Only run units in this category",
	}
	Tags = &cli.StringSliceFlag{
		Name:    "tag",
		EnvVars: prefixEnvVar("TAG"),
		Usage:   "Only run units carrying this tag; repeat to require several",
	}
	NamePattern = &cli.StringFlag{
		Name:    "pattern",
		EnvVars: prefixEnvVar("PATTERN"),
		Usage:   "Only run units whose class name matches this regexp",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   5 * time.Minute,
		EnvVars: prefixEnvVar("TIMEOUT"),
		Usage:   "Per-test timeout (e.g. '30s', '5m'). 0 disables the timeout",
	}
	FailFast = &cli.BoolFlag{
		Name:    "fail-fast",
		EnvVars: prefixEnvVar("FAIL_FAST"),
		Usage:   "Stop scheduling further tests after the first failure or error",
	}
	Parallel = &cli.BoolFlag{
		Name:    "parallel",
		EnvVars: prefixEnvVar("PARALLEL"),
		Usage:   "Run test units across a worker pool instead of sequentially",
	}
	Concurrency = &cli.IntFlag{
		Name:    "concurrency",
		Value:   0,
		EnvVars: prefixEnvVar("CONCURRENCY"),
		Usage:   "Number of parallel workers (0 = auto)",
	}
	Reports = &cli.StringSliceFlag{
		Name:    "report",
		Value:   cli.NewStringSlice("junit"),
		EnvVars: prefixEnvVar("REPORT"),
		Usage:   "Report formats to generate: junit, json, html",
	}
	ReportDir = &cli.StringFlag{
		Name:    "report-path",
		Value:   "test_reports",
		EnvVars: prefixEnvVar("REPORT_PATH"),
		Usage:   "Directory for report artifacts",
	}
	DryRun = &cli.BoolFlag{
		Name:    "dry-run",
		EnvVars: prefixEnvVar("DRY_RUN"),
		Usage:   "Enumerate discovered units without executing them",
	}
	Verbose = &cli.BoolFlag{
		Name:    "verbose",
		EnvVars: prefixEnvVar("VERBOSE"),
		Usage:   "Enable debug logging",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVar("RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h'). Set to 0 or omit for run-once mode",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics-addr",
		EnvVars: prefixEnvVar("METRICS_ADDR"),
		Usage:   "Address for the /metrics and /healthz endpoint (disabled when empty)",
	}
)

var requiredFlags = []cli.Flag{
	Roots,
}

var optionalFlags = []cli.Flag{
	SuiteName,
	Category,
	Tags,
	NamePattern,
	Timeout,
	FailFast,
	Parallel,
	Concurrency,
	Reports,
	ReportDir,
	DryRun,
	Verbose,
	RunInterval,
	MetricsAddr,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
