package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	conductor "github.com/conductor-ci/conductor"
	"github.com/conductor-ci/conductor/exitcodes"
	"github.com/conductor-ci/conductor/flags"
	"github.com/conductor-ci/conductor/registry"
	"github.com/conductor-ci/conductor/service"
)

// Version information, set via ldflags
var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "conductor"
	app.Usage = "Test orchestration and reporting pipeline"
	app.Description = "conductor discovers test units, runs them and renders JUnit/JSON/HTML reports"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitCodeFor(err)))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		// ExitErrHandler already mapped the code; this is the fallback for
		// errors raised outside the action.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

// exitCodeFor maps the orchestrator's typed errors onto process exit codes.
func exitCodeFor(err error) int {
	switch {
	case conductor.IsTestFailureError(err):
		return exitcodes.TestFailure
	case conductor.IsNoTestsError(err):
		return exitcodes.NoTestsFound
	case conductor.IsReportError(err):
		return exitcodes.ReportFailure
	default:
		return exitcodes.RuntimeErr
	}
}

func run(ctx *cli.Context) error {
	log := newLogger(ctx.Bool(flags.Verbose.Name))

	cfg, err := conductor.NewConfig(ctx, log)
	if err != nil {
		return err
	}
	log.Debug().
		Strs("roots", cfg.Roots).
		Strs("reports", cfg.Reports).
		Bool("fail_fast", cfg.FailFast).
		Bool("parallel", cfg.Parallel).
		Msg("Config loaded")

	cnd, err := conductor.New(cfg, registry.Default())
	if err != nil {
		return conductor.NewRuntimeError(err)
	}

	if cfg.MetricsAddr != "" {
		svc := service.New(cfg.MetricsAddr, log)
		svc.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = svc.Shutdown(shutdownCtx)
		}()
	}

	if cfg.RunOnce {
		return cnd.Run(ctx.Context)
	}

	scheduler := conductor.NewIntervalScheduler(cfg.RunInterval, false, log)
	scheduler.RegisterCallback(func() error {
		return cnd.Run(ctx.Context)
	})
	if err := scheduler.Start(ctx.Context); err != nil {
		return err
	}

	<-ctx.Context.Done()
	if err := scheduler.Stop(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return scheduler.WaitForShutdown(waitCtx)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
