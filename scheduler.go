package conductor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// RunScheduler is responsible for scheduling pipeline runs.
type RunScheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(func() error)
	WaitForShutdown(ctx context.Context) error
	Stopped() bool
}

// IntervalScheduler implements the RunScheduler interface. In run-once mode
// the callback executes exactly once; in continuous mode it runs immediately
// and then at every interval until stopped.
type IntervalScheduler struct {
	interval time.Duration
	runOnce  bool
	log      zerolog.Logger
	callback func() error

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewIntervalScheduler creates a new IntervalScheduler.
func NewIntervalScheduler(interval time.Duration, runOnce bool, log zerolog.Logger) *IntervalScheduler {
	return &IntervalScheduler{
		interval: interval,
		runOnce:  runOnce,
		log:      log,
		done:     make(chan struct{}),
	}
}

// RegisterCallback registers the callback to be called when a run is due.
func (s *IntervalScheduler) RegisterCallback(callback func() error) {
	s.callback = callback
}

// Start starts the scheduler.
func (s *IntervalScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("callback must be registered before starting scheduler")
	}

	s.done = make(chan struct{})
	s.running.Store(true)

	if s.runOnce {
		s.log.Info().Msg("Starting scheduler in run-once mode")
		return s.callback()
	}

	s.log.Info().Dur("interval", s.interval).Msg("Starting scheduler in continuous mode")

	// Run immediately on startup
	err := s.callback()
	if err != nil {
		s.log.Error().Err(err).Msg("Initial run failed, continuing with periodic runs")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Debug().Dur("interval", s.interval).Msg("Starting periodic run goroutine")

		for {
			select {
			case <-time.After(s.interval):
				if !s.running.Load() {
					s.log.Debug().Msg("Scheduler stopped, exiting periodic run goroutine")
					return
				}

				s.log.Info().Msg("Running periodic pipeline pass")
				if err := s.callback(); err != nil {
					s.log.Error().Err(err).Msg("Periodic run failed")
				}

			case <-s.done:
				s.log.Debug().Msg("Done signal received, stopping periodic runs")
				return

			case <-ctx.Done():
				s.log.Debug().Msg("Context canceled, stopping periodic runs")
				s.running.Store(false)
				return
			}
		}
	}()

	return nil
}

// Stop stops the scheduler.
func (s *IntervalScheduler) Stop() error {
	if !s.running.Load() {
		s.log.Debug().Msg("Scheduler already stopped, nothing to do")
		return nil
	}

	// Update running state first to prevent new runs
	s.running.Store(false)
	close(s.done)

	return nil
}

// Stopped returns true if the scheduler is stopped.
func (s *IntervalScheduler) Stopped() bool {
	return !s.running.Load()
}

// WaitForShutdown blocks until all scheduler goroutines have terminated.
func (s *IntervalScheduler) WaitForShutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Debug().Msg("All scheduler goroutines terminated")
		return nil
	case <-ctx.Done():
		s.log.Warn().Err(ctx.Err()).Msg("Timed out waiting for scheduler goroutines")
		return ctx.Err()
	}
}
