// Package scheduler runs the MIA sweep once at boot and then on every
// interval boundary, never overlapping itself within a process.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quocanhngo/stillalive/internal/mia"
	"go.uber.org/zap"
)

const DefaultInterval = time.Hour

var ErrAlreadyStarted = errors.New("scheduler: already started")

// started guards against a second scheduler in the same process, e.g. when
// the server is wired twice by a hot reloader.
var started atomic.Bool

// Runner performs one sweep
type Runner interface {
	Sweep(ctx context.Context) (mia.Report, error)
}

// Locker is an optional cross-process mutual exclusion for sweeps
type Locker interface {
	Acquire(ctx context.Context) (token string, ok bool, err error)
	Release(ctx context.Context, token string) error
}

type Options struct {
	Interval time.Duration
	Locker   Locker
	Logger   *zap.Logger
	Now      func() time.Time
}

type Scheduler struct {
	runner Runner
	opts   Options
	mu     sync.Mutex
	done   chan struct{}
}

func New(runner Runner, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{runner: runner, opts: opts, done: make(chan struct{})}
}

// Start launches the loop in the background. Only the first call in a
// process succeeds; later calls return ErrAlreadyStarted.
func (s *Scheduler) Start(ctx context.Context) error {
	if !started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	s.opts.Logger.Info("mia scheduler started", zap.Duration("interval", s.opts.Interval))
	go s.loop(ctx)
	return nil
}

// Done is closed once the loop has exited after ctx cancellation
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.RunOnce(ctx)
	for {
		wait := NextRun(s.opts.Now(), s.opts.Interval).Sub(s.opts.Now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.opts.Logger.Info("mia scheduler stopped")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// NextRun returns the first interval boundary strictly after now. For an
// hourly interval that is the top of the next hour.
func NextRun(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}

// RunOnce performs a single sweep unless one is already running in this
// process or, with a Locker, in another process. It reports whether the
// sweep ran.
func (s *Scheduler) RunOnce(ctx context.Context) (mia.Report, bool, error) {
	log := s.opts.Logger
	if !s.mu.TryLock() {
		log.Warn("mia sweep skipped, previous run still in progress")
		return mia.Report{}, false, nil
	}
	defer s.mu.Unlock()

	if s.opts.Locker != nil {
		token, ok, err := s.opts.Locker.Acquire(ctx)
		if err != nil {
			log.Error("mia sweep lock failed", zap.Error(err))
			return mia.Report{}, false, err
		}
		if !ok {
			log.Info("mia sweep skipped, lock held by another instance")
			return mia.Report{}, false, nil
		}
		defer func() {
			if err := s.opts.Locker.Release(context.WithoutCancel(ctx), token); err != nil {
				log.Warn("mia sweep lock release failed", zap.Error(err))
			}
		}()
	}

	report, err := s.runner.Sweep(ctx)
	if err != nil {
		log.Error("mia sweep failed", zap.Error(err))
		return report, true, err
	}

	log.Info("mia sweep finished",
		zap.Int("users", report.Users),
		zap.Int("failed", report.Failed),
		zap.Int("suspended", report.Suspended),
		zap.Int("emergency_mode_expired", report.EmergencyModeExpired),
		zap.Int("pre_alerts", report.PreAlertsSent),
		zap.Int("emergency_sends", report.EmergencySends),
		zap.Int("emergencies_completed", report.EmergenciesCompleted),
		zap.Int("last_words", report.LastWordsSent),
		zap.Int("send_failures", report.SendFailures),
		zap.Duration("duration", report.Duration),
	)
	return report, true, nil
}
