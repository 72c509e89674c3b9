package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/slaguard/internal/telemetry"
)

// DefaultInterval is the sweep period when none is configured.
const DefaultInterval = 5 * time.Minute

var (
	// ErrSweepInProgress rejects a manual trigger while a sweep is running.
	ErrSweepInProgress = errors.New("sweep already in progress")
	// ErrLeaseHeld means another process holds the sweep lease.
	ErrLeaseHeld = errors.New("sweep lease held by another process")
)

// Sweeper runs one sweep cycle.
type Sweeper interface {
	Run(ctx context.Context) (*Report, error)
}

// PhaseTracker records the phase of the running cycle. Pass its Set method to
// WithPhaseHook and the tracker to the scheduler.
type PhaseTracker struct {
	v atomic.Value
}

func (t *PhaseTracker) Set(p Phase) { t.v.Store(p) }

func (t *PhaseTracker) Get() Phase {
	if p, ok := t.v.Load().(Phase); ok {
		return p
	}
	return PhaseIdle
}

// Scheduler runs at most one sweep at a time, on a fixed interval or on
// demand. Ticks that fire while a sweep is running are dropped and counted.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	lease    Lease
	phases   *PhaseTracker
	logger   *slog.Logger
	metrics  *telemetry.SweepMetrics

	busy    atomic.Bool
	dropped atomic.Int64
	runs    atomic.Int64
	wg      sync.WaitGroup

	mu      sync.Mutex
	last    *Report
	lastErr error
}

type SchedulerOption func(*Scheduler)

func WithLease(l Lease) SchedulerOption {
	return func(s *Scheduler) { s.lease = l }
}

func WithPhaseTracker(t *PhaseTracker) SchedulerOption {
	return func(s *Scheduler) { s.phases = t }
}

func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

func WithSchedulerMetrics(m *telemetry.SweepMetrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

func NewScheduler(sweeper Sweeper, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		lease:    LocalLease{},
		phases:   &PhaseTracker{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger runs a sweep now and waits for it. It returns ErrSweepInProgress
// instead of queueing behind a running sweep.
func (s *Scheduler) Trigger(ctx context.Context) (*Report, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.busy.Store(false)
	return s.sweep(ctx, "manual")
}

// Start sweeps every interval until ctx is cancelled, then waits for the
// in-flight sweep to return. With runNow the first sweep starts immediately.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.InfoContext(ctx, "sweep scheduler started", "interval", s.interval.String())

	if runNow {
		s.tick(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.InfoContext(context.WithoutCancel(ctx), "sweep scheduler stopped",
				"runs", s.runs.Load(), "dropped_ticks", s.dropped.Load())
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.dropped.Add(1)
		s.metrics.RecordDropped(ctx)
		s.logger.WarnContext(ctx, "sweep tick dropped, previous sweep still running")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.busy.Store(false)
		_, _ = s.sweep(ctx, "interval")
	}()
}

// sweep runs one cycle under the lease. The caller holds the busy flag.
func (s *Scheduler) sweep(ctx context.Context, trigger string) (*Report, error) {
	release, ok, err := s.lease.Acquire(ctx)
	if err != nil {
		s.record(nil, err)
		return nil, err
	}
	if !ok {
		s.logger.InfoContext(ctx, "sweep skipped", "trigger", trigger, "reason", ErrLeaseHeld.Error())
		return nil, ErrLeaseHeld
	}
	defer release()

	s.runs.Add(1)
	rep, err := s.sweeper.Run(ctx)
	s.record(rep, err)
	return rep, err
}

func (s *Scheduler) record(rep *Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rep != nil {
		s.last = rep
	}
	s.lastErr = err
}

// State reports the current phase, Idle when no sweep is running.
func (s *Scheduler) State() Phase {
	if !s.busy.Load() {
		return PhaseIdle
	}
	return s.phases.Get()
}

func (s *Scheduler) Busy() bool { return s.busy.Load() }

// Dropped counts interval ticks skipped because a sweep was running.
func (s *Scheduler) Dropped() int64 { return s.dropped.Load() }

func (s *Scheduler) Runs() int64 { return s.runs.Load() }

func (s *Scheduler) Interval() time.Duration { return s.interval }

// Last returns the most recent report and the error of the most recent run.
func (s *Scheduler) Last() (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}
