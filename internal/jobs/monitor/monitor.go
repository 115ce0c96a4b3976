// Package monitor tracks a long-running backend job by polling its status
// endpoint and reporting busy->idle transitions.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/models"
)

// Options configures one polling run
type Options struct {
	// Endpoint is the status URL, e.g. https://api.example.com/kb-status
	Endpoint string
	// Interval between polls; the first poll fires immediately
	Interval time.Duration
	// InitialStatus is reported by Current until the first successful poll
	InitialStatus models.JobStatus

	// OnStatusChange is invoked after every successful poll
	OnStatusChange func(status models.JobStatus)
	// OnCompletion is invoked once per running->not running transition
	OnCompletion func()

	// FailureThreshold is the number of consecutive failed polls after which
	// OnStale fires (once per failure streak). Zero disables it.
	FailureThreshold int
	// OnStale receives the last error and the current streak length
	OnStale func(err error, failures int)
}

// pollerState is owned by one run and only touched by that run's poll loop
// (under Monitor.mu so accessors can read it).
type pollerState struct {
	generation        uint64
	opts              Options
	current           models.JobStatus
	previousIsRunning bool
	polled            bool // false until the first successful poll
	failures          int
	staleReported     bool

	cancel      context.CancelFunc
	done        chan struct{}
	dispatching atomic.Bool
}

type tickerFactory func(d time.Duration) (<-chan time.Time, func())

func newTimeTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Monitor owns the polling lifecycle for one job. At most one polling run is
// active at a time; Start on a running monitor replaces the previous run.
//
// Polls run sequentially on a single goroutine, so callbacks are delivered in
// poll order and never overlap. A tick that arrives while a poll is still in
// flight is dropped.
type Monitor struct {
	fetcher   Fetcher
	logger    arbor.ILogger
	newTicker tickerFactory

	mu         sync.Mutex
	run        *pollerState
	generation uint64
}

// New creates a stopped monitor
func New(fetcher Fetcher, logger arbor.ILogger) *Monitor {
	return &Monitor{
		fetcher:   fetcher,
		logger:    logger,
		newTicker: newTimeTicker,
	}
}

// Start begins polling. Any previous run is stopped first and its edge
// tracking discarded. Polling also ends when ctx is cancelled.
func (m *Monitor) Start(ctx context.Context, opts Options) error {
	if opts.Endpoint == "" {
		return errors.New("monitor: endpoint is required")
	}
	if opts.Interval <= 0 {
		return errors.New("monitor: interval must be positive")
	}

	m.Stop()

	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.generation++
	run := &pollerState{
		generation:        m.generation,
		opts:              opts,
		current:           opts.InitialStatus.Clone(),
		previousIsRunning: opts.InitialStatus.IsRunning,
		cancel:            cancel,
		done:              make(chan struct{}),
	}
	m.run = run
	m.mu.Unlock()

	m.logger.Info().
		Str("endpoint", opts.Endpoint).
		Dur("interval", opts.Interval).
		Int64("generation", int64(run.generation)).
		Msg("Job status monitor started")

	common.SafeGo(m.logger, "jobStatusMonitor", func() {
		m.loop(runCtx, run)
	})

	return nil
}

// Stop cancels polling. It is a no-op when not started and safe to call
// repeatedly. An in-flight request is cancelled and its result discarded.
//
// When called from outside a callback, Stop waits for the poll loop to exit so
// no callback fires after it returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	run := m.run
	m.run = nil
	m.mu.Unlock()

	if run == nil {
		return
	}

	run.cancel()

	// Called from inside OnStatusChange/OnCompletion: waiting would deadlock
	if !run.dispatching.Load() {
		<-run.done
	}

	m.logger.Info().
		Str("endpoint", run.opts.Endpoint).
		Int64("generation", int64(run.generation)).
		Msg("Job status monitor stopped")
}

// Running reports whether a polling run is active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.run != nil
}

// Current returns the latest snapshot of the active run. ok is false when
// the monitor is stopped.
func (m *Monitor) Current() (status models.JobStatus, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.run == nil {
		return models.JobStatus{}, false
	}
	return m.run.current.Clone(), true
}

func (m *Monitor) loop(ctx context.Context, run *pollerState) {
	defer close(run.done)
	defer func() {
		// Parent context cancelled without Stop: release the slot
		m.mu.Lock()
		if m.run == run {
			m.run = nil
		}
		m.mu.Unlock()
	}()

	m.tick(ctx, run)

	ticks, stopTicker := m.newTicker(run.opts.Interval)
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			m.tick(ctx, run)
		}
	}
}

// tick performs one poll cycle: fetch, detect, update, notify
func (m *Monitor) tick(ctx context.Context, run *pollerState) {
	if ctx.Err() != nil {
		return
	}

	status, err := m.fetcher.Poll(ctx, run.opts.Endpoint)
	if err != nil {
		m.handleFailure(ctx, run, err)
		return
	}

	m.mu.Lock()
	if m.run != run {
		// Stopped or superseded while the request was in flight
		m.mu.Unlock()
		return
	}
	completed := run.polled && DetectCompletion(run.previousIsRunning, status)
	// Must follow detection, otherwise the edge reads its own value as previous
	run.previousIsRunning = status.IsRunning
	run.polled = true
	run.current = status.Clone()
	run.failures = 0
	run.staleReported = false
	m.mu.Unlock()

	if run.opts.OnStatusChange != nil {
		snapshot := status.Clone()
		m.dispatch(run, "OnStatusChange", func() { run.opts.OnStatusChange(snapshot) })
	}

	if completed {
		m.logger.Info().
			Str("endpoint", run.opts.Endpoint).
			Msg("Job completion detected")
		if run.opts.OnCompletion != nil {
			m.dispatch(run, "OnCompletion", run.opts.OnCompletion)
		}
	}
}

func (m *Monitor) handleFailure(ctx context.Context, run *pollerState, err error) {
	if ctx.Err() != nil {
		// Cancelled by Stop; not a backend failure
		return
	}

	m.mu.Lock()
	if m.run != run {
		m.mu.Unlock()
		return
	}
	run.failures++
	failures := run.failures
	notifyStale := run.opts.FailureThreshold > 0 &&
		failures >= run.opts.FailureThreshold &&
		!run.staleReported
	if notifyStale {
		run.staleReported = true
	}
	m.mu.Unlock()

	var decodeErr *DecodeError
	kind := "fetch"
	if errors.As(err, &decodeErr) {
		kind = "decode"
	}

	m.logger.Warn().
		Err(err).
		Str("endpoint", run.opts.Endpoint).
		Str("kind", kind).
		Int("consecutive_failures", failures).
		Msg("Job status poll failed - keeping last known status")

	if notifyStale && run.opts.OnStale != nil {
		m.dispatch(run, "OnStale", func() { run.opts.OnStale(err, failures) })
	}
}

// dispatch runs a callback on the poll goroutine unless the run has ended.
// A panicking callback is logged and polling continues.
func (m *Monitor) dispatch(run *pollerState, name string, fn func()) {
	m.mu.Lock()
	active := m.run == run
	m.mu.Unlock()
	if !active {
		return
	}

	run.dispatching.Store(true)
	defer run.dispatching.Store(false)
	defer common.Recover(m.logger, "jobStatusMonitor."+name)

	fn()
}
