package contact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Mode selects when delivery happens relative to the HTTP response.
type Mode string

const (
	// ModeSync delivers before responding.
	ModeSync Mode = "sync"
	// ModeAsync responds at once and delivers in the background.
	ModeAsync Mode = "async"
)

const DefaultMaxInFlight = 8

// ParseMode parses a delivery mode name. An empty string means ModeSync.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSync:
		return ModeSync, nil
	case ModeAsync:
		return ModeAsync, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxInFlight bounds concurrent background deliveries.
func WithMaxInFlight(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxInFlight = n
		}
	}
}

// WithDispatcherLogger sets the logger for dispatch events.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher hands submissions to a Deliverer in the configured Mode and
// owns the background work it starts.
type Dispatcher struct {
	deliverer   *Deliverer
	logger      *slog.Logger
	sem         *semaphore.Weighted
	mode        Mode
	maxInFlight int
	pending     atomic.Int64

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(d *Deliverer, mode Mode, opts ...DispatcherOption) *Dispatcher {
	if mode == "" {
		mode = ModeSync
	}
	dp := &Dispatcher{
		deliverer:   d,
		mode:        mode,
		maxInFlight: DefaultMaxInFlight,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(dp)
	}
	dp.sem = semaphore.NewWeighted(int64(dp.maxInFlight))
	return dp
}

// Mode returns the delivery mode.
func (d *Dispatcher) Mode() Mode { return d.mode }

// Pending returns the number of background tasks not yet finished.
func (d *Dispatcher) Pending() int { return int(d.pending.Load()) }

// Submit delivers sub. In ModeSync it blocks until delivery finishes; in
// ModeAsync it returns a Result with Queued set. Cancelling ctx never
// interrupts a delivery already underway.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission) Result {
	d.logger.InfoContext(ctx, "contact submission received",
		slog.String("submission_id", sub.ID),
		slog.String("mode", string(d.mode)),
	)

	if d.mode == ModeSync {
		return d.deliverer.Deliver(context.WithoutCancel(ctx), sub)
	}

	if !d.goBackground(ctx, func(ctx context.Context) {
		d.deliverer.Deliver(ctx, sub)
	}) {
		d.logger.ErrorContext(ctx, "contact submission dropped",
			slog.String("submission_id", sub.ID),
			slog.Any("error", ErrShuttingDown),
		)
		return Result{Err: ErrShuttingDown}
	}
	return Result{Queued: true}
}

// SendTest queues a single test email. It returns ErrShuttingDown once
// Shutdown has been called.
func (d *Dispatcher) SendTest(ctx context.Context, to string) error {
	if !d.goBackground(ctx, func(ctx context.Context) {
		_ = d.deliverer.SendTest(ctx, to)
	}) {
		return ErrShuttingDown
	}
	return nil
}

func (d *Dispatcher) goBackground(ctx context.Context, fn func(context.Context)) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	d.pending.Add(1)
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer d.wg.Done()
		defer d.pending.Add(-1)

		// ctx cannot be cancelled, so Acquire only returns once a slot is free.
		if err := d.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer d.sem.Release(1)

		fn(ctx)
	}()
	return true
}

// Shutdown stops accepting background work and waits for pending deliveries
// until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	pending := d.Pending()
	if pending > 0 {
		d.logger.InfoContext(ctx, "waiting for pending deliveries", slog.Int("pending", pending))
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("contact: %d deliveries still pending: %w", d.Pending(), ctx.Err())
	}
}

// Healthcheck fails once Shutdown has been called.
func (d *Dispatcher) Healthcheck(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrShuttingDown
	}
	return nil
}
