package contact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TestSender sends a single test email. *Deliverer satisfies it.
type TestSender interface {
	SendTest(ctx context.Context, to string) error
}

// Canary periodically sends a test email so provider breakage shows up in
// logs before a visitor hits it.
type Canary struct {
	cron   *cron.Cron
	sender TestSender
	logger *slog.Logger
	to     string

	mu      sync.Mutex
	started bool
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewCanary parses schedule (5-field cron or a descriptor such as "@daily").
func NewCanary(schedule string, sender TestSender, to string, logger *slog.Logger) (*Canary, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, schedule, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cl := cronLogger{logger: logger}
	c := &Canary{
		cron: cron.New(
			cron.WithParser(scheduleParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sender: sender,
		logger: logger,
		to:     to,
	}
	c.cron.Schedule(sched, cron.FuncJob(c.Run))
	return c, nil
}

// Run sends one test email now.
func (c *Canary) Run() {
	if err := c.sender.SendTest(context.Background(), c.to); err != nil {
		c.logger.Error("canary email failed", slog.Any("error", err))
	}
}

// Start begins the schedule.
func (c *Canary) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.cron.Start()
	c.started = true
	c.logger.InfoContext(ctx, "canary started", slog.Time("next", c.Next()))
	return nil
}

// Stop halts the schedule and waits for a running send until ctx is done.
func (c *Canary) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	c.mu.Unlock()

	select {
	case <-c.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("contact: stop canary: %w", ctx.Err())
	}
}

// Next returns the next scheduled run, or the zero time when not started.
func (c *Canary) Next() time.Time {
	entries := c.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
