package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/folio/pkg/mailer"
	"github.com/dmitrymomot/folio/pkg/retry"
)

// Mailer composes and sends emails. *mailer.Mailer satisfies it.
type Mailer interface {
	Compose(params mailer.SendParams) (*mailer.Email, error)
	SendRaw(ctx context.Context, email *mailer.Email) error
}

// Result is the outcome of one submission.
type Result struct {
	Err       error
	Sender    string
	Attempts  int
	Delivered bool
	Queued    bool
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithLogger sets the logger for delivery events.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSleep replaces the wait between attempts.
func WithSleep(fn retry.SleepFunc) Option {
	return func(d *Deliverer) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// WithClock replaces time.Now for test emails.
func WithClock(now func() time.Time) Option {
	return func(d *Deliverer) {
		if now != nil {
			d.now = now
		}
	}
}

// Deliverer sends submissions according to a Policy.
type Deliverer struct {
	mailer Mailer
	logger *slog.Logger
	sleep  retry.SleepFunc
	now    func() time.Time
	policy Policy
}

// NewDeliverer validates the policy and returns a Deliverer.
func NewDeliverer(m Mailer, p Policy, opts ...Option) (*Deliverer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	d := &Deliverer{
		mailer: m,
		policy: p.withDefaults(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:  retry.Wait,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Policy returns the effective policy.
func (d *Deliverer) Policy() Policy { return d.policy }

// Deliver composes the notification email once and tries each sender in order
// until one succeeds. It blocks until delivery succeeds or every sender is
// exhausted.
func (d *Deliverer) Deliver(ctx context.Context, sub Submission) Result {
	log := d.logger.With(slog.String("submission_id", sub.ID))

	email, err := d.mailer.Compose(mailer.SendParams{
		Template: contactTemplate,
		To:       d.policy.Recipient,
		ReplyTo:  sub.Email,
		Data:     sub,
		Tags:     mailer.Tags{"category": "contact"},
	})
	if err != nil {
		log.ErrorContext(ctx, "contact email could not be composed", slog.Any("error", err))
		return Result{Err: err}
	}

	var res Result
	for _, id := range d.policy.Senders {
		attempts, err := d.send(ctx, log, email.WithFrom(id.From), id)
		res.Attempts += attempts
		if err == nil {
			res.Delivered = true
			res.Sender = id.Name
			res.Err = nil
			log.InfoContext(ctx, "contact submission delivered",
				slog.Bool("delivered", true),
				slog.String("sender", id.Name),
				slog.Int("attempts", res.Attempts),
			)
			return res
		}
		res.Err = err
		if isPermanent(err) {
			break
		}
	}

	log.ErrorContext(ctx, "contact delivery failed",
		slog.Bool("delivered", false),
		slog.Int("attempts", res.Attempts),
		slog.Any("final_error", res.Err),
	)
	res.Err = errors.Join(ErrDeliveryFailed, res.Err)
	return res
}

func (d *Deliverer) send(ctx context.Context, log *slog.Logger, email *mailer.Email, id Identity) (int, error) {
	return retry.Do(ctx, retry.Policy{
		MaxAttempts: d.policy.MaxAttempts,
		Sleep:       d.sleep,
		Delay: func(attempt int, err error) time.Duration {
			return d.policy.Delay(Classify(err), attempt)
		},
		OnFailure: func(attempt int, err error, delay time.Duration) {
			log.WarnContext(ctx, "contact delivery attempt failed",
				slog.String("sender", id.Name),
				slog.String("from", id.From),
				slog.Int("attempt", attempt),
				slog.String("class", Classify(err).String()),
				slog.Duration("delay", delay),
				slog.Any("error", err),
			)
		},
	}, func(ctx context.Context, attempt int) error {
		ctx, cancel := context.WithTimeout(ctx, d.policy.AttemptTimeout)
		defer cancel()

		log.DebugContext(ctx, "contact delivery attempt",
			slog.String("sender", id.Name),
			slog.Int("attempt", attempt),
		)
		err := d.mailer.SendRaw(ctx, email)
		if isPermanent(err) {
			return retry.Permanent(err)
		}
		return err
	})
}

// SendTest sends a single test email from the primary sender to "to", or to
// the policy recipient when "to" is empty. It is not retried.
func (d *Deliverer) SendTest(ctx context.Context, to string) error {
	if to == "" {
		to = d.policy.Recipient
	}
	id := d.policy.Senders[0]

	err := func() error {
		email, err := d.mailer.Compose(mailer.SendParams{
			Template: testTemplate,
			To:       to,
			From:     id.From,
			Data: map[string]string{
				"From":   id.From,
				"SentAt": d.now().UTC().Format(time.RFC3339),
			},
			Tags: mailer.Tags{"category": "test"},
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, d.policy.AttemptTimeout)
		defer cancel()
		return d.mailer.SendRaw(ctx, email)
	}()

	if err != nil {
		d.logger.ErrorContext(ctx, "test email failed",
			slog.String("sender", id.Name),
			slog.String("to", to),
			slog.Any("error", err),
		)
		return err
	}

	d.logger.InfoContext(ctx, "test email sent",
		slog.String("sender", id.Name),
		slog.String("to", to),
	)
	return nil
}

// isPermanent reports errors that no retry or other sender can fix.
func isPermanent(err error) bool {
	return errors.Is(err, mailer.ErrNoRecipient) ||
		errors.Is(err, mailer.ErrNoSubject) ||
		errors.Is(err, mailer.ErrNoContent)
}
