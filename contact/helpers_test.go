package contact_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/folio/contact"
	"github.com/dmitrymomot/folio/pkg/mailer"
)

const recipient = "owner@example.com"

var (
	primary  = contact.Identity{Name: "primary", From: "Portfolio <no-reply@example.com>"}
	fallback = contact.Identity{Name: "fallback", From: "onboarding@resend.dev"}
)

// fakeSender records every email and delegates the outcome to fn.
type fakeSender struct {
	fn    func(ctx context.Context, call int, email *mailer.Email) error
	calls []*mailer.Email
	mu    sync.Mutex
}

func (f *fakeSender) Send(ctx context.Context, email *mailer.Email) error {
	f.mu.Lock()
	f.calls = append(f.calls, email)
	n := len(f.calls)
	f.mu.Unlock()

	if f.fn == nil {
		return nil
	}
	return f.fn(ctx, n, email)
}

func (f *fakeSender) Calls() []*mailer.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*mailer.Email(nil), f.calls...)
}

// sleepRecorder captures delays instead of waiting.
type sleepRecorder struct {
	slept []time.Duration
	mu    sync.Mutex
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	return nil
}

func (s *sleepRecorder) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

func newMailer(sender mailer.Sender) *mailer.Mailer {
	return mailer.New(sender, mailer.NewRenderer(contact.Templates()), mailer.Config{
		DefaultLayout:   "base.html",
		FallbackSubject: "New message",
	})
}

func newDeliverer(t *testing.T, sender mailer.Sender, sleep *sleepRecorder, opts ...contact.Option) *contact.Deliverer {
	t.Helper()

	if sleep == nil {
		sleep = &sleepRecorder{}
	}
	opts = append([]contact.Option{contact.WithSleep(sleep.Sleep)}, opts...)

	d, err := contact.NewDeliverer(newMailer(sender), contact.DefaultPolicy(recipient, primary, fallback), opts...)
	require.NoError(t, err)
	return d
}

func ada() contact.Submission {
	return contact.NewSubmission("Ada", "ada@example.com", "Hello")
}
