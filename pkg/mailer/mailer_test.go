package mailer

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func contactFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{Data: []byte(`<html><body>{{.Content}}</body></html>`)},
		"contact.md": &fstest.MapFile{Data: []byte(`---
Subject: New message from {{.Name}}
---
Name: {{.Name}}
Email: {{.Email}}

Message:
{{.Message}}
`)},
	}
}

type contactData struct {
	Name, Email, Message string
}

func TestMailer_Compose(t *testing.T) {
	t.Parallel()

	m := New(&MockSender{}, NewRenderer(contactFS()), Config{DefaultLayout: "base.html"})

	email, err := m.Compose(SendParams{
		To:       "owner@example.com",
		Template: "contact.md",
		Data:     contactData{Name: "Ada", Email: "ada@example.com", Message: "hello"},
		ReplyTo:  "ada@example.com",
		From:     "no-reply@example.com",
		Tags:     Tags{"category": "contact"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"owner@example.com"}, email.To)
	require.Equal(t, "New message from Ada", email.Subject)
	require.Equal(t, "Name: Ada\nEmail: ada@example.com\n\nMessage:\nhello\n", email.Text)
	require.Contains(t, email.HTML, "<html><body>")
	require.Contains(t, email.HTML, "Name: Ada<br>")
	require.Equal(t, "ada@example.com", email.ReplyTo)
	require.Equal(t, "no-reply@example.com", email.From)
	require.Equal(t, "contact", email.Tags["category"])
}

func TestMailer_Compose_NoRecipient(t *testing.T) {
	t.Parallel()

	m := New(&MockSender{}, NewRenderer(contactFS()), Config{})
	_, err := m.Compose(SendParams{Template: "contact.md"})
	require.ErrorIs(t, err, ErrNoRecipient)
}

func TestMailer_Compose_SubjectResolution(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"with.md":    &fstest.MapFile{Data: []byte("---\nSubject: From template\n---\nbody")},
		"without.md": &fstest.MapFile{Data: []byte("body")},
	}
	m := New(&MockSender{}, NewRenderer(fs), Config{FallbackSubject: "Fallback"})

	tests := []struct {
		name     string
		params   SendParams
		expected string
	}{
		{"explicit subject wins", SendParams{To: "a@b.co", Template: "with.md", Subject: "Explicit"}, "Explicit"},
		{"template subject", SendParams{To: "a@b.co", Template: "with.md"}, "From template"},
		{"fallback subject", SendParams{To: "a@b.co", Template: "without.md"}, "Fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			email, err := m.Compose(tt.params)
			require.NoError(t, err)
			require.Equal(t, tt.expected, email.Subject)
		})
	}
}

func TestMailer_Compose_DataIsNotTemplateSyntax(t *testing.T) {
	t.Parallel()

	m := New(&MockSender{}, NewRenderer(contactFS()), Config{DefaultLayout: "base.html"})
	email, err := m.Compose(SendParams{
		To:       "owner@example.com",
		Template: "contact.md",
		Data:     contactData{Name: "{{.Email}}", Email: "x@y.zz", Message: "m"},
	})
	require.NoError(t, err)
	require.Equal(t, "New message from {{.Email}}", email.Subject)
}

func TestMailer_ComposeAndSendRaw(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *Email) bool {
		return e.To[0] == "owner@example.com" && e.Subject == "New message from Ada"
	})).Return(nil)

	m := New(sender, NewRenderer(contactFS()), Config{DefaultLayout: "base.html"})
	email, err := m.Compose(SendParams{
		To:       "owner@example.com",
		Template: "contact.md",
		Data:     contactData{Name: "Ada", Email: "ada@example.com", Message: "hi"},
	})
	require.NoError(t, err)

	require.NoError(t, m.SendRaw(context.Background(), email))
	sender.AssertExpectations(t)
}

func TestMailer_Compose_RenderFailure(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	m := New(sender, NewRenderer(fstest.MapFS{}), Config{DefaultLayout: "missing.html"})

	_, err := m.Compose(SendParams{To: "a@b.co", Template: "nope.md"})
	require.ErrorIs(t, err, ErrRenderFailed)
	require.ErrorIs(t, err, ErrTemplateNotFound)
	sender.AssertNotCalled(t, "Send")
}

func TestMailer_SendRaw_SenderFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset by peer")
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(cause)

	m := New(sender, NewRenderer(fstest.MapFS{}), Config{})
	err := m.SendRaw(context.Background(), &Email{To: []string{"a@b.co"}, Subject: "s", Text: "t"})

	require.ErrorIs(t, err, ErrSendFailed)
	require.ErrorIs(t, err, cause)
	sender.AssertExpectations(t)
}

func TestMailer_SendRaw_Incomplete(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	m := New(sender, NewRenderer(fstest.MapFS{}), Config{})

	tests := []struct {
		email *Email
		err   error
	}{
		{&Email{Subject: "s", Text: "t"}, ErrNoRecipient},
		{&Email{To: []string{"a@b.co"}, Text: "t"}, ErrNoSubject},
		{&Email{To: []string{"a@b.co"}, Subject: "s"}, ErrNoContent},
	}
	for _, tt := range tests {
		require.ErrorIs(t, m.SendRaw(context.Background(), tt.email), tt.err)
	}
	sender.AssertNotCalled(t, "Send")
}

func TestEmail_WithFrom(t *testing.T) {
	t.Parallel()

	orig := &Email{From: "a@example.com", To: []string{"o@example.com"}, Subject: "s"}
	cp := orig.WithFrom("b@example.com")

	require.Equal(t, "b@example.com", cp.From)
	require.Equal(t, "a@example.com", orig.From)
	require.Equal(t, orig.To, cp.To)
}

func TestAddress(t *testing.T) {
	t.Parallel()
	require.Equal(t, "x@y.co", Address("", "x@y.co"))
	require.Equal(t, "Portfolio <x@y.co>", Address("Portfolio", "x@y.co"))
}

func TestSenderFunc(t *testing.T) {
	t.Parallel()

	var got *Email
	s := SenderFunc(func(_ context.Context, e *Email) error {
		got = e
		return nil
	})
	e := &Email{Subject: "s"}
	require.NoError(t, s.Send(context.Background(), e))
	require.Same(t, e, got)
}
