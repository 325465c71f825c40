package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/folio/contact"
	"github.com/dmitrymomot/folio/handlers"
	"github.com/dmitrymomot/folio/internal"
	"github.com/dmitrymomot/folio/middlewares"
	"github.com/dmitrymomot/folio/pkg/mailer"
)

const bodyLimit = 64 << 10

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, sub contact.Submission) contact.Result {
	args := m.Called(ctx, sub)
	return args.Get(0).(contact.Result)
}

type mockQueuer struct {
	mock.Mock
}

func (m *mockQueuer) SendTest(ctx context.Context, to string) error {
	return m.Called(ctx, to).Error(0)
}

func newApp(hs ...internal.Handler) *internal.App {
	return internal.New(
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithMiddleware(middlewares.Recover()),
		internal.WithBodyLimit(bodyLimit),
		internal.WithHandlers(hs...),
	)
}

func postContact(t *testing.T, app http.Handler, contentType, body string) (*httptest.ResponseRecorder, handlers.Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	var resp handlers.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

// fakeSender fails the first failures calls and records every attempt.
type fakeSender struct {
	failures int
	calls    []*mailer.Email
	mu       sync.Mutex
}

func (f *fakeSender) Send(_ context.Context, email *mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, email)
	if f.failures < 0 || len(f.calls) <= f.failures {
		return errors.New("provider unavailable")
	}
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// newPipeline wires the real dispatcher over sender without sleeping.
func newPipeline(t *testing.T, sender mailer.Sender) *contact.Dispatcher {
	t.Helper()

	m := mailer.New(sender, mailer.NewRenderer(contact.Templates()), mailer.Config{
		DefaultLayout:   "base.html",
		FallbackSubject: "New message",
	})
	policy := contact.DefaultPolicy("owner@example.com",
		contact.Identity{Name: "primary", From: "no-reply@example.com"},
		contact.Identity{Name: "fallback", From: "onboarding@resend.dev"},
	)
	d, err := contact.NewDeliverer(m, policy, contact.WithSleep(func(context.Context, time.Duration) error { return nil }))
	require.NoError(t, err)
	return contact.NewDispatcher(d, contact.ModeSync)
}

func TestContactHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid submission is accepted", func(t *testing.T) {
		t.Parallel()

		sub := &mockSubmitter{}
		sub.On("Submit", mock.Anything, mock.MatchedBy(func(s contact.Submission) bool {
			return s.Name == "Ada" && s.Email == "ada@example.com" && s.Message == "Hello" && s.ID != ""
		})).Return(contact.Result{Delivered: true, Attempts: 1}).Once()

		rec, resp := postContact(t, newApp(handlers.NewContactHandler(sub)),
			"application/json", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)
		require.Equal(t, handlers.MsgThanks, resp.Message)
		require.Empty(t, resp.Errors)
		sub.AssertExpectations(t)
	})

	t.Run("delivery failure is masked", func(t *testing.T) {
		t.Parallel()

		sub := &mockSubmitter{}
		sub.On("Submit", mock.Anything, mock.Anything).
			Return(contact.Result{Err: contact.ErrDeliveryFailed, Attempts: 6}).Once()

		rec, resp := postContact(t, newApp(handlers.NewContactHandler(sub)),
			"application/json", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)
		sub.AssertExpectations(t)
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
		wantMessage string
		wantFields  []string
	}{
		{
			name:        "empty name",
			contentType: "application/json",
			body:        `{"name":"","email":"a@b.co","message":"hi"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgMissingFields,
			wantFields:  []string{"name"},
		},
		{
			name:        "whitespace only fields",
			contentType: "application/json",
			body:        `{"name":"  ","email":"a@b.co","message":"\n\t"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgMissingFields,
			wantFields:  []string{"name", "message"},
		},
		{
			name:        "missing keys",
			contentType: "application/json",
			body:        `{}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgMissingFields,
			wantFields:  []string{"name", "email", "message"},
		},
		{
			name:        "missing field wins over bad email",
			contentType: "application/json",
			body:        `{"name":"","email":"not-an-email","message":"hi"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgMissingFields,
			wantFields:  []string{"name"},
		},
		{
			name:        "invalid email",
			contentType: "application/json",
			body:        `{"name":"A","email":"not-an-email","message":"hi"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgInvalidEmail,
			wantFields:  []string{"email"},
		},
		{
			name:        "email with whitespace",
			contentType: "application/json",
			body:        `{"name":"A","email":"a b@c.de","message":"hi"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgInvalidEmail,
			wantFields:  []string{"email"},
		},
		{
			name:        "padded email",
			contentType: "application/json",
			body:        `{"name":"A","email":"  ada@example.com ","message":"hi"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: handlers.MsgInvalidEmail,
			wantFields:  []string{"email"},
		},
		{
			name:        "form encoded body",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=A&email=a@b.co&message=hi",
			wantCode:    http.StatusUnsupportedMediaType,
			wantMessage: handlers.MsgUnsupported,
		},
		{
			name:        "no content type",
			body:        `{"name":"A","email":"a@b.co","message":"hi"}`,
			wantCode:    http.StatusUnsupportedMediaType,
			wantMessage: handlers.MsgUnsupported,
		},
		{
			name:        "malformed JSON",
			contentType: "application/json",
			body:        `{"name":"A",`,
			wantCode:    http.StatusInternalServerError,
			wantMessage: handlers.MsgGeneric,
		},
		{
			name:        "wrong field type",
			contentType: "application/json",
			body:        `{"name":42,"email":"a@b.co","message":"hi"}`,
			wantCode:    http.StatusInternalServerError,
			wantMessage: handlers.MsgGeneric,
		},
		{
			name:        "body over limit",
			contentType: "application/json",
			body:        `{"name":"A","email":"a@b.co","message":"` + strings.Repeat("x", bodyLimit) + `"}`,
			wantCode:    http.StatusRequestEntityTooLarge,
			wantMessage: handlers.MsgTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub := &mockSubmitter{}
			rec, resp := postContact(t, newApp(handlers.NewContactHandler(sub)), tt.contentType, tt.body)

			require.Equal(t, tt.wantCode, rec.Code)
			require.False(t, resp.Success)
			require.Equal(t, tt.wantMessage, resp.Message)
			for _, f := range tt.wantFields {
				require.Contains(t, resp.Errors, f)
			}
			require.Len(t, resp.Errors, len(tt.wantFields))
			sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
		})
	}

	t.Run("route middleware applies to contact only", func(t *testing.T) {
		t.Parallel()

		sub := &mockSubmitter{}
		sub.On("Submit", mock.Anything, mock.Anything).Return(contact.Result{Delivered: true})

		app := newApp(handlers.NewContactHandler(sub, middlewares.RateLimit(1)))
		body := `{"name":"Ada","email":"ada@example.com","message":"Hello"}`

		rec, resp := postContact(t, app, "application/json", body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)

		rec, resp = postContact(t, app, "application/json", body)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.False(t, resp.Success)
		require.Equal(t, handlers.MsgTooManyRequests, resp.Message)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		sub.AssertNumberOfCalls(t, "Submit", 1)
	})
}

func TestContactPipeline(t *testing.T) {
	t.Parallel()

	body := `{"name":"Ada","email":"ada@example.com","message":"Hello"}`

	t.Run("delivers with one attempt", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		rec, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json", body)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)
		require.Equal(t, 1, sender.count())

		email := sender.calls[0]
		require.Equal(t, "New message from Ada", email.Subject)
		require.Equal(t, "ada@example.com", email.ReplyTo)
		require.Contains(t, email.Text, "Name: Ada\nEmail: ada@example.com\n\nMessage:\nHello")
	})

	t.Run("N-1 failures then success takes exactly N attempts", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{failures: 2}
		rec, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json", body)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)
		require.Equal(t, 3, sender.count())
	})

	t.Run("provider failing everywhere still reports success", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{failures: -1}
		rec, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json", body)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)
		require.Equal(t, handlers.MsgThanks, resp.Message)
		require.Equal(t, 2*contact.DefaultMaxAttempts, sender.count())
	})

	t.Run("same payload twice yields two deliveries", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		app := newApp(handlers.NewContactHandler(newPipeline(t, sender)))

		for range 2 {
			rec, resp := postContact(t, app, "application/json", body)
			require.Equal(t, http.StatusOK, rec.Code)
			require.True(t, resp.Success)
		}
		require.Equal(t, 2, sender.count())
	})

	t.Run("markup is delivered as typed and escaped in HTML", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		_, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json",
			`{"name":"<b>Ada</b>","email":"ada@example.com","message":"<script>x</script>Hi"}`)

		require.True(t, resp.Success)
		require.Equal(t, 1, sender.count())
		email := sender.calls[0]
		require.Equal(t, "New message from <b>Ada</b>", email.Subject)
		require.Contains(t, email.Text, "<script>x</script>Hi")
		require.NotContains(t, email.HTML, "<script>")
		require.NotContains(t, email.HTML, "<b>")
		require.Contains(t, email.HTML, "&lt;script&gt;x&lt;/script&gt;Hi")
	})

	markupOnly := []struct {
		name string
		body string
	}{
		{"message is a lone tag", `{"name":"Ada","email":"ada@example.com","message":"<div>"}`},
		{"name in angle brackets", `{"name":"<Ada>","email":"ada@example.com","message":"Hello"}`},
	}
	for _, tt := range markupOnly {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &fakeSender{}
			rec, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json", tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			require.True(t, resp.Success)
			require.Equal(t, 1, sender.count())
		})
	}

	t.Run("text after an angle bracket is kept", func(t *testing.T) {
		t.Parallel()

		message := "How do I center a <div class=x> in CSS? Also is a<b true"
		sender := &fakeSender{}
		_, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json",
			`{"name":"Ada","email":"ada@example.com","message":"`+message+`"}`)

		require.True(t, resp.Success)
		require.Equal(t, 1, sender.count())
		require.Contains(t, sender.calls[0].Text, message)
		require.Contains(t, sender.calls[0].HTML, "a &lt;div class=x&gt; in CSS? Also is a&lt;b true")
	})

	t.Run("message markdown is not rendered", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		_, resp := postContact(t, newApp(handlers.NewContactHandler(newPipeline(t, sender))), "application/json",
			`{"name":"*Ada*","email":"ada@example.com","message":"# URGENT\n[Verify your account](https://evil.example/login)\nprice 2*3*4"}`)

		require.True(t, resp.Success)
		require.Equal(t, 1, sender.count())
		html := sender.calls[0].HTML
		require.NotContains(t, html, "<h1>")
		require.NotContains(t, html, "<a href")
		require.NotContains(t, html, "<em>")
		require.Contains(t, html, "# URGENT")
		require.Contains(t, html, "[Verify your account](https://evil.example/login)")
		require.Contains(t, html, "price 2*3*4")
		require.Contains(t, html, "*Ada*")
		require.Contains(t, sender.calls[0].Text, "# URGENT\n[Verify your account](https://evil.example/login)\nprice 2*3*4")
	})
}

func TestTestEmailHandler(t *testing.T) {
	t.Parallel()

	t.Run("queues a test email", func(t *testing.T) {
		t.Parallel()

		q := &mockQueuer{}
		q.On("SendTest", mock.Anything, "ops@example.com").Return(nil).Once()

		rec := httptest.NewRecorder()
		newApp(handlers.NewTestEmailHandler(q, "ops@example.com")).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/test-email", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handlers.TestEmailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.OK)
		require.Equal(t, handlers.MsgTestQueued, resp.Message)
		q.AssertExpectations(t)
	})

	t.Run("shutting down returns 503", func(t *testing.T) {
		t.Parallel()

		q := &mockQueuer{}
		q.On("SendTest", mock.Anything, "ops@example.com").Return(contact.ErrShuttingDown).Once()

		rec := httptest.NewRecorder()
		newApp(handlers.NewTestEmailHandler(q, "ops@example.com")).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/test-email", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp handlers.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.Success)
		require.Equal(t, handlers.MsgUnavailable, resp.Message)
	})
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	panicking := handlerFunc(func(r internal.Router) {
		r.GET("/panic", func(c internal.Context) error { panic("boom") })
		r.GET("/plain", func(c internal.Context) error { return errors.New("secret cause") })
	})
	app := newApp(panicking)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantMsg  string
	}{
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantCode: http.StatusNotFound, wantMsg: handlers.MsgNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/plain", wantCode: http.StatusMethodNotAllowed, wantMsg: handlers.MsgMethodNotAllowed},
		{name: "panic", method: http.MethodGet, path: "/panic", wantCode: http.StatusInternalServerError, wantMsg: handlers.MsgGeneric},
		{name: "plain error hides cause", method: http.MethodGet, path: "/plain", wantCode: http.StatusInternalServerError, wantMsg: handlers.MsgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, tt.wantCode, rec.Code)
			require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var resp handlers.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.False(t, resp.Success)
			require.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

// handlerFunc adapts a route declaration function to internal.Handler.
type handlerFunc func(r internal.Router)

func (f handlerFunc) Routes(r internal.Router) { f(r) }
