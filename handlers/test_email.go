package handlers

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/folio/internal"
)

// TestQueuer queues a test email. *contact.Dispatcher implements it.
type TestQueuer interface {
	SendTest(ctx context.Context, to string) error
}

// TestEmailHandler lets operators trigger a test email on demand.
type TestEmailHandler struct {
	queuer TestQueuer
	to     string
}

// NewTestEmailHandler creates a handler that sends test emails to to.
func NewTestEmailHandler(q TestQueuer, to string) *TestEmailHandler {
	return &TestEmailHandler{queuer: q, to: to}
}

// Routes implements internal.Handler.
func (h *TestEmailHandler) Routes(r internal.Router) {
	r.GET("/api/test-email", h.send)
}

func (h *TestEmailHandler) send(c internal.Context) error {
	if err := h.queuer.SendTest(c.Context(), h.to); err != nil {
		return internal.ErrServiceUnavailable(MsgUnavailable, internal.WithError(err))
	}
	c.LogInfo("test email queued")
	return c.JSON(http.StatusOK, TestEmailResponse{OK: true, Message: MsgTestQueued})
}
