package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/folio/contact"
	"github.com/dmitrymomot/folio/internal"
	"github.com/dmitrymomot/folio/pkg/validator"
)

// Submitter hands a validated submission to delivery.
// *contact.Dispatcher implements it.
type Submitter interface {
	Submit(ctx context.Context, sub contact.Submission) contact.Result
}

// ContactHandler serves the contact form endpoint.
type ContactHandler struct {
	submitter  Submitter
	middleware []internal.Middleware
}

// NewContactHandler creates a contact handler. mw wraps only the contact
// route, e.g. middlewares.RateLimit.
func NewContactHandler(s Submitter, mw ...internal.Middleware) *ContactHandler {
	return &ContactHandler{submitter: s, middleware: mw}
}

// Routes implements internal.Handler.
func (h *ContactHandler) Routes(r internal.Router) {
	r.POST("/api/contact", h.submit, h.middleware...)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// submit validates the payload and delivers it. Once validation passes the
// caller is told the message was received, whatever the delivery outcome.
func (h *ContactHandler) submit(c internal.Context) error {
	var req contactRequest
	if err := c.BindJSON(&req); err != nil {
		return bindError(err)
	}

	sub := contact.NewSubmission(req.Name, req.Email, req.Message)
	if err := sub.Validate(); err != nil {
		return validationError(err)
	}

	res := h.submitter.Submit(c.Context(), sub)
	if res.Err != nil {
		c.LogWarn("contact submission not delivered",
			slog.String("submission_id", sub.ID),
			slog.Any("error", res.Err),
		)
	}

	return c.JSON(http.StatusOK, Response{Success: true, Message: MsgThanks})
}

func bindError(err error) error {
	switch {
	case errors.Is(err, internal.ErrUnsupportedMediaType):
		return internal.ErrUnsupported(MsgUnsupported, internal.WithError(err))
	case errors.Is(err, internal.ErrBodyTooLarge):
		return internal.ErrPayloadTooLarge(MsgTooLarge, internal.WithError(err))
	default:
		return internal.ErrInternal(MsgGeneric, internal.WithError(err))
	}
}

func validationError(err error) error {
	msg := MsgMissingFields
	if errors.Is(err, contact.ErrInvalidEmail) {
		msg = MsgInvalidEmail
	}

	opts := []internal.HTTPErrorOption{internal.WithError(err)}
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		fields := make(map[string]string, len(verrs))
		for _, v := range verrs {
			fields[v.Field] = v.Message
		}
		opts = append(opts, internal.WithDetails(fields))
	}

	return internal.ErrBadRequest(msg, opts...)
}
