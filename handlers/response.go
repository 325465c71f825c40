package handlers

// User-facing messages.
const (
	MsgThanks           = "Thank you for your message! I will get back to you soon."
	MsgMissingFields    = "All fields are required."
	MsgInvalidEmail     = "Please provide a valid email address."
	MsgUnsupported      = "Unsupported payload: expected application/json."
	MsgTooLarge         = "Message is too large."
	MsgTooManyRequests  = "Too many requests. Please try again later."
	MsgGeneric          = "Something went wrong. Please try again later."
	MsgNotFound         = "Not found."
	MsgMethodNotAllowed = "Method not allowed."
	MsgUnavailable      = "Service is shutting down. Please try again later."
	MsgTestQueued       = "Queued test email."
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Errors  map[string]string `json:"errors,omitempty"`
	Message string            `json:"message"`
	Success bool              `json:"success"`
}

// TestEmailResponse is returned by GET /api/test-email.
type TestEmailResponse struct {
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}
