package contact

import "errors"

var (
	ErrMissingFields   = errors.New("contact: all fields are required")
	ErrInvalidEmail    = errors.New("contact: invalid email address")
	ErrNoSenders       = errors.New("contact: policy has no sender identities")
	ErrNoRecipient     = errors.New("contact: policy has no recipient")
	ErrInvalidMode     = errors.New("contact: invalid delivery mode")
	ErrShuttingDown    = errors.New("contact: dispatcher is shutting down")
	ErrDeliveryFailed  = errors.New("contact: delivery failed on every sender")
	ErrInvalidSchedule = errors.New("contact: invalid canary schedule")
)
