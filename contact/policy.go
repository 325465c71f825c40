package contact

import (
	"time"
)

const (
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 15 * time.Second
)

// Identity is a sender address the provider will accept mail from.
type Identity struct {
	Name string // label used in logs, e.g. "primary"
	From string
}

// Delays are the per-class base delays. The wait after attempt n is base × n.
type Delays struct {
	Generic   time.Duration
	ConnReset time.Duration
	Timeout   time.Duration
}

// DefaultDelays returns 1s, 3s and 5s for generic, connection-reset and timeout failures.
func DefaultDelays() Delays {
	return Delays{
		Generic:   time.Second,
		ConnReset: 3 * time.Second,
		Timeout:   5 * time.Second,
	}
}

func (d Delays) base(class FailureClass) time.Duration {
	switch class {
	case FailureConnReset:
		return d.ConnReset
	case FailureTimeout:
		return d.Timeout
	default:
		return d.Generic
	}
}

func (d Delays) max() time.Duration {
	return max(d.Generic, d.ConnReset, d.Timeout)
}

// Policy describes how a submission is delivered.
type Policy struct {
	Recipient      string
	Senders        []Identity
	Delays         Delays
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// DefaultPolicy returns a policy with three attempts per sender, a 15s attempt
// timeout and the default delays.
func DefaultPolicy(recipient string, senders ...Identity) Policy {
	return Policy{
		Recipient:      recipient,
		Senders:        senders,
		Delays:         DefaultDelays(),
		MaxAttempts:    DefaultMaxAttempts,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// Validate reports a policy that cannot deliver anything.
func (p Policy) Validate() error {
	if p.Recipient == "" {
		return ErrNoRecipient
	}
	if len(p.Senders) == 0 {
		return ErrNoSenders
	}
	return nil
}

// Delay is the wait after the given failed attempt (1-based).
func (p Policy) Delay(class FailureClass, attempt int) time.Duration {
	return p.Delays.base(class) * time.Duration(attempt)
}

// WorstCase bounds the total time a synchronous delivery may take.
func (p Policy) WorstCase() time.Duration {
	attempts := time.Duration(len(p.Senders) * max(p.MaxAttempts, 1))
	return attempts * (p.AttemptTimeout + p.Delays.max()*time.Duration(max(p.MaxAttempts, 1)))
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = DefaultAttemptTimeout
	}
	return p
}
