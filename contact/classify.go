package contact

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// FailureClass groups provider errors by how long to back off after them.
type FailureClass int

const (
	FailureGeneric FailureClass = iota
	FailureConnReset
	FailureTimeout
)

func (c FailureClass) String() string {
	switch c {
	case FailureConnReset:
		return "conn_reset"
	case FailureTimeout:
		return "timeout"
	default:
		return "generic"
	}
}

// Classify maps a failed send to its FailureClass.
// Anything not recognised as a transport problem, including provider
// rejections, is FailureGeneric.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return FailureGeneric
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return FailureConnReset
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ETIMEDOUT):
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureGeneric
}
