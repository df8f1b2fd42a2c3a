package relay

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrResolution means no thread or user matches the message.
	ErrResolution = errors.New("relay: resolution failed")
	// ErrConfiguration means the team channel is not reachable at all.
	ErrConfiguration = errors.New("relay: team channel unreachable")
)

type Cause int

const (
	CauseUnknown Cause = iota
	CauseTimeout
	CauseRateLimited
	CauseChannelUnreachable
	CauseRecipientUnreachable
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseRateLimited:
		return "rate_limited"
	case CauseChannelUnreachable:
		return "channel_unreachable"
	case CauseRecipientUnreachable:
		return "recipient_unreachable"
	default:
		return "unknown"
	}
}

// TransportError is a rejected or expired transport call.
type TransportError struct {
	Cause Cause
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Cause, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func CauseOf(err error) Cause {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Cause
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	return CauseUnknown
}
