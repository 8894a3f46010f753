package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind classifies a transport-level failure. The governor's escalation
// decision is a pure function of this value.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindConnectionRefused
	KindForbidden
	KindDecode
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectionRefused:
		return "connection_refused"
	case KindForbidden:
		return "forbidden"
	case KindDecode:
		return "decode"
	case KindProtocol:
		return "protocol"
	}
	return "unknown"
}

// escalates reports whether a failure of this kind should be retried on
// the impersonating fallback transport. A refused connection is a dead
// host, not a bot challenge, so it is excluded.
func (k Kind) escalates() bool {
	switch k {
	case KindTimeout, KindForbidden, KindDecode, KindProtocol:
		return true
	}
	return false
}

// Error is a classified transport failure for a single request.
type Error struct {
	Kind Kind
	URL  string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %s", e.URL, e.Kind, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// SourceUnavailableError means both transports failed (or the failure
// kind was not worth escalating). It carries the last failure's kind.
type SourceUnavailableError struct {
	Source string
	Kind   Kind
	err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %s: %s", e.Source, e.Kind, e.err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.err }

func classify(url string, err error) *Error {
	kind := KindUnknown

	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &nerr) && nerr.Timeout():
		kind = KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = KindConnectionRefused
	}

	return &Error{Kind: kind, URL: url, err: err}
}
