package linking

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCallbackParams is returned when the provider callback arrived
	// without the parameters the handshake needs. The attempt cannot be
	// resumed; the user has to start over.
	ErrMissingCallbackParams = errors.New("missing callback parameters")

	// ErrAttemptNotFound is returned when the transient handshake state for a
	// callback is gone (never stored, already consumed, or expired).
	ErrAttemptNotFound = errors.New("link attempt not found or expired")

	// ErrUnknownProvider is returned for provider names outside the closed set.
	ErrUnknownProvider = errors.New("unknown provider")
)

// UpstreamError wraps a failure talking to a provider endpoint: network
// errors, non-2xx responses and malformed payloads all end up here.
type UpstreamError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstreamErr(p Provider, op string, err error) error {
	return &UpstreamError{Provider: p, Op: op, Err: err}
}

// IsUpstreamError reports whether err is a provider-side failure.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
