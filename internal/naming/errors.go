package naming

import (
	"errors"
	"fmt"
)

// Kind classifies a completion-service failure. The retry policy is
// keyed on it, so retry semantics stay inspectable and testable
// independent of the transport.
type Kind string

const (
	// KindNetwork is a transport-level failure reaching the endpoint.
	KindNetwork Kind = "network"
	// KindBadRequest means the endpoint rejected the payload shape.
	KindBadRequest Kind = "bad_request"
	// KindHTTPStatus is any other non-2xx response.
	KindHTTPStatus Kind = "http_status"
	// KindDecode is an undecodable response body.
	KindDecode Kind = "decode"
	// KindEmptyChoices is a well-formed response missing the first choice.
	KindEmptyChoices Kind = "empty_choices"
)

// Error is a classified completion-service failure.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("completion service: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("completion service: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf extracts the failure kind, or the empty Kind for foreign errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Policy decides what a failure kind is worth.
type Policy int

const (
	// FailFast gives up on the first failure.
	FailFast Policy = iota
	// RetryOnce repeats the identical request exactly once.
	RetryOnce
)

// retryPolicy maps failure kind to retry behavior. A rejected payload
// shape is presumed transient and model-dependent, so it earns one
// retry with the same payload; every other kind fails immediately.
var retryPolicy = map[Kind]Policy{
	KindNetwork:      FailFast,
	KindBadRequest:   RetryOnce,
	KindHTTPStatus:   FailFast,
	KindDecode:       FailFast,
	KindEmptyChoices: FailFast,
}

// PolicyFor returns the retry policy for a failure kind. Unknown kinds
// fail fast.
func PolicyFor(kind Kind) Policy {
	return retryPolicy[kind]
}
