/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package gateway

import "fmt"

// ErrorKind classifies a gateway failure after retries are exhausted.
type ErrorKind string

const (
	// Timeout means the call did not complete within the request timeout.
	Timeout ErrorKind = "timeout"
	// RateLimited means the provider rejected the call with a rate limit.
	RateLimited ErrorKind = "rate_limited"
	// ProviderError covers provider-side failures (5xx, malformed
	// replies, transport errors).
	ProviderError ErrorKind = "provider_error"
	// EmptyResponse means the provider returned a well-formed reply with
	// no usable content.
	EmptyResponse ErrorKind = "empty_response"
)

// Error is the terminal failure of a gateway call. It is only returned
// after internal retries are exhausted (or for non-retryable failures), so
// Attempts reports how many times the provider was actually called.
type Error struct {
	Kind     ErrorKind
	Model    string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s calling %s after %d attempt(s): %v", e.Kind, e.Model, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
