// Package types holds the JSON envelopes every API response is wrapped in.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of a failed call. Retryable tells a terminal client
// whether sending the same command again can succeed, as after a catalog or
// persistence timeout, without the operator changing anything.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
