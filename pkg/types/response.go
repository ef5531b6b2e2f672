// Package types holds the wire envelopes shared by every storefront endpoint.
// Success bodies nest under "data", failures under "error", so the frontend
// client can branch on shape alone.
package types

// SuccessEnvelope wraps any successful response payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details carries field-level
// validation messages when present.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for transport.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
