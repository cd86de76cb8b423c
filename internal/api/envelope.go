package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the uniform response wrapper the web client consumes.
// Success responses carry data; failures carry the error object.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError mirrors APIError inside the envelope.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the envelope. It runs
// as a huma transformer so handlers return plain DTOs and stay unaware of
// the wire format.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	// Already enveloped (e.g. re-entrant transformers).
	if _, ok := v.(*Envelope); ok {
		return v, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			Success: false,
			Error: &EnvelopeError{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
		}, nil
	}

	success := len(status) > 0 && (status[0] == '2' || status[0] == '3')
	return &Envelope{Success: success, Data: v}, nil
}
