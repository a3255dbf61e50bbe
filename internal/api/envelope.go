package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes; clients
// reject envelopes from a newer server.
const envelopeVersion = 1

// Envelope is the uniform response wrapper every JSON endpoint emits.
// The version field is named exactly "v"; clients depend on it.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the standard
// envelope. Error bodies (APIError) are flattened into the envelope's
// error fields instead of nesting under data.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: !strings.HasPrefix(status, "4") && !strings.HasPrefix(status, "5"),
		Data:    v,
	}, nil
}
