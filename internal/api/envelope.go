package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the versioned wrapper every API response ships in.
// Clients branch on success before reading data or error.
type Envelope struct {
	V       int       `json:"v" doc:"Envelope version"`
	Success bool      `json:"success" doc:"Whether the request succeeded"`
	Data    any       `json:"data,omitempty" doc:"Response payload on success"`
	Error   *APIError `json:"error,omitempty" doc:"Error details on failure"`
}

// EnvelopeTransformer wraps every response body in the versioned
// envelope. Registered as a huma transformer so handlers return plain
// payloads.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case nil:
		return &Envelope{V: 1, Success: true}, nil
	case *Envelope:
		// Already wrapped; never double-wrap.
		return body, nil
	case *APIError:
		return &Envelope{V: 1, Success: false, Error: body}, nil
	default:
		return &Envelope{V: 1, Success: true, Data: v}, nil
	}
}
