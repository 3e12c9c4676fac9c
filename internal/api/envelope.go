package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the wire version of the response envelope. Bump it
// whenever the envelope shape changes so clients can detect a mismatch.
const EnvelopeVersion = 1

// APIEnvelope wraps every response body in a consistent structure.
type APIEnvelope struct {
	Version int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload on success"`
	Error   string `json:"error,omitempty" doc:"Error message on failure"`
}

// APIErrorEnvelope wraps coded errors so clients get machine-readable
// code/message/details instead of a bare string.
type APIErrorEnvelope struct {
	Version int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Always false"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every huma response in an envelope.
// Success is derived from the status code; coded API errors keep their
// code and details, other errors flatten to a message string.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	success := strings.HasPrefix(status, "2")

	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code != "" {
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}, nil
	}

	if err, ok := v.(error); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
