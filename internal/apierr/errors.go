// Package apierr defines the error types returned to the API Gateway
// integration. APIError renders its message as the structured JSON payload
// the gateway maps into the HTTP response body.
package apierr

import (
	"encoding/json"
	"fmt"
)

// ValidationError marks a caller-supplied input as invalid. Handlers map it
// to a 400 response.
type ValidationError struct {
	Reason string
}

func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return "Validation Error: " + e.Reason
}

// APIError is the structured error returned across the Lambda boundary.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
	SourceID   string
}

// New builds an APIError. A zero code defaults to 500.
func New(message string, code int, requestID, sourceID string) *APIError {
	if code == 0 {
		code = 500
	}
	return &APIError{
		StatusCode: code,
		Message:    message,
		RequestID:  requestID,
		SourceID:   sourceID,
	}
}

type apiErrorPayload struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId,omitempty"`
	SourceID   string `json:"sourceId,omitempty"`
}

// Error returns the JSON payload so the gateway's error mapping can select
// on statusCode and hand the body to the caller unchanged.
func (e *APIError) Error() string {
	b, err := json.Marshal(apiErrorPayload{
		StatusCode: e.StatusCode,
		Message:    e.Message,
		RequestID:  e.RequestID,
		SourceID:   e.SourceID,
	})
	if err != nil {
		return fmt.Sprintf(`{"success":false,"statusCode":%d,"message":%q}`, e.StatusCode, e.Message)
	}
	return string(b)
}
