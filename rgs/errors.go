package rgs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MissingSessionError is raised before any network call when an operation
// requires a sessionID and none resolved from the explicit options or the
// ambient context.
type MissingSessionError struct {
	Operation string
}

func (e *MissingSessionError) Error() string {
	return fmt.Sprintf("rgs: %s requires a sessionID; pass one explicitly or supply it via the ambient context", e.Operation)
}

// MissingServerError is raised before any network call when an operation
// requires a server host and none resolved.
type MissingServerError struct {
	Operation string
}

func (e *MissingServerError) Error() string {
	return fmt.Sprintf("rgs: %s requires a server host; pass one explicitly or supply it via the ambient context", e.Operation)
}

// HTTPError represents a non-200 response from the RGS. Message is the
// best-effort error text: the body's "message" field when the body parses as
// JSON, otherwise the HTTP status line.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	return "rgs: " + e.Message
}

// newHTTPError builds an *HTTPError from a failed response, opportunistically
// extracting a message field from a JSON body.
func newHTTPError(statusCode int, status string, body []byte) *HTTPError {
	e := &HTTPError{
		StatusCode: statusCode,
		Status:     status,
		Body:       string(body),
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		e.Message = parsed.Message
		return e
	}

	if !strings.HasPrefix(status, "HTTP") {
		e.Message = "HTTP " + status
	} else {
		e.Message = status
	}
	return e
}
