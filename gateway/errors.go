package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
)

// APIError is returned for any non-2xx backend response.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int
	// Detail is the backend's "detail" message, verbatim. Structured details
	// (validation errors) are kept as their raw JSON.
	Detail string
	// Body is the raw response body
	Body []byte

	login bool
}

// Error returns the backend detail unchanged so a UI can show it as is
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, text)
	}
	return fmt.Sprintf("request failed: %d", e.StatusCode)
}

// Is maps status codes onto the shared sentinel errors
func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrInvalidCredentials:
		return e.login && e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperrors.ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Detail:     parseDetail(body),
		Body:       body,
	}
}

func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	if string(payload.Detail) == "null" {
		return ""
	}
	return strings.TrimSpace(string(payload.Detail))
}
