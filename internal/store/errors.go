package store

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the store platform. The raw body is
// kept verbatim for the ledger and operator diagnosis.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store API request failed: %d - %s", e.StatusCode, e.Body)
}

func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) AuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Conflict reports a duplicate slug/name rejection on a create call.
func (e *APIError) Conflict() bool {
	if e.StatusCode == http.StatusConflict {
		return true
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "slug_in_use") ||
		strings.Contains(body, "duplicate") ||
		strings.Contains(body, "already exists")
}

func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.RateLimited()
}

func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Conflict()
}

func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.AuthFailure()
}
