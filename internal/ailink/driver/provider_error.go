package driver

import (
	"fmt"
	"net/http"
)

// ProviderError is returned when a provider responds with a non-2xx status.
//
// Drivers should populate RawResponse with the provider response body bytes.
// RawResponse must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// Kind classifies the failure by status code.
func (e *ProviderError) Kind() string {
	if e == nil {
		return "unknown"
	}
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return "auth"
	case e.StatusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusGatewayTimeout:
		return "timeout"
	case e.StatusCode >= 500:
		return "unavailable"
	case e.StatusCode >= 400:
		return "bad_request"
	default:
		return "unknown"
	}
}
