package ailink

import (
	"context"
	"errors"
	"strings"

	"github.com/industrylens/industrylens/internal/ailink/driver"
)

// Failure is a provider error reduced to a stable code for callers that
// render errors (CLI, HTTP).
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ClassifyProviderError maps a generation error to a Failure. It returns
// nil for nil.
func ClassifyProviderError(err error) *Failure {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Code: "AILINK_PROVIDER_TIMEOUT", Message: "provider request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &Failure{Code: "AILINK_CANCELED", Message: "request canceled"}
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return &Failure{Code: "AILINK_PROVIDER_AUTH", Message: "provider api key is not configured"}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		details := strings.TrimSpace(perr.Message)
		switch perr.Kind() {
		case "auth":
			return &Failure{Code: "AILINK_PROVIDER_AUTH", Message: "provider authentication failed", Details: details}
		case "rate_limit":
			return &Failure{Code: "AILINK_PROVIDER_RATE_LIMIT", Message: "provider rate limited", Details: details}
		case "timeout":
			return &Failure{Code: "AILINK_PROVIDER_TIMEOUT", Message: "provider request timed out", Details: details}
		case "unavailable":
			return &Failure{Code: "AILINK_PROVIDER_UNAVAILABLE", Message: "provider unavailable", Details: details}
		case "bad_request":
			return &Failure{Code: "AILINK_PROVIDER_BAD_REQUEST", Message: "provider rejected request", Details: details}
		default:
			return &Failure{Code: "AILINK_PROVIDER_ERROR", Message: "provider request failed", Details: details}
		}
	}

	return &Failure{Code: "AILINK_PROVIDER_ERROR", Message: "provider request failed", Details: err.Error()}
}
