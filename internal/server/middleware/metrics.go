package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/observability"
)

// HTTP metric names.
const (
	HTTPRequestsTotal     = "http_requests_total"
	HTTPRequestDurationMs = "http_request_duration_ms"
	HTTPRequestSizeBytes  = "http_request_size_bytes"
	HTTPResponseSizeBytes = "http_response_size_bytes"
	HTTPErrorsTotal       = "http_errors_total"
)

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.size += int64(n)
	return n, err
}

// getEndpointPattern returns the chi route pattern so metric labels stay
// low-cardinality (/v1/explain/{kind}, not /v1/explain/risk).
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch {
	case path == "/health" || strings.HasPrefix(path, "/health/"):
		return "/health/*"
	case path == "/version", path == "/metrics", path == "/":
		return path
	case path == "/v1/overview", path == "/v1/models", path == "/v1/prompts":
		return path
	case strings.HasPrefix(path, "/v1/explain/"):
		return "/v1/explain/{kind}"
	default:
		return "/unknown"
	}
}

func errorClass(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return ""
	}
}

// RequestMetrics records per-request counters, latency and sizes. It is a
// pass-through when telemetry is not initialized.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		system := observability.TelemetrySystem
		if system == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		endpoint := getEndpointPattern(r)
		status := strconv.Itoa(rec.status)
		requestSize := max(r.ContentLength, 0)

		labels := map[string]string{"method": r.Method, "endpoint": endpoint, "status": status}
		sizeLabels := map[string]string{"method": r.Method, "endpoint": endpoint}

		_ = system.Counter(HTTPRequestsTotal, 1, labels)
		_ = system.Histogram(HTTPRequestDurationMs, elapsed, labels)
		_ = system.Gauge(HTTPRequestSizeBytes, float64(requestSize), sizeLabels)
		_ = system.Gauge(HTTPResponseSizeBytes, float64(rec.size), sizeLabels)

		if class := errorClass(rec.status); class != "" {
			_ = system.Counter(HTTPErrorsTotal, 1, map[string]string{
				"method":     r.Method,
				"endpoint":   endpoint,
				"status":     status,
				"error_type": class,
			})
		}

		// Request IDs stay out of labels.
		if logger := observability.ServerLogger; logger != nil {
			logger.Debug("HTTP request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("endpoint", endpoint),
				zap.Int("status", rec.status),
				zap.Duration("duration", elapsed),
				zap.Int64("request_size", requestSize),
				zap.Int64("response_size", rec.size),
				zap.String("request_id", GetRequestID(r.Context())),
			)
		}
	})
}
