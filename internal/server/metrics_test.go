package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/industrylens/industrylens/internal/errors"
	"github.com/industrylens/industrylens/internal/observability"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubMetricsUpstream(t *testing.T, status int, body string) {
	t.Helper()

	original := metricsProxyClient
	metricsProxyClient = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			resp := &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     http.Header{"Content-Type": []string{"text/plain; version=0.0.4"}},
			}
			return resp, nil
		}),
	}
	observability.PrometheusExporter = exporters.NewPrometheusExporter("industrylens", ":9090")
	t.Cleanup(func() {
		metricsProxyClient = original
		observability.PrometheusExporter = nil
	})
}

func TestMetricsHandlerProxiesExporter(t *testing.T) {
	stubMetricsUpstream(t, http.StatusOK,
		"# HELP industrylens_generation_calls_total Provider calls\nindustrylens_generation_calls_total 14\n")

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "industrylens_generation_calls_total 14")
}

func TestMetricsHandlerWithoutExporter(t *testing.T) {
	observability.PrometheusExporter = nil

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeServiceUnavailable, body.Error.Code)
}
