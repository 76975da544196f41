package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/content"
	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/core"
	apperrors "github.com/industrylens/industrylens/internal/errors"
	"github.com/industrylens/industrylens/internal/server/handlers"
)

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New(Options{Host: "127.0.0.1"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
	assert.Equal(t, body.Error.RequestID, rec.Header().Get("X-Request-ID"))
}

func TestServerWithoutAPIHasNoV1Routes(t *testing.T) {
	srv := New(Options{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerMethodNotAllowed(t *testing.T) {
	srv := New(Options{API: &handlers.AnalysisHandlers{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/overview", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeMethodNotAllowed, body.Error.Code)
}

// The overview endpoint runs the full stack: registry, gateway and parser,
// with the provider replaced by a function driver.
func TestServerOverviewEndToEnd(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	drv := driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		text := "answer for " + req.PromptSlug
		if strings.Contains(req.Messages[len(req.Messages)-1].Content[0].Text, "comma separated") {
			text = "alpha, beta"
		}
		return &driver.Response{
			Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: text}},
			Usage:   &driver.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}, nil
	})
	svc, err := ailink.NewService(drv, ailink.Session{Model: "gpt-4", Temperature: 1, MaxTokens: 2000})
	require.NoError(t, err)

	srv := New(Options{API: &handlers.AnalysisHandlers{
		Analyzer: &core.Analyzer{Service: svc, Registry: reg, Model: "gpt-4"},
		Registry: reg,
	}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/overview", strings.NewReader(`{"title":"Retail"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result core.OverviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Sections, 14)
	assert.Equal(t, "Retail", result.Title)
	assert.Equal(t, 14*15, result.Info.TotalTokens)

	lists := 0
	for _, section := range result.Sections {
		if section.Result.List {
			lists++
			assert.Equal(t, []string{"alpha", "beta"}, section.Result.Items)
		}
	}
	assert.Equal(t, 3, lists)
}

func TestServerExplainDecodeFailure(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	calls := 0
	drv := driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		calls++
		return &driver.Response{}, nil
	})
	svc, err := ailink.NewService(drv, ailink.Session{Model: "gpt-4", Temperature: 1, MaxTokens: 2000})
	require.NoError(t, err)

	srv := New(Options{API: &handlers.AnalysisHandlers{
		Analyzer: &core.Analyzer{Service: svc, Registry: reg},
	}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/explain/risk", strings.NewReader(`[{"component":`)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, calls)
}
