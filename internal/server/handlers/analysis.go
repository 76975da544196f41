package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/core"
	apperrors "github.com/industrylens/industrylens/internal/errors"
	"github.com/industrylens/industrylens/internal/metrics"
	"github.com/industrylens/industrylens/internal/output"
	"github.com/industrylens/industrylens/internal/tables"
)

// MaxBodyBytes bounds request bodies for the analysis endpoints.
const MaxBodyBytes = 1 << 20

// Analyzer runs the application functions.
type Analyzer interface {
	Overview(ctx context.Context, title string) (*core.OverviewResult, error)
	Explain(ctx context.Context, kind tables.Kind, raw string) (*core.ExplanationResult, error)
}

// AnalysisHandlers serves the /v1 endpoints.
type AnalysisHandlers struct {
	Analyzer  Analyzer
	ModelRows []output.ModelRow
	Registry  prompt.Registry
}

// OverviewRequest is the body of POST /v1/overview.
type OverviewRequest struct {
	Title string `json:"title"`
}

// ExplainRequest is the JSON-object form of POST /v1/explain/{kind}. The
// body may also be the table array itself.
type ExplainRequest struct {
	Table json.RawMessage `json:"table"`
}

// Overview handles POST /v1/overview.
func (h *AnalysisHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req OverviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.Wrap(r.Context(), apperrors.CodeInvalidInput, err, "request body must be a JSON object with a title"))
		metrics.RecordOperation("overview", false, time.Since(start))
		return
	}

	result, err := h.Analyzer.Overview(r.Context(), req.Title)
	metrics.RecordOperation("overview", err == nil, time.Since(start))
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	writeResult(w, r, result, func(f output.Formatter) (string, error) { return f.FormatOverview(result) })
}

// Explain handles POST /v1/explain/{kind}.
func (h *AnalysisHandlers) Explain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	operation := "explain"

	kind, err := tables.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	operation = "explain_" + string(kind)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(r.Context(), apperrors.CodeInvalidInput, err, "request body too large or unreadable"))
		metrics.RecordOperation(operation, false, time.Since(start))
		return
	}

	result, err := h.Analyzer.Explain(r.Context(), kind, tableText(body))
	metrics.RecordOperation(operation, err == nil, time.Since(start))
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	writeResult(w, r, result, func(f output.Formatter) (string, error) { return f.FormatExplanation(result) })
}

// Models handles GET /v1/models.
func (h *AnalysisHandlers) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ModelRows)
}

// Prompts handles GET /v1/prompts.
func (h *AnalysisHandlers) Prompts(w http.ResponseWriter, r *http.Request) {
	if h.Registry == nil {
		writeJSON(w, http.StatusOK, []output.PromptRow{})
		return
	}
	writeJSON(w, http.StatusOK, output.PromptRows(h.Registry.List()))
}

// tableText unwraps {"table": ...}. A table given as a JSON string is
// used verbatim; anything else is passed through for the decoder to judge.
func tableText(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	var req ExplainRequest
	if err := json.Unmarshal(body, &req); err != nil || len(req.Table) == 0 {
		return trimmed
	}
	var text string
	if err := json.Unmarshal(req.Table, &text); err == nil {
		return text
	}
	return string(req.Table)
}

// writeResult renders JSON unless ?format=markdown or ?format=table asks
// for the text renderings.
func writeResult(w http.ResponseWriter, r *http.Request, result any, render func(output.Formatter) (string, error)) {
	format, err := requestFormat(r)
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(r.Context(), apperrors.CodeInvalidInput, err, err.Error()))
		return
	}
	if format == output.FormatJSON {
		writeJSON(w, http.StatusOK, result)
		return
	}

	text, err := render(output.NewFormatter(format))
	if err != nil {
		respondWithError(w, r, fmt.Errorf("render %s: %w", format, err))
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == output.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func requestFormat(r *http.Request) (output.Format, error) {
	value := strings.TrimSpace(r.URL.Query().Get("format"))
	if value == "" {
		return output.FormatJSON, nil
	}
	return output.ParseFormat(value)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
