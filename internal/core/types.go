package core

import (
	"time"

	"github.com/industrylens/industrylens/internal/ailink/parser"
	"github.com/industrylens/industrylens/internal/ailink/usage"
	"github.com/industrylens/industrylens/internal/tables"
)

// ExecutionInfo is the metadata shown with every result.
type ExecutionInfo struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Model          string  `json:"model,omitempty"`
	usage.Summary
}

// Elapsed returns the elapsed time as a duration.
func (e ExecutionInfo) Elapsed() time.Duration {
	return time.Duration(e.ElapsedSeconds * float64(time.Second))
}

// Section is one answered overview question.
type Section struct {
	Slug     string        `json:"slug"`
	Heading  string        `json:"heading"`
	Position int           `json:"position"`
	Result   parser.Result `json:"result"`
}

// OverviewResult is the answer set for one industry, in registry order.
type OverviewResult struct {
	Title    string        `json:"title"`
	Sections []Section     `json:"sections"`
	Info     ExecutionInfo `json:"info"`
}

// ExplanationResult is the provider's explanation of one table.
type ExplanationResult struct {
	Kind    tables.Kind   `json:"kind"`
	Heading string        `json:"heading"`
	Table   string        `json:"table"`
	Text    string        `json:"text"`
	Info    ExecutionInfo `json:"info"`
}
