package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/industrylens/industrylens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
)

// Formatter renders analyzer results.
type Formatter interface {
	FormatOverview(result *core.OverviewResult) (string, error)
	FormatExplanation(result *core.ExplanationResult) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatTable:
		return &TableFormatter{}
	default:
		return &MarkdownFormatter{}
	}
}

// FormatExecutionInfo renders the execution metadata block on its own.
func FormatExecutionInfo(format Format, info core.ExecutionInfo) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatTable:
		return executionInfoTable(info), nil
	default:
		return executionInfoMarkdown(info), nil
	}
}

// ElapsedLine is the elapsed-time sentence shown above results.
func ElapsedLine(info core.ExecutionInfo) string {
	return fmt.Sprintf("Executed in %.2f seconds.", info.ElapsedSeconds)
}

// CostText renders a USD cost with four decimals.
func CostText(cost float64) string {
	return fmt.Sprintf("$%.4f", cost)
}
