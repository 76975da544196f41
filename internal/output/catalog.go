package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/industrylens/industrylens/internal/ailink/prompt"
)

// ModelRow describes one selectable model.
type ModelRow struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	MaxTokens       int     `json:"max_tokens"`
	PromptPrice     float64 `json:"prompt_price_per_1k"`
	CompletionPrice float64 `json:"completion_price_per_1k"`
	Default         bool    `json:"default"`
}

// PromptRow describes one registered prompt.
type PromptRow struct {
	Slug     string `json:"slug"`
	Group    string `json:"group"`
	Position int    `json:"position,omitempty"`
	Heading  string `json:"heading"`
	Parser   string `json:"parser"`
	Variable string `json:"variable"`
}

// PromptRows converts registry entries for display.
func PromptRows(entries []*prompt.Entry) []PromptRow {
	rows := make([]PromptRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, PromptRow{
			Slug:     entry.Slug,
			Group:    entry.Group,
			Position: entry.Position,
			Heading:  entry.Heading,
			Parser:   entry.Parser.String(),
			Variable: entry.PrimaryVariable(),
		})
	}
	return rows
}

// FormatModels renders the model catalog.
func FormatModels(format Format, rows []ModelRow) (string, error) {
	if format == FormatJSON {
		return marshalIndent(rows)
	}
	if format == FormatMarkdown {
		var sb strings.Builder
		sb.WriteString("| Model | Label | Max Tokens | Prompt $/1K | Completion $/1K |\n")
		sb.WriteString("|-------|-------|------------|-------------|-----------------|\n")
		for _, row := range rows {
			id := row.ID
			if row.Default {
				id += " (default)"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.4f | %.4f |\n",
				escapeMarkdownCell(id), escapeMarkdownCell(row.Label), row.MaxTokens, row.PromptPrice, row.CompletionPrice))
		}
		return sb.String(), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Model", "Label", "Max Tokens", "Prompt $/1K", "Completion $/1K", "Default"})
	for _, row := range rows {
		def := ""
		if row.Default {
			def = "*"
		}
		t.AppendRow(table.Row{row.ID, row.Label, row.MaxTokens, fmt.Sprintf("%.4f", row.PromptPrice), fmt.Sprintf("%.4f", row.CompletionPrice), def})
	}
	return t.Render(), nil
}

// FormatPrompts renders the prompt registry.
func FormatPrompts(format Format, rows []PromptRow) (string, error) {
	if format == FormatJSON {
		return marshalIndent(rows)
	}
	if format == FormatMarkdown {
		var sb strings.Builder
		sb.WriteString("| # | Slug | Group | Heading | Parser | Variable |\n")
		sb.WriteString("|---|------|-------|---------|--------|----------|\n")
		for _, row := range rows {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				positionText(row.Position), escapeMarkdownCell(row.Slug), escapeMarkdownCell(row.Group),
				escapeMarkdownCell(row.Heading), row.Parser, row.Variable))
		}
		return sb.String(), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Slug", "Group", "Heading", "Parser", "Variable"})
	for _, row := range rows {
		t.AppendRow(table.Row{positionText(row.Position), row.Slug, row.Group, row.Heading, row.Parser, row.Variable})
	}
	return t.Render(), nil
}

func positionText(position int) string {
	if position <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", position)
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
