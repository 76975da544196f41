package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/industrylens/industrylens/internal/ailink/parser"
	"github.com/industrylens/industrylens/internal/core"
)

const answerWidth = 80

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatOverview renders a heading/answer table after the metadata table.
func (f *TableFormatter) FormatOverview(result *core.OverviewResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: answerWidth}})
	t.AppendHeader(table.Row{"Section", "Answer"})
	for _, section := range result.Sections {
		t.AppendRow(table.Row{section.Heading, tableResult(section.Result)})
	}
	t.AppendFooter(table.Row{result.Title, fmt.Sprintf("%d sections", len(result.Sections))})

	return executionInfoTable(result.Info) + "\n" + t.Render(), nil
}

// FormatExplanation renders the explanation in a single-column table.
func (f *TableFormatter) FormatExplanation(result *core.ExplanationResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, WidthMax: answerWidth}})
	t.AppendHeader(table.Row{result.Heading})
	t.AppendRow(table.Row{strings.TrimSpace(result.Text)})

	return executionInfoTable(result.Info) + "\n" + t.Render(), nil
}

func tableResult(result parser.Result) string {
	if !result.List {
		return strings.TrimSpace(result.Text)
	}
	lines := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		lines = append(lines, "- "+parser.Capitalize(item))
	}
	return strings.Join(lines, "\n")
}

func executionInfoTable(info core.ExecutionInfo) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Elapsed", fmt.Sprintf("%.2f s", info.ElapsedSeconds)},
		{"Total Tokens", info.TotalTokens},
		{"Prompt Tokens", info.PromptTokens},
		{"Completion Tokens", info.CompletionTokens},
		{"Total Cost", CostText(info.TotalCost)},
	})
	if info.Model != "" {
		t.AppendRow(table.Row{"Model", info.Model})
	}
	return t.Render()
}
