package output

import (
	"fmt"
	"strings"

	"github.com/industrylens/industrylens/internal/ailink/parser"
	"github.com/industrylens/industrylens/internal/core"
)

const resultsHeading = "#### Here are your results"

// MarkdownFormatter renders results as Markdown sections.
type MarkdownFormatter struct{}

// FormatOverview renders one section per question, lists as bullets.
func (f *MarkdownFormatter) FormatOverview(result *core.OverviewResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(resultsHeading + "\n\n")
	sb.WriteString(executionInfoMarkdown(result.Info))

	for _, section := range result.Sections {
		sb.WriteString(fmt.Sprintf("\n##### %s\n\n", section.Heading))
		sb.WriteString(markdownResult(section.Result))
	}
	return sb.String(), nil
}

// FormatExplanation renders the explanation under a single heading.
func (f *MarkdownFormatter) FormatExplanation(result *core.ExplanationResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(resultsHeading + "\n\n")
	sb.WriteString(executionInfoMarkdown(result.Info))
	sb.WriteString(fmt.Sprintf("\n##### %s\n\n", result.Heading))
	sb.WriteString(strings.TrimRight(result.Text, "\n"))
	sb.WriteString("\n")
	return sb.String(), nil
}

func markdownResult(result parser.Result) string {
	if !result.List {
		return strings.TrimRight(result.Text, "\n") + "\n"
	}
	var sb strings.Builder
	for _, item := range result.Items {
		sb.WriteString("- " + parser.Capitalize(item) + "\n")
	}
	return sb.String()
}

func executionInfoMarkdown(info core.ExecutionInfo) string {
	var sb strings.Builder
	sb.WriteString(ElapsedLine(info) + "\n\n")
	sb.WriteString(fmt.Sprintf("Total Tokens: %d\n", info.TotalTokens))
	sb.WriteString(fmt.Sprintf("Prompt Tokens: %d\n", info.PromptTokens))
	sb.WriteString(fmt.Sprintf("Completion Tokens: %d\n", info.CompletionTokens))
	sb.WriteString(fmt.Sprintf("Total Cost: %s\n", CostText(info.TotalCost)))
	return sb.String()
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", "<br>")
}
