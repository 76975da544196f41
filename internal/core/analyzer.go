// Package core implements the application functions: the industry overview
// and the table explanations.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/parser"
	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/ailink/usage"
	"github.com/industrylens/industrylens/internal/tables"
)

// DefaultMaxTitleLength bounds industry titles when the analyzer has no
// explicit limit.
const DefaultMaxTitleLength = 25

// ExplanationHeading labels every table explanation.
const ExplanationHeading = "Explanation"

// ErrInvalidTitle is returned for empty or over-long industry titles.
var ErrInvalidTitle = errors.New("invalid industry title")

// ErrNotConfigured is returned when the analyzer lacks a gateway or registry.
var ErrNotConfigured = errors.New("analyzer not configured")

// Gateway executes rendered prompts.
type Gateway interface {
	Execute(ctx context.Context, inv ailink.Invocation) (*ailink.Execution, error)
	ExecuteBatch(ctx context.Context, invs []ailink.Invocation) (*ailink.BatchExecution, error)
}

// Analyzer runs the overview and explanation functions against a gateway.
type Analyzer struct {
	Service        Gateway
	Registry       prompt.Registry
	MaxTitleLength int
	// Model is reported in execution metadata.
	Model string
}

type explainTarget struct {
	slug     string
	variable string
	format   func([]tables.Record) string
}

var explainTargets = map[tables.Kind]explainTarget{
	tables.KindMultiples: {slug: prompt.SlugMultiplesTable, variable: prompt.VarMultiplesTable, format: tables.FormatMultiples},
	tables.KindRisk:      {slug: prompt.SlugRiskTable, variable: prompt.VarRiskTable, format: tables.FormatRisk},
	tables.KindBarriers:  {slug: prompt.SlugBarriersToEntry, variable: prompt.VarBarriersToEntry, format: tables.FormatBarriers},
}

// ValidateTitle trims title and checks it against the length limit.
func (a *Analyzer) ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidTitle)
	}
	limit := a.MaxTitleLength
	if limit <= 0 {
		limit = DefaultMaxTitleLength
	}
	if n := utf8.RuneCountInString(trimmed); n > limit {
		return "", fmt.Errorf("%w: %d characters exceeds the limit of %d", ErrInvalidTitle, n, limit)
	}
	return trimmed, nil
}

// Overview asks every overview question about title and returns the
// normalized answers in registry order.
func (a *Analyzer) Overview(ctx context.Context, title string) (*OverviewResult, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	title, err := a.ValidateTitle(title)
	if err != nil {
		return nil, err
	}

	entries := a.Registry.Group(prompt.GroupOverview)
	if len(entries) == 0 {
		return nil, errors.New("no overview prompts registered")
	}

	invs := make([]ailink.Invocation, len(entries))
	for i, entry := range entries {
		invs[i] = ailink.Invocation{
			Entry: entry,
			Vars:  map[string]string{prompt.VarIndustryTitle: title},
		}
	}

	batch, err := a.Service.ExecuteBatch(ctx, invs)
	if err != nil {
		return nil, fmt.Errorf("industry overview: %w", err)
	}
	if len(batch.Results) != len(entries) {
		return nil, fmt.Errorf("industry overview: got %d results for %d prompts", len(batch.Results), len(entries))
	}

	sections := make([]Section, len(entries))
	for i, entry := range entries {
		sections[i] = Section{
			Slug:     entry.Slug,
			Heading:  entry.Heading,
			Position: entry.Position,
			Result:   parser.Normalize(batch.Results[i], entry.Parser),
		}
	}

	return &OverviewResult{
		Title:    title,
		Sections: sections,
		Info:     a.info(batch.Elapsed, batch.Usage),
	}, nil
}

// Explain decodes raw as a table of kind, formats it and asks for an
// explanation. Decoding happens before any provider call.
func (a *Analyzer) Explain(ctx context.Context, kind tables.Kind, raw string) (*ExplanationResult, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	target, ok := explainTargets[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", tables.ErrUnknownKind, kind)
	}

	records, err := tables.Decode(raw)
	if err != nil {
		return nil, err
	}
	formatted := target.format(records)

	entry, err := a.Registry.Get(target.slug)
	if err != nil {
		return nil, err
	}

	exec, err := a.Service.Execute(ctx, ailink.Invocation{
		Entry: entry,
		Vars:  map[string]string{target.variable: formatted},
	})
	if err != nil {
		return nil, fmt.Errorf("explain %s table: %w", kind, err)
	}

	return &ExplanationResult{
		Kind:    kind,
		Heading: ExplanationHeading,
		Table:   formatted,
		Text:    parser.Normalize(exec.Text, entry.Parser).Text,
		Info:    a.info(exec.Elapsed, exec.Usage),
	}, nil
}

func (a *Analyzer) ready() error {
	if a == nil || a.Service == nil {
		return fmt.Errorf("%w: no generation service", ErrNotConfigured)
	}
	if a.Registry == nil {
		return fmt.Errorf("%w: no prompt registry", ErrNotConfigured)
	}
	return nil
}

func (a *Analyzer) info(elapsed time.Duration, summary usage.Summary) ExecutionInfo {
	return ExecutionInfo{
		ElapsedSeconds: elapsed.Seconds(),
		Model:          a.Model,
		Summary:        summary,
	}
}
