package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/content"
	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/ailink/parser"
	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/tables"
)

var plainAnswers = []string{
	"define", "focus", "evolve", "supply", "finance", "trends",
	"economy", "legal", "politics", "tech", "environment",
}

// scenarioRegistry has 13 overview prompts: 11 plain and 2 lists at
// positions 3 and 4.
func scenarioRegistry(t *testing.T) (*prompt.InMemoryRegistry, map[string]string) {
	t.Helper()

	answers := make(map[string]string)
	var entries []*prompt.Entry
	plain := 0
	for pos := 1; pos <= 13; pos++ {
		slug := fmt.Sprintf("question-%02d", pos)
		entry := &prompt.Entry{
			Slug:     slug,
			Heading:  fmt.Sprintf("Heading %d", pos),
			Group:    prompt.GroupOverview,
			Position: pos,
			Template: prompt.Template{
				System:            "system",
				User:              slug + " about {industry_title}",
				RequiredVariables: []string{prompt.VarIndustryTitle},
			},
		}
		if pos == 3 || pos == 4 {
			entry.Parser = parser.CommaList
			answers[slug] = "loc-a, loc-b"
		} else {
			answers[slug] = plainAnswers[plain]
			plain++
		}
		entries = append(entries, entry)
	}

	reg, err := prompt.NewRegistry(entries)
	require.NoError(t, err)
	return reg, answers
}

func scenarioDriver(answers map[string]string, calls *atomic.Int32, users *[]string) driver.Driver {
	return driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		n := calls.Add(1)
		if users != nil {
			*users = append(*users, req.Messages[len(req.Messages)-1].Content[0].Text)
		}
		return &driver.Response{
			Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: answers[req.PromptSlug]}},
			Usage:   &driver.Usage{PromptTokens: 10 + int(n), CompletionTokens: 5, TotalTokens: 15 + int(n)},
		}, nil
	})
}

func newAnalyzer(t *testing.T, drv driver.Driver, reg prompt.Registry, dispatch ailink.Dispatch) *Analyzer {
	t.Helper()
	svc, err := ailink.NewService(drv, ailink.Session{Model: "gpt-3.5-turbo", Temperature: 1, MaxTokens: 2000, Dispatch: dispatch})
	require.NoError(t, err)
	return &Analyzer{Service: svc, Registry: reg, Model: "gpt-3.5-turbo"}
}

func TestOverviewEndToEnd(t *testing.T) {
	for _, dispatch := range []ailink.Dispatch{ailink.DispatchSequential, ailink.DispatchConcurrent} {
		t.Run(string(dispatch), func(t *testing.T) {
			reg, answers := scenarioRegistry(t)
			var calls atomic.Int32
			analyzer := newAnalyzer(t, scenarioDriver(answers, &calls, nil), reg, dispatch)

			result, err := analyzer.Overview(context.Background(), "HR Consulting")
			require.NoError(t, err)
			require.Len(t, result.Sections, 13)
			assert.Equal(t, "HR Consulting", result.Title)

			plain := 0
			for i, section := range result.Sections {
				assert.Equal(t, i+1, section.Position)
				assert.Equal(t, fmt.Sprintf("Heading %d", i+1), section.Heading)
				if i == 2 || i == 3 {
					require.True(t, section.Result.List)
					assert.Equal(t, []string{"loc-a", "loc-b"}, section.Result.Items)
					continue
				}
				require.False(t, section.Result.List)
				assert.Equal(t, plainAnswers[plain], section.Result.Text)
				plain++
			}

			// Call n reports 10+n prompt tokens, so the totals are fixed
			// regardless of completion order.
			wantPrompt := 0
			for n := 1; n <= 13; n++ {
				wantPrompt += 10 + n
			}
			assert.Equal(t, int32(13), calls.Load())
			assert.Equal(t, wantPrompt, result.Info.PromptTokens)
			assert.Equal(t, 5*13, result.Info.CompletionTokens)
			assert.Equal(t, wantPrompt+5*13, result.Info.TotalTokens)
			assert.Equal(t, "gpt-3.5-turbo", result.Info.Model)
		})
	}
}

func TestOverviewBindsTitleIntoEveryPrompt(t *testing.T) {
	reg, answers := scenarioRegistry(t)
	var calls atomic.Int32
	var users []string
	analyzer := newAnalyzer(t, scenarioDriver(answers, &calls, &users), reg, ailink.DispatchSequential)

	_, err := analyzer.Overview(context.Background(), "  Dental Labs  ")
	require.NoError(t, err)
	require.Len(t, users, 13)
	for _, user := range users {
		assert.True(t, strings.HasSuffix(user, " about Dental Labs"), user)
	}
}

func TestOverviewWithDefaultRegistry(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	drv := driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		return &driver.Response{Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: "alpha, beta"}}}, nil
	})
	analyzer := newAnalyzer(t, drv, reg, ailink.DispatchConcurrent)

	result, err := analyzer.Overview(context.Background(), "HR Consulting")
	require.NoError(t, err)
	require.Len(t, result.Sections, 14)
	assert.Equal(t, "Definition", result.Sections[0].Heading)
	assert.Equal(t, "alpha, beta", result.Sections[0].Result.Text)
	assert.Equal(t, []string{"alpha", "beta"}, result.Sections[2].Result.Items)
}

func TestOverviewRejectsInvalidTitle(t *testing.T) {
	reg, answers := scenarioRegistry(t)
	var calls atomic.Int32
	analyzer := newAnalyzer(t, scenarioDriver(answers, &calls, nil), reg, ailink.DispatchConcurrent)

	for _, title := range []string{"", "   ", strings.Repeat("x", 26)} {
		_, err := analyzer.Overview(context.Background(), title)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTitle), "title %q", title)
	}
	assert.Zero(t, calls.Load())

	_, err := analyzer.Overview(context.Background(), strings.Repeat("é", 25))
	require.NoError(t, err)

	analyzer.MaxTitleLength = 5
	_, err = analyzer.Overview(context.Background(), "Banking")
	require.ErrorIs(t, err, ErrInvalidTitle)
}

func TestOverviewPropagatesProviderError(t *testing.T) {
	reg, _ := scenarioRegistry(t)
	drv := driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		return nil, &driver.ProviderError{Provider: "openai", StatusCode: 401, Message: "bad key"}
	})
	analyzer := newAnalyzer(t, drv, reg, ailink.DispatchConcurrent)

	result, err := analyzer.Overview(context.Background(), "Retail")
	require.Error(t, err)
	assert.Nil(t, result)

	var perr *driver.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 401, perr.StatusCode)
}

func TestExplainDecodeErrorMakesNoCalls(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	var calls atomic.Int32
	drv := driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		calls.Add(1)
		return &driver.Response{}, nil
	})
	analyzer := newAnalyzer(t, drv, reg, ailink.DispatchConcurrent)

	for _, kind := range tables.Kinds() {
		for _, raw := range []string{`{"multiple": "EV/EBITDA"`, `[]`, `[{}]`} {
			result, err := analyzer.Explain(context.Background(), kind, raw)
			require.Error(t, err)
			assert.Nil(t, result)

			var decodeErr *tables.DecodeError
			assert.True(t, errors.As(err, &decodeErr), "kind %s input %s: got %T", kind, raw, err)
		}
	}
	assert.Zero(t, calls.Load())
}

func TestExplainRendersTableIntoPrompt(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	var gotUser, gotSlug string
	drv := driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		gotSlug = req.PromptSlug
		gotUser = req.Messages[len(req.Messages)-1].Content[0].Text
		return &driver.Response{
			Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: "Market risk is elevated."}},
			Usage:   &driver.Usage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
		}, nil
	})
	analyzer := newAnalyzer(t, drv, reg, ailink.DispatchConcurrent)

	result, err := analyzer.Explain(context.Background(), tables.KindRisk, `[{"component": "Market", "level": "High"}]`)
	require.NoError(t, err)

	assert.Equal(t, prompt.SlugRiskTable, gotSlug)
	assert.Contains(t, gotUser, ">>>\n"+result.Table+"\n<<<")
	assert.Contains(t, result.Table, "Market")
	assert.Equal(t, "Market risk is elevated.", result.Text)
	assert.Equal(t, ExplanationHeading, result.Heading)
	assert.Equal(t, tables.KindRisk, result.Kind)
	assert.Equal(t, 140, result.Info.TotalTokens)
}

func TestExplainUnknownKind(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)
	analyzer := newAnalyzer(t, driver.Func(func(ctx context.Context, req *driver.Request) (*driver.Response, error) {
		return &driver.Response{}, nil
	}), reg, ailink.DispatchConcurrent)

	_, err = analyzer.Explain(context.Background(), "weather", "[]")
	require.ErrorIs(t, err, tables.ErrUnknownKind)
}

func TestAnalyzerNotConfigured(t *testing.T) {
	var analyzer *Analyzer
	_, err := analyzer.Overview(context.Background(), "Retail")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = (&Analyzer{}).Explain(context.Background(), tables.KindRisk, "[]")
	require.ErrorIs(t, err, ErrNotConfigured)
}
