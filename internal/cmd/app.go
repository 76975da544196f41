package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/ailink/usage"
	"github.com/industrylens/industrylens/internal/config"
	"github.com/industrylens/industrylens/internal/core"
	"github.com/industrylens/industrylens/internal/metrics"
	"github.com/industrylens/industrylens/internal/observability"
	"github.com/industrylens/industrylens/internal/output"
)

func buildRegistry(cfg *config.Config) (*prompt.InMemoryRegistry, error) {
	registry, err := prompt.NewRegistryWithOverrides(cfg.AILink.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return registry, nil
}

// buildAnalyzer wires the provider driver, the generation service and the
// prompt registry for one session.
func buildAnalyzer(cfg *config.Config) (*core.Analyzer, error) {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	session, err := cfg.SessionParams()
	if err != nil {
		return nil, err
	}

	drv, err := ailink.NewDriver(cfg.AILink)
	if err != nil {
		return nil, err
	}

	opts := []ailink.Option{
		ailink.WithPricing(cfg.Pricing()),
		ailink.WithObserver(observeCall),
	}
	if cfg.Usage.EstimateMissing {
		opts = append(opts, ailink.WithEstimator(usage.NewTokenEstimator()))
	}

	service, err := ailink.NewService(drv, session, opts...)
	if err != nil {
		return nil, err
	}

	return &core.Analyzer{
		Service:        service,
		Registry:       registry,
		MaxTitleLength: cfg.Input.MaxTitleLength,
		Model:          session.Model,
	}, nil
}

func observeCall(ev ailink.CallEvent) {
	metrics.ObserveCall(ev)

	logger := observability.Logger()
	if logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("prompt", ev.Slug),
		zap.String("model", ev.Model),
		zap.Duration("elapsed", ev.Elapsed),
	}
	if ev.Usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", ev.Usage.PromptTokens),
			zap.Int("completion_tokens", ev.Usage.CompletionTokens),
		)
	}
	if ev.Err != nil {
		logger.Debug("Provider call failed", append(fields, zap.Error(ev.Err))...)
		return
	}
	logger.Debug("Provider call completed", fields...)
}

func modelRows(cfg *config.Config) []output.ModelRow {
	rows := make([]output.ModelRow, 0, len(cfg.Models))
	for _, model := range cfg.Models {
		rows = append(rows, output.ModelRow{
			ID:              model.ID,
			Label:           model.Label,
			MaxTokens:       model.MaxTokens,
			PromptPrice:     model.Pricing.Prompt,
			CompletionPrice: model.Pricing.Completion,
			Default:         model.ID == cfg.Session.Model,
		})
	}
	return rows
}

func resolveOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

func openSink(path string) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: os.Stdout, close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

// writeOutput writes rendered text to --out, or stdout when unset.
func writeOutput(cmd *cobra.Command, rendered string) error {
	path, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	sink, err := openSink(path)
	if err != nil {
		return err
	}
	if sink.path == "-" {
		sink.writer = cmd.OutOrStdout()
	}

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	if _, err := io.WriteString(sink.writer, rendered); err != nil {
		_ = sink.close()
		return err
	}
	if err := sink.close(); err != nil {
		return err
	}
	if sink.path != "-" && observability.CLILogger != nil {
		observability.CLILogger.Info("Wrote output", zap.String("path", sink.path))
	}
	return nil
}
