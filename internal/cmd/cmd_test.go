package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/appid"
	"github.com/industrylens/industrylens/internal/config"
	"github.com/industrylens/industrylens/internal/core"
	"github.com/industrylens/industrylens/internal/observability"
	"github.com/industrylens/industrylens/internal/output"
	"github.com/industrylens/industrylens/internal/tables"
)

func resetConfigState(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY",
		"INDUSTRYLENS_AILINK_API_KEY",
		"INDUSTRYLENS_SESSION_MODEL",
		"INDUSTRYLENS_SESSION_TEMPERATURE",
		"INDUSTRYLENS_SESSION_MAX_TOKENS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v, err := config.New(appid.Get())
	require.NoError(t, err)
	settings = v
	appConfig = nil
	t.Cleanup(func() {
		settings = nil
		appConfig = nil
	})
}

func initTestLogger(t *testing.T) {
	t.Helper()
	observability.InitCLILogger(appid.BinaryName, false)
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("model", "", "")
	cmd.Flags().Float64("temperature", 0, "")
	cmd.Flags().Int("max-tokens", 0, "")
	cmd.Flags().String("format", "markdown", "")
	cmd.Flags().String("out", "", "")
	cmd.Flags().String("file", "", "")
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	resetConfigState(t)

	cfg, err := loadConfig(newFlagCommand())
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Session.Model)
	assert.Equal(t, 1.0, cfg.Session.Temperature)
	assert.Equal(t, 2000, cfg.Session.MaxTokens)
}

func TestLoadConfigOnlyChangedFlagsOverride(t *testing.T) {
	resetConfigState(t)

	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("model", "gpt-4"))
	require.NoError(t, cmd.Flags().Set("max-tokens", "500"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.Session.Model)
	assert.Equal(t, 500, cfg.Session.MaxTokens)
	// Unset temperature flag keeps the default rather than 0.
	assert.Equal(t, 1.0, cfg.Session.Temperature)
}

func TestLoadConfigRejectsOverCeiling(t *testing.T) {
	resetConfigState(t)

	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("max-tokens", "5000"))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Equal(t, foundry.ExitConfigInvalid, exitCodeFor(err))
}

func TestLoadConfigWithoutInitialization(t *testing.T) {
	settings = nil
	appConfig = nil

	_, err := loadConfig(newFlagCommand())
	require.Error(t, err)
}

func TestModelRowsMarksSessionModel(t *testing.T) {
	resetConfigState(t)

	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("model", "gpt-4"))
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	rows := modelRows(cfg)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, row.ID == "gpt-4", row.Default, row.ID)
	}
	assert.Equal(t, 8192, rows[2].MaxTokens)
	assert.InDelta(t, 0.06, rows[2].CompletionPrice, 1e-9)
}

func TestBuildAnalyzerRequiresAPIKey(t *testing.T) {
	resetConfigState(t)

	cfg, err := loadConfig(newFlagCommand())
	require.NoError(t, err)

	_, err = buildAnalyzer(cfg)
	require.ErrorIs(t, err, ailink.ErrMissingAPIKey)
	assert.Equal(t, foundry.ExitConfigInvalid, exitCodeFor(err))
}

func TestBuildAnalyzerWiresSession(t *testing.T) {
	resetConfigState(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := loadConfig(newFlagCommand())
	require.NoError(t, err)

	analyzer, err := buildAnalyzer(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", analyzer.Model)
	assert.Equal(t, 25, analyzer.MaxTitleLength)
	assert.NotNil(t, analyzer.Service)
	assert.NotNil(t, analyzer.Registry)
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want foundry.ExitCode
	}{
		{"invalid title", fmt.Errorf("%w: too long", core.ErrInvalidTitle), foundry.ExitFailure},
		{"decode", &tables.DecodeError{Offset: -1, Reason: "not an array"}, foundry.ExitFailure},
		{"rate limit", &driver.ProviderError{Provider: "openai", StatusCode: 429}, foundry.ExitExternalServiceUnavailable},
		{"upstream", &driver.ProviderError{Provider: "openai", StatusCode: 500}, foundry.ExitExternalServiceUnavailable},
		{"timeout", context.DeadlineExceeded, foundry.ExitExternalServiceUnavailable},
		{"missing key", ailink.ErrMissingAPIKey, foundry.ExitConfigInvalid},
		{"other", fmt.Errorf("boom"), foundry.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestReadTableInput(t *testing.T) {
	const table = `[{"Name":"P/E","Value":"21.4"}]`

	t.Run("inline", func(t *testing.T) {
		raw, err := readTableInput(newFlagCommand(), []string{table})
		require.NoError(t, err)
		assert.Equal(t, table, raw)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "table.json")
		require.NoError(t, os.WriteFile(path, []byte(table), 0o600))

		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Set("file", path))
		raw, err := readTableInput(cmd, nil)
		require.NoError(t, err)
		assert.Equal(t, table, raw)
	})

	t.Run("stdin", func(t *testing.T) {
		cmd := newFlagCommand()
		cmd.SetIn(strings.NewReader(table))
		raw, err := readTableInput(cmd, nil)
		require.NoError(t, err)
		assert.Equal(t, table, raw)
	})

	t.Run("file and inline", func(t *testing.T) {
		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Set("file", "table.json"))
		_, err := readTableInput(cmd, []string{table})
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Set("file", filepath.Join(t.TempDir(), "absent.json")))
		_, err := readTableInput(cmd, nil)
		require.Error(t, err)
	})
}

func TestWriteOutputStdout(t *testing.T) {
	cmd := newFlagCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, writeOutput(cmd, "hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestWriteOutputFile(t *testing.T) {
	resetConfigState(t)
	initTestLogger(t)

	path := filepath.Join(t.TempDir(), "nested", "overview.md")
	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("out", path))

	require.NoError(t, writeOutput(cmd, "#### Here are your results\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#### Here are your results\n", string(data))
}

func TestResolveOutputFormat(t *testing.T) {
	cmd := newFlagCommand()
	format, err := resolveOutputFormat(cmd)
	require.NoError(t, err)
	assert.Equal(t, output.FormatMarkdown, format)

	require.NoError(t, cmd.Flags().Set("format", "yaml"))
	_, err = resolveOutputFormat(cmd)
	require.Error(t, err)
}

func TestModelsCommandJSON(t *testing.T) {
	resetConfigState(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"models", "--format", "json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var rows []output.ModelRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "gpt-3.5-turbo", rows[0].ID)
	assert.True(t, rows[0].Default)
}

func TestVersionCommand(t *testing.T) {
	resetConfigState(t)
	SetVersionInfo("1.2.3", "abc123", "2026-10-19")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, appid.BinaryName+" 1.2.3\n", buf.String())
}

func TestMultiplesExampleUsesLayoutColumns(t *testing.T) {
	records, err := tables.Decode(multiplesExample)
	require.NoError(t, err)

	layout, err := tables.LayoutFor(tables.KindMultiples)
	require.NoError(t, err)
	known := make(map[string]bool, len(layout))
	for _, col := range layout {
		known[col.Field] = true
	}
	for field := range records[0] {
		assert.True(t, known[field], "field %q is not a multiples column", field)
	}
	assert.Contains(t, explainCmd.Long, multiplesExample)
}

func TestRunExplainReportsDecodeErrorBeforeConfig(t *testing.T) {
	settings = nil
	appConfig = nil

	cmd := newFlagCommand()
	err := runExplain(cmd, []string{"risk", "[{}]"})
	require.Error(t, err)

	var decodeErr *tables.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, foundry.ExitFailure, exitCodeFor(err))

	err = runExplain(cmd, []string{"risk", `[{"component":`})
	require.ErrorAs(t, err, &decodeErr)
}
