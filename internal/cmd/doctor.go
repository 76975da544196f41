package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/content"
	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/appid"
	"github.com/industrylens/industrylens/internal/config"
	"github.com/industrylens/industrylens/internal/observability"
)

// doctorCheck is one diagnostic. ok=false marks the run as unhealthy;
// warn-only findings return ok=true with a message.
type doctorCheck struct {
	name string
	run  func(cmd *cobra.Command) (ok bool, detail string)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the installation and configuration and suggest fixes for common issues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := appid.Get().BinaryName
		logger := observability.CLILogger
		logger.Info("=== " + name + " doctor ===")
		logger.Info("")

		checks := doctorChecks()
		healthy := true
		for i, check := range checks {
			ok, detail := check.run(cmd)
			line := fmt.Sprintf("[%d/%d] Checking %s... ", i+1, len(checks), check.name)
			if ok {
				logger.Info(line+"✅ "+detail, zap.String("check", check.name))
				continue
			}
			healthy = false
			logger.Warn(line+"⚠️  "+detail, zap.String("check", check.name))
		}

		logger.Info("")
		if healthy {
			logger.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", name))
		} else {
			logger.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
		logger.Info("=== End Diagnostics ===")
		return nil
	},
}

var doctorForce bool

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath(appid.Get())
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}
		if _, err := os.Stat(configPath); err == nil && !doctorForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		return nil
	},
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if _, err := buildRegistry(cfg); err != nil {
			return err
		}
		source := "defaults"
		if settings != nil && settings.ConfigFileUsed() != "" {
			source = settings.ConfigFileUsed()
		}
		observability.CLILogger.Info("Config is valid", zap.String("source", source))
		return nil
	},
}

var doctorProviderTimeout time.Duration

var doctorProviderCmd = &cobra.Command{
	Use:   "provider",
	Short: "Send a minimal request to the configured provider",
	Long: `Send a one-line prompt to the configured provider with the session model
to verify credentials, base URL and model access. The request uses a handful
of tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		drv, err := ailink.NewDriver(cfg.AILink)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), doctorProviderTimeout)
		defer cancel()

		maxTokens := 5
		started := time.Now()
		resp, err := drv.Complete(ctx, &driver.Request{
			Model:      cfg.Session.Model,
			Messages:   []content.Message{content.TextMessage(content.RoleUser, "Reply with the single word: ok")},
			MaxTokens:  &maxTokens,
			PromptSlug: "doctor-provider",
		})
		elapsed := time.Since(started)
		if err != nil {
			return err
		}

		fields := []zap.Field{
			zap.String("provider", drv.Name()),
			zap.String("model", cfg.Session.Model),
			zap.Duration("elapsed", elapsed),
		}
		if resp.Usage != nil {
			fields = append(fields, zap.Int("total_tokens", resp.Usage.TotalTokens))
		}
		observability.CLILogger.Info(fmt.Sprintf("✅ Provider responded: %q", strings.TrimSpace(resp.Text())), fields...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorValidateCmd)
	doctorCmd.AddCommand(doctorProviderCmd)

	doctorInitCmd.Flags().BoolVar(&doctorForce, "force", false, "overwrite existing config file")
	doctorProviderCmd.Flags().DurationVar(&doctorProviderTimeout, "timeout", 30*time.Second, "request timeout")
}

func doctorChecks() []doctorCheck {
	return []doctorCheck{
		{name: "Go version", run: func(*cobra.Command) (bool, string) {
			return true, runtime.Version()
		}},
		{name: "Gofulmen/Crucible", run: func(*cobra.Command) (bool, string) {
			version := crucible.GetVersion()
			if version.Gofulmen == "" || version.Crucible == "" {
				return false, "cannot read library versions"
			}
			return true, fmt.Sprintf("gofulmen v%s, crucible v%s", version.Gofulmen, version.Crucible)
		}},
		{name: "config file", run: func(*cobra.Command) (bool, string) {
			if settings != nil && settings.ConfigFileUsed() != "" {
				return true, settings.ConfigFileUsed()
			}
			path := config.DefaultConfigPath(appid.Get())
			if path == "" {
				return false, "cannot resolve config directory"
			}
			return true, fmt.Sprintf("none (defaults in use; create %s with '%s doctor init')", path, appid.BinaryName)
		}},
		{name: "configuration", run: func(cmd *cobra.Command) (bool, string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return false, err.Error()
			}
			return true, fmt.Sprintf("model %s, temperature %.2f, max tokens %d", cfg.Session.Model, cfg.Session.Temperature, cfg.Session.MaxTokens)
		}},
		{name: "provider API key", run: func(cmd *cobra.Command) (bool, string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return false, "skipped (config not loaded)"
			}
			if strings.TrimSpace(cfg.AILink.APIKey) == "" {
				return false, fmt.Sprintf("not set (export %s or OPENAI_API_KEY)", appid.Get().EnvKey("AILINK_API_KEY"))
			}
			return true, "configured"
		}},
		{name: "prompts", run: func(cmd *cobra.Command) (bool, string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return false, "skipped (config not loaded)"
			}
			registry, err := buildRegistry(cfg)
			if err != nil {
				return false, err.Error()
			}
			overview := len(registry.Group(prompt.GroupOverview))
			table := len(registry.Group(prompt.GroupTable))
			detail := fmt.Sprintf("%d overview, %d table", overview, table)
			if cfg.AILink.PromptsDir != "" {
				detail += " (overrides from " + cfg.AILink.PromptsDir + ")"
			}
			return true, detail
		}},
	}
}

const defaultConfigTemplate = `# industrylens configuration
#
# Every key can also be set with an INDUSTRYLENS_* environment variable,
# e.g. INDUSTRYLENS_SESSION_MODEL=gpt-4.

ailink:
  provider: openai
  # api_key: prefer INDUSTRYLENS_AILINK_API_KEY or OPENAI_API_KEY
  default_timeout: 60s
  # prompts_dir: ~/.config/industrylens/prompts

session:
  model: gpt-3.5-turbo
  temperature: 1.0
  max_tokens: 2000
  dispatch: concurrent

input:
  max_title_length: 25

usage:
  # estimate_missing: counts tokens locally when the provider omits usage;
  # the first estimate downloads the tokenizer files.
  estimate_missing: false

logging:
  level: info
  profile: structured

server:
  host: localhost
  port: 8080

metrics:
  enabled: true
  port: 9090
`
