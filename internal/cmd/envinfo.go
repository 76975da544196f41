package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/appid"
	"github.com/industrylens/industrylens/internal/config"
	"github.com/industrylens/industrylens/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.CLILogger
		version := crucible.GetVersion()
		identity := appid.Get()

		logger.Info("=== Environment Information ===")
		logger.Info("")

		logger.Info("Application:")
		logger.Info("  Name:       " + identity.BinaryName)
		logger.Info("  Version:    " + versionInfo.Version)
		logger.Info("  Commit:     " + versionInfo.Commit)
		logger.Info("  Built:      " + versionInfo.BuildDate)
		logger.Info("")

		logger.Info("SSOT:")
		logger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		logger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		logger.Info("")

		logger.Info("Runtime:")
		logger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		logger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		logger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		logger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		logger.Info("")

		cfg, err := loadConfig(cmd)
		if err != nil {
			logger.Warn("Config load failed", zap.Error(err))
			return nil
		}

		configFile := config.DefaultConfigPath(identity)
		if settings != nil && settings.ConfigFileUsed() != "" {
			configFile = settings.ConfigFileUsed()
		}

		logger.Info("Configuration:")
		logger.Info("  Config File:    "+configFile, zap.String("config_file", configFile))
		logger.Info("  Env Prefix:     "+identity.EnvPrefix+"_", zap.String("env_prefix", identity.EnvPrefix))
		logger.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		logger.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		logger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		logger.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		logger.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		logger.Info("")

		logger.Info("Session:")
		logger.Info("  Model:          "+cfg.Session.Model, zap.String("model", cfg.Session.Model))
		logger.Info(fmt.Sprintf("  Temperature:    %.2f", cfg.Session.Temperature))
		logger.Info(fmt.Sprintf("  Max Tokens:     %d", cfg.Session.MaxTokens))
		logger.Info("  Dispatch:       " + cfg.Session.Dispatch)
		logger.Info(fmt.Sprintf("  Title Limit:    %d characters", cfg.Input.MaxTitleLength))
		logger.Info(fmt.Sprintf("  Estimate Usage: %t", cfg.Usage.EstimateMissing))
		logger.Info("")

		logger.Info("AILink:")
		logger.Info("  Provider:        " + cfg.AILink.Provider)
		baseURL := cfg.AILink.BaseURL
		if strings.TrimSpace(baseURL) == "" {
			baseURL = "(provider default)"
		}
		logger.Info("  Base URL:        " + baseURL)
		logger.Info("  Default Timeout: " + cfg.AILink.DefaultTimeout.String())
		if strings.TrimSpace(cfg.AILink.APIKey) != "" {
			logger.Info("  API Key:         (set)")
		} else {
			logger.Info("  API Key:         (not set)")
		}
		if cfg.AILink.PromptsDir != "" {
			logger.Info("  Prompts Dir:     " + cfg.AILink.PromptsDir)
		}
		logger.Info("")

		logger.Info("=== End Environment Information ===")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
