package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/appid"
	"github.com/industrylens/industrylens/internal/config"
	apperrors "github.com/industrylens/industrylens/internal/errors"
	"github.com/industrylens/industrylens/internal/observability"
)

var (
	cfgFile   string
	verbose   bool
	traceFile string

	// settings holds the layered configuration sources; appConfig is the
	// decoded, validated result.
	settings  *viper.Viper
	appConfig *config.Config

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   appid.BinaryName,
	Short: appid.Description,
	Long: fmt.Sprintf(`%s - %s

Run an industry overview with "overview <title>" or explain a financial table
with "explain multiples|risk|barriers". Provider credentials come from
INDUSTRYLENS_AILINK_API_KEY or OPENAI_API_KEY.`, appid.BinaryName, appid.Description),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Config loading must not print metrics; serve installs the real system.
	observability.DisableTelemetry()

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", appid.ConfigName))
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.StringVar(&traceFile, "trace", "", "trace provider requests/responses to NDJSON file")
	flags.String("model", "", "model ID from the catalog (see `models`)")
	flags.Float64("temperature", 0, "sampling temperature, 0 to 2")
	flags.Int("max-tokens", 0, "maximum completion tokens (bounded by the model ceiling)")
	flags.String("format", "markdown", "output format: markdown, table, json")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	identity := appid.Get()
	observability.InitCLILogger(identity.BinaryName, verbose)

	if traceFile != "" {
		// The tracer stays open for the life of the process.
		if _, err := driver.EnableTracing(traceFile); err != nil {
			observability.CLILogger.Warn("Failed to enable tracing", zap.Error(err))
		} else {
			observability.CLILogger.Debug("Provider tracing enabled", zap.String("file", traceFile))
		}
	}

	v, err := config.New(identity)
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to prepare configuration", err)
	}
	settings = v

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir := config.DefaultConfigDir(identity); dir != "" {
			v.AddConfigPath(dir)
		} else if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	} else {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to read config file", err)
	}
}

// loadConfig decodes the layered configuration with command-line overrides
// applied. Only flags the user actually set override other layers.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	if settings == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("model") {
		value, _ := flags.GetString("model")
		overrides["session.model"] = value
	}
	if flags.Changed("temperature") {
		value, _ := flags.GetFloat64("temperature")
		overrides["session.temperature"] = value
	}
	if flags.Changed("max-tokens") {
		value, _ := flags.GetInt("max-tokens")
		overrides["session.max_tokens"] = value
	}

	cfg, err := config.Load(settings, overrides)
	if err != nil {
		return nil, apperrors.Wrap(cmd.Context(), apperrors.CodeConfigInvalid, err, "invalid configuration: "+err.Error())
	}
	appConfig = cfg
	return cfg, nil
}
