package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

var (
	// CLILogger is used for CLI commands (SIMPLE profile)
	CLILogger *logging.Logger

	// ServerLogger is used for HTTP server (STRUCTURED profile)
	ServerLogger *logging.Logger
)

// Logging profiles accepted in config.
const (
	ProfileSimple     = "simple"
	ProfileStructured = "structured"
)

// InitCLILogger initializes the CLI logger with SIMPLE profile
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}

	if verbose {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// InitServerLogger initializes the server logger. The simple profile reuses
// the CLI console logger; anything else emits JSON lines on stderr.
func InitServerLogger(serviceName, level, profile string) {
	if strings.EqualFold(strings.TrimSpace(profile), ProfileSimple) {
		logger, err := logging.NewCLI(serviceName)
		if err != nil {
			exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
		}
		if parseLogLevel(level) == "DEBUG" || parseLogLevel(level) == "TRACE" {
			logger.SetLevel(logging.DEBUG)
		}
		ServerLogger = logger
		return
	}

	logger, err := logging.New(structuredConfig(serviceName, level))
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

// Logger returns the server logger when the service is running and the CLI
// logger otherwise. It may return nil before either is initialized.
func Logger() *logging.Logger {
	if ServerLogger != nil {
		return ServerLogger
	}
	return CLILogger
}

func structuredConfig(serviceName, level string) *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(level),
		Service:      serviceName,
		Environment:  environment(),
		StaticFields: map[string]any{"component": "server"},
		Middleware: []logging.MiddlewareConfig{
			{
				Name:    "correlation",
				Enabled: true,
				Order:   100,
				Config:  make(map[string]any),
			},
		},
		Sinks: []logging.SinkConfig{
			{
				Type:   "console",
				Format: "json",
				Console: &logging.ConsoleSinkConfig{
					Stream:   "stderr",
					Colorize: false,
				},
			},
		},
		EnableCaller:     true,
		EnableStacktrace: true,
	}
}

func environment() string {
	if env := strings.TrimSpace(os.Getenv("INDUSTRYLENS_ENV")); env != "" {
		return env
	}
	return "production"
}

// parseLogLevel converts string log level to logging severity string
func parseLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// exitWithCodeStderr is used when the logger itself cannot be built.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}
	os.Exit(int(exitCode))
}
