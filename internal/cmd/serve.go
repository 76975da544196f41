package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/appid"
	"github.com/industrylens/industrylens/internal/config"
	"github.com/industrylens/industrylens/internal/core"
	apperrors "github.com/industrylens/industrylens/internal/errors"
	"github.com/industrylens/industrylens/internal/metrics"
	"github.com/industrylens/industrylens/internal/observability"
	"github.com/industrylens/industrylens/internal/server"
	"github.com/industrylens/industrylens/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Endpoints:
  POST /v1/overview            {"title": "..."}
  POST /v1/explain/{kind}      table JSON array
  GET  /v1/models, /v1/prompts
  GET  /health, /health/live, /health/ready, /version, /metrics

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read the config file (restart to apply new settings)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "server host (default from server.host)")
	serveCmd.Flags().IntP("port", "p", 0, "server port (default from server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)

	identity := appid.Get()
	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, cfg.Logging.Profile)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return apperrors.Wrap(cmd.Context(), apperrors.CodeInternal, err, "metrics initialization failed")
		}
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return apperrors.Wrap(cmd.Context(), apperrors.CodeConfigInvalid, err, "prompt registry failed to load")
	}

	analyzer, err := buildAnalyzer(cfg)
	if errors.Is(err, ailink.ErrMissingAPIKey) {
		// Serve catalog and health routes; analysis requests report 503.
		logger.Warn("No provider API key configured; analysis endpoints are unavailable")
		analyzer = &core.Analyzer{Registry: registry, MaxTitleLength: cfg.Input.MaxTitleLength}
	} else if err != nil {
		return err
	}

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("model", cfg.Session.Model),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Int("metrics_port", observability.GetMetricsPort()))

	health := handlers.NewHealthManager(versionInfo.Version)
	registerHealthCheckers(health, cfg, analyzer)

	srv := server.New(server.Options{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Health:       health,
		API: &handlers.AnalysisHandlers{
			Analyzer:  analyzer,
			ModelRows: modelRows(cfg),
			Registry:  registry,
		},
	})

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Shutdown handlers run LIFO: the HTTP server stops before the logger flushes.
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			// Sync errors are often benign (stdout/stderr already closed)
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server shutdown failed")
		}

		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: re-reading config file")
		if err := reloadConfigFile(); err != nil {
			logger.Error("Config reload failed", zap.Error(err))
			return apperrors.Wrap(ctx, apperrors.CodeConfigInvalid, err, "config reload failed")
		}
		logger.Info("Configuration is valid; restart to apply changes",
			zap.String("file", settings.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	started := time.Now()
	metrics.SetServerStartTime(started.Unix())
	go trackUptime(cmd.Context(), started)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...", zap.String("addr", srv.Addr()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(cmd.Context()); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return apperrors.Wrap(cmd.Context(), apperrors.CodeInternal, err, "server error")
	}
	return nil
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
}

func registerHealthCheckers(health *handlers.HealthManager, cfg *config.Config, analyzer *core.Analyzer) {
	health.RegisterChecker("provider", handlers.CheckerFunc(func(ctx context.Context) error {
		if analyzer == nil || analyzer.Service == nil {
			return apperrors.NewServiceUnavailableError("provider API key not configured")
		}
		return nil
	}))
	health.RegisterChecker("prompts", handlers.CheckerFunc(func(ctx context.Context) error {
		if analyzer == nil || analyzer.Registry == nil || len(analyzer.Registry.List()) == 0 {
			return apperrors.NewInternalError("prompt registry is empty")
		}
		return nil
	}))
	if cfg.Metrics.Enabled {
		health.RegisterChecker("telemetry", handlers.CheckerFunc(func(ctx context.Context) error {
			if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
				return apperrors.NewInternalError("telemetry system not initialized")
			}
			return nil
		}))
	}
}

// reloadConfigFile re-reads the config file and validates the result. The
// running server keeps the analyzer it was started with.
func reloadConfigFile() error {
	if settings == nil {
		return errors.New("configuration not initialized")
	}
	if err := settings.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	_, err := config.Load(settings)
	return err
}

func trackUptime(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			metrics.SetServerUptime(int64(now.Sub(started).Seconds()))
		}
	}
}
