package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/driveguard/driveguard/internal/config"
	"github.com/driveguard/driveguard/internal/google"
	"github.com/driveguard/driveguard/internal/instrumentation"
	"github.com/driveguard/driveguard/internal/logging"
	"github.com/driveguard/driveguard/internal/server"
)

// startupTimeout bounds how long serve waits for a listener to come up
// before giving up.
const startupTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		configFile   string
		httpAddr     string
		metricsAddr  string
		noMetrics    bool
		rootFolderID string
		logLevel     string
		logFormat    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server that proxies uploads and folder operations
to Google Drive, confined to the configured root folder.

Configuration is read from a TOML file, overridden by environment
variables (DRIVEGUARD_* and GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET),
then by flags. The root folder ID and Google OAuth credentials are
required.

A Prometheus metrics endpoint is served on a dedicated port unless
disabled with --no-metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags win over file and environment.
			if cmd.Flags().Changed("http-addr") {
				cfg.Server.Addr = httpAddr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			if noMetrics {
				cfg.Metrics.Enabled = false
			}
			if rootFolderID != "" {
				cfg.Drive.RootFolderID = rootFolderID
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to the TOML configuration file")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "API server listen address. Can also use DRIVEGUARD_HTTP_ADDR env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server listen address. Can also use DRIVEGUARD_METRICS_ADDR env var.")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable the dedicated metrics server")
	cmd.Flags().StringVar(&rootFolderID, "root-folder-id", "", "Drive folder ID every operation is confined to. Can also use DRIVEGUARD_ROOT_FOLDER_ID env var.")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	return cmd
}

func runServe(cfg config.Config) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownTimeout); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm the metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(startupTimeout):
			return fmt.Errorf("metrics server startup timed out")
		}

		defer func() {
			shutdownTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownTimeout); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	auth, err := google.NewAuthenticator(google.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		TokenFile:    cfg.Google.TokenFile,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	var metrics *instrumentation.Metrics
	var audit *instrumentation.AuditLogger
	if provider.Enabled() {
		metrics = provider.Metrics()
		audit = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, cfg, auth, logger, metrics, audit)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	apiServer := server.NewAPIServer(serverContext)

	apiReady := make(chan struct{})
	apiErr := make(chan error, 1)
	go func() {
		if err := apiServer.StartWithReadySignal(apiReady); err != nil && err != http.ErrServerClosed {
			apiErr <- err
		}
		close(apiErr)
	}()

	select {
	case <-apiReady:
		logger.Info("api server started",
			"addr", apiServer.Addr(),
			"root_folder_id", cfg.Drive.RootFolderID)
	case err := <-apiErr:
		return fmt.Errorf("api server failed to start: %w", err)
	case <-time.After(startupTimeout):
		return fmt.Errorf("api server startup timed out")
	}

	// Block until a shutdown signal arrives or the server fails
	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-apiErr:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
	}

	shutdownTimeout, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := apiServer.Shutdown(shutdownTimeout); err != nil {
		return fmt.Errorf("api server shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
