package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woxQAQ/template-css-lsp/internal/config"
	"github.com/woxQAQ/template-css-lsp/internal/lsp"
	"github.com/woxQAQ/template-css-lsp/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "template-css-lsp",
		Usage:   "Stylesheet completions inside tagged template literals",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				Sources: cli.EnvVars("TEMPLATE_CSS_LSP_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error); overrides the config file",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "TCP port to listen on (0 for stdio)",
				Value: 0,
			},
			&cli.StringSliceFlag{
				Name:  "tags",
				Usage: "template tags to complete in; overrides the config file",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Load configuration
	cfg, err := config.LoadServerConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if tags := cmd.StringSlice("tags"); len(tags) > 0 {
		cfg.Tags = tags
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting template-css-lsp",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:   "template-css-lsp",
		EnableMetrics: cfg.Telemetry.MetricsEnabled,
		EnableTraces:  cfg.Telemetry.TracesEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to flush telemetry", zap.Error(err))
		}
	}()

	// Initialize LSP server
	lsp.Version = version
	server, err := lsp.NewServer(ctx, cfg, logger, tel)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer server.Close(context.Background())

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Start server (stdio or TCP)
	if port := cmd.Int("port"); port > 0 {
		err = server.ServeTCP(ctx, port)
	} else {
		err = server.ServeStdio(ctx)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}

// newLogger builds a logger writing to stderr; stdout carries JSON-RPC.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	return zc.Build()
}
