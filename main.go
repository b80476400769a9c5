package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/upslink/internal/server"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "upslink",
	Short:   "UPS shipping client - rates, shipments, labels and tracking",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(connection.flagSet())
	rootCmd.AddCommand(serveCmd, quoteCmd, shipCmd, labelCmd, trackCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	// Initialize shipper registry with all carriers
	registry := initShipperRegistry(cfg, logger)

	logger.Info("Starting upslink",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	srv := server.New(server.Config{Port: cfg.Port}, registry, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
