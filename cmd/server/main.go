package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/geoshooter/internal/api"
	"github.com/mcoot/geoshooter/internal/config"
	"github.com/mcoot/geoshooter/internal/factory"
	"github.com/mcoot/geoshooter/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "geoshooter-server [port]",
		Short: "Run the GPS shooter game server",
		Long: `Runs the game server. Clients connect over WebSocket on "/" or "/ws";
a read-only JSON API is served under /api/v1.

The port may be given as the only argument, overriding GEOSHOOTER_PORT.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var portArg string
	if len(args) == 1 {
		portArg = args[0]
	}
	settings, err := config.Load(portArg)
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.ConfigFromSettings(settings, logger))
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to release resources", slog.String("error", err.Error()))
		}
	}()

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = settings.Port
	server := api.NewServer(web.NewAppRouter(app, logger), serverConfig, logger)

	if err := server.Listen(); err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.Float64("range_meters", settings.RangeMeters),
		slog.Float64("alignment_tolerance_degrees", settings.AlignmentToleranceDegrees),
		slog.String("mirror", settings.Mirror))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Game connections are hijacked, so close them before net/http
		// waits on the rest
		app.GameController.Shutdown(context.Background())
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
