package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deskline/ticket-desk/internal/app"
	"github.com/deskline/ticket-desk/internal/config"
	"github.com/deskline/ticket-desk/internal/observability"
	"github.com/deskline/ticket-desk/internal/version"
)

// ServeCmd returns the command that runs the HTTP API.
func ServeCmd() *cobra.Command {
	var (
		port string
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ticket desk HTTP API",
		Long: `Start the HTTP API. Configuration comes from the environment and an
optional .env file; flags override the matching variables.

Examples:
  ticketdesk serve
  ticketdesk serve --port 9090 --seed=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.App.Port = port
			}
			if cmd.Flags().Changed("seed") {
				cfg.Tickets.SeedSampleData = seed
			}
			if cfg.App.Version == "dev" {
				cfg.App.Version = version.Version
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "HTTP port (overrides APP_PORT)")
	cmd.Flags().BoolVar(&seed, "seed", true, "load sample customers, agents and categories (overrides SEED_SAMPLE_DATA)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	desk, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer desk.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- desk.Fiber.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	return desk.Fiber.Shutdown()
}
