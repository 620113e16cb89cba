package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/partnerdash/gateway/internal/config"
	"github.com/partnerdash/gateway/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway",
		Long: `Start the gateway HTTP server.

Configuration precedence (highest to lowest):
  1. Command-line flags
  2. Environment variables (GATEWAY_*, double underscore between levels)
  3. Configuration file`,
		RunE: runServe,
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local development convenience; a missing .env is fine
	_ = godotenv.Load()

	configPath := configFile
	if configPath == "" {
		configPath = os.Getenv("GATEWAY_CONFIG")
	}
	if configPath == "" {
		configPath = "./configs/gateway.yaml"
	}

	loader, err := config.NewLoader(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := loader.Get()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	provider := config.NewProvider(cfg)
	logger := provider.Logger()

	proxyHandler, err := provider.ProxyHandler()
	if err != nil {
		return fmt.Errorf("failed to create proxy handler: %w", err)
	}

	syncHandler, err := provider.SyncHandler()
	if err != nil {
		return fmt.Errorf("failed to create sync handler: %w", err)
	}

	srv := server.New(server.Config{
		HTTPPort:     provider.HTTPPort(),
		ProxyHandler: proxyHandler,
		SyncHandler:  syncHandler,
		Logger:       logger,
	})

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	fmt.Println("gateway is running")
	fmt.Printf("  HTTP:    http://localhost:%d\n", provider.HTTPPort())
	fmt.Printf("  Proxy:   /api/proxy/{path}\n")
	fmt.Printf("  Config:  %s\n", configPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")

	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}

	fmt.Println("Shutdown complete")
	return nil
}
