package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"katalog-produk/app"
	"katalog-produk/config"
)

type serveFlags struct {
	configFile string
	port       string
}

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web server",
		Long: `Start the HTTP catalog viewer. Products are loaded in the background right after
startup; the page shows the loading state until the first load completes.`,
		Example: `  # Serve with settings from .env and the environment
  katalog serve

  # Use a YAML config file and a different port
  katalog serve --config ./katalog.yaml --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "YAML config file (default $CONFIG_FILE)")
	cmd.Flags().StringVar(&flags.port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, flags *serveFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return err
	}
	if flags.port != "" {
		cfg.Port = flags.port
	}

	a, err := app.Initialize(ctx, &cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("⚠️  Error closing product store: %v", err)
		}
	}()

	a.Session.ReloadAsync(context.Background())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Addr())
		log.Printf("Catalog page: %s/", cfg.PublicBaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C) or SIGTERM
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server exited gracefully")
	return nil
}
