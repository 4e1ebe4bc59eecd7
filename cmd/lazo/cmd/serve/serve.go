package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"lazo-pipeline/internal/app"
	"lazo-pipeline/internal/config"
)

var port string

func init() {
	Cmd.Flags().StringVarP(&port, "port", "p", "", "override LAZO_PORT")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session API and the background worker pool",
	Long: `Run the session API and the background worker pool.

Configuration comes from LAZO_* environment variables (or .env). Backend
credentials are read by the provider configuration, by default
~/.lazo/providers.yaml with ${VAR} expansion, falling back to built-in
defaults that reference GROQ_API_KEY, DEEPGRAM_API_KEY and GEMINI_API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if port != "" {
			cfg.Server.Port = port
		}

		apiKeys, err := config.GetAPIKeys()
		if err != nil {
			return err
		}
		if err := config.RequireStandardRoute(apiKeys); err != nil {
			return err
		}

		srv, cleanup, err := app.InitializeServer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		defer cleanup()

		errCh := make(chan error, 1)
		if err := srv.Start(errCh); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-quit:
		case err := <-errCh:
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Pool.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}
