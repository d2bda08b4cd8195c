package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kintreeapp/kintree/internal/server"
	"github.com/kintreeapp/kintree/pkg/config"
	"github.com/kintreeapp/kintree/pkg/store"
)

// newServeCmd creates the serve command for running the HTTP layout API.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP layout API",
		Long: `Start the HTTP layout API.

The server exposes the layout pipeline over HTTP: POST /v1/layout computes
a layout for a posted collection, and /v1/trees stores named collections
with their layouts. With a Mongo URI configured, stored trees survive
restarts; otherwise an in-memory store is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8460)")

	return cmd
}

// runServe wires up the runner and store and runs the server until the
// context is cancelled.
func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	runner, err := newRunner(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	var st store.Store
	if cfg.Store.URI != "" {
		st, err = store.NewMongoStore(ctx, cfg.Store.URI, cfg.Store.Database)
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		defer st.Close(context.Background())
		logger.Info("using mongo store", "database", cfg.Store.Database)
	} else {
		logger.Info("no store configured, trees will not survive restarts")
	}

	srv := server.New(cfg.Server.Addr, runner, st, logger)
	return srv.ListenAndServe(ctx)
}
