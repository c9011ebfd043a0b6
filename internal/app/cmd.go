package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vinodjarare/shopgraph/internal/config"
	"github.com/vinodjarare/shopgraph/internal/logger"
)

// NewRootCmd builds the shopgraph command tree. Running it without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	var configFile string

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.LogLevel, cfg.LogFormat)
		return cfg, nil
	}

	serve := func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := New(ctx, cfg)
		if err != nil {
			return err
		}
		return a.Run(ctx)
	}

	root := &cobra.Command{
		Use:           "shopgraph",
		Short:         "GraphQL API for users and their product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (.env, yaml, json or toml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  serve,
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite migrations or create MongoDB indexes, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			log.Info().Msg("Store schema is up to date")
			return st.Close(cmd.Context())
		},
	})

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("shopgraph failed")
		os.Exit(1)
	}
}
