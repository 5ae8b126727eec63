package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/storefront/catalog-api/internal/pkg/config"
	"github.com/storefront/catalog-api/pkg/logger"
)

const serviceName = "catalog-api"

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "catalogd",
		Short:        "Catalog API server and administration tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is normal outside development.
			_ = godotenv.Load(envFile)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd(), newSeedRolesCmd(), newCreateAdminCmd())
	return root
}

// setup loads configuration and initialises the process logger.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})
	return cfg, log, nil
}
