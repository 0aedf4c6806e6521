package main

import (
	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/authservice/store/postgres"
)

type migrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres users schema",
		Long:  `Apply or roll back the embedded migrations against DATABASE_URL.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, "up", (*postgres.Migrator).Up)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops the users table)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, "down", (*postgres.Migrator).Down)
		},
	})

	return cmd
}

func runMigration(cmd *cobra.Command, direction string, apply func(*postgres.Migrator) error) error {
	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "parse env").Wrap(err)
	}

	migrator, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	cmd.Printf("Running migrations %s...\n", direction)
	if err := apply(migrator); err != nil {
		return oops.Code("MIGRATION_FAILED").With("direction", direction).Wrap(err)
	}

	v, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Schema version %d (dirty: %t)\n", v, dirty)
	return nil
}
