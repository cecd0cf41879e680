// Package migrate implements the `migrate` subcommand for schema management
// outside the server run loop.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"tessera/internal/infrastructure/config"
	"tessera/internal/infrastructure/database"
	"tessera/internal/infrastructure/migration"
	"tessera/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(newUpCommand())
	cmd.AddCommand(newDownCommand())
	cmd.AddCommand(newStatusCommand())

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			return strategy.Migrate(database.Get())
		},
	}
}

func newDownCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			return strategy.MigrateDown(database.Get(), steps)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			version, err := strategy.GetVersion(database.Get())
			if err != nil {
				return err
			}
			fmt.Printf("current version: %d\n", version)

			return strategy.Status(database.Get())
		},
	}
}

// setup loads config, the logger, and the database for a migration run.
func setup() (*migration.GooseStrategy, func(), error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, false); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cleanup := func() {
		database.Close()
	}

	return migration.NewGooseStrategy(logger.NewLogger()), cleanup, nil
}
