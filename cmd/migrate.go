package main

import (
	"github.com/shenikar/ghostnet/pkg/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Running database migrations...")
			if err := postgres.MigrateUp(cfg); err != nil {
				return err
			}
			log.Info("Database migrations applied successfully")
			return nil
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.WithField("steps", steps).Info("Rolling back database migrations...")
			if err := postgres.MigrateDown(cfg, steps); err != nil {
				return err
			}
			log.Info("Database migrations rolled back successfully")
			return nil
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}
