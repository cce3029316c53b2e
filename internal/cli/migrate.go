package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mrlokans/ledger/internal/database"
)

func newMigrateCommand(a *app) *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := database.SharedProvider(a.cfg.Database)
			defer func() {
				if err := provider.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing database")
				}
			}()

			// Opening the shared handle applies every pending migration.
			db, err := provider.Get()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			if rollback {
				if err := database.RollbackLast(db.DB); err != nil {
					return fmt.Errorf("rolling back: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the last migration")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the most recent migration after migrating")

	return cmd
}
