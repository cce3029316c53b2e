package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/database"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
	"github.com/mrlokans/ledger/internal/database/banks"
)

func newCleanupBanksCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup-banks",
		Short: "Remove banks that no longer have any statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := database.SharedProvider(a.cfg.Database)
			defer func() {
				if err := provider.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing database")
				}
			}()

			db, err := provider.Get()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			repo := banks.NewRepository(db.DB)
			out := cmd.OutOrStdout()

			if dryRun {
				counts, err := repo.StatementCounts(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range counts {
					if c.Statements == 0 {
						fmt.Fprintf(out, "would remove: %s\n", c.BankName)
					}
				}
				return nil
			}

			result, err := repo.CleanupAllOrphaned(cmd.Context())
			audit.NewRecorder(auditRepo.NewRepository(db.DB), audit.SourceCLI).
				BanksCleaned(cmd.Context(), "", result.RemovedBanks, err)
			if err != nil {
				return fmt.Errorf("cleaning up banks: %w", err)
			}
			for _, name := range result.RemovedBanks {
				fmt.Fprintf(out, "removed: %s\n", name)
			}
			fmt.Fprintf(out, "Removed %d orphaned bank(s)\n", result.RemovedCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the banks that would be removed without deleting them")

	return cmd
}
