package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mrlokans/ledger/internal/database"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
)

func newPruneAuditCommand(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune-audit",
		Short: "Delete audit events older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				days = a.cfg.Audit.RetentionDays
			}

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

			cutoff := time.Now().AddDate(0, 0, -days)
			deleted, err := auditRepo.NewRepository(db.DB).DeleteOlderThan(cmd.Context(), cutoff)
			if err != nil {
				return fmt.Errorf("pruning audit events: %w", err)
			}
			log.Info().Int64("deleted", deleted).Int("retention_days", days).Msg("Pruned audit events")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d audit event(s) older than %d day(s)\n", deleted, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "retention in days (defaults to AUDIT_RETENTION_DAYS)")

	return cmd
}
