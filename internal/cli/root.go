// Package cli defines the ledger command line: the HTTP server and the
// maintenance commands that share its configuration and database.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/ledger/internal/config"
	"github.com/mrlokans/ledger/internal/logging"
)

// app carries what every command needs once the root has loaded it.
type app struct {
	cfg     *config.Config
	version string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running it without a subcommand starts the server.
func NewRootCommand(version, commit string) *cobra.Command {
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Invoices, bank statements and counterparties for a small business",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}

	rootCmd.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newCleanupBanksCommand(a),
		newPruneAuditCommand(a),
	)

	return rootCmd
}

func (a *app) load() error {
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup(cfg.Log)
	a.cfg = cfg
	return nil
}
