package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Command builds the command tree bound to a.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "kakeibo",
		Short: "Household expense book that works offline",
		Long: `kakeibo records household expenses in a local database and
synchronizes them with the summary server when it is reachable.

Records written while offline stay pending and are pushed by 'kakeibo sync'
or 'kakeibo watch'.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/kakeibo/config.yaml)")
	flags.String("db", "", "database path (default: $HOME/.config/kakeibo/kakeibo.db)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	root.AddCommand(
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.discardCmd(),
		a.pendingCmd(),
		a.listCmd(),
		a.summaryCmd(),
		a.syncCmd(),
		a.pullCmd(),
		a.purgeCmd(),
		a.watchCmd(),
		a.configureCmd(),
		a.backupCmd(),
		a.restoreCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// no store needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kakeibo %s\n", Version)
		},
	}
}
