// Package cli wires the cobra command tree for the reviewsync binary.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "reviewsync",
		Short:         "Reconcile code-review findings against a pull request's comment thread",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(NewSyncCmd())
	root.AddCommand(NewPurgeCmd())
	root.AddCommand(NewPreviewCmd())
	root.AddCommand(NewHistoryCmd())

	return root
}
