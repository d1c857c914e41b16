package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewPurgeCmd builds the purge command: best-effort deletion of every summary
// comment this tool authored on the configured pull request.
func NewPurgeCmd() *cobra.Command {
	var exceptID string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all summary comments authored by this tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initApp()
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.svc.DeleteAll(cmd.Context(), exceptID); err != nil {
				return err
			}

			color.Green("purged tool comments on %s#%d", app.cfg.RepoFullName, app.cfg.PRNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&exceptID, "except", "", "Comment id to keep")

	return cmd
}
