package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewSyncCmd builds the sync command: one reconciliation pass against the
// configured pull request.
func NewSyncCmd() *cobra.Command {
	var inputPath string
	var newComment bool
	var removePrevious bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a findings file against the PR's comment thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initApp()
			if err != nil {
				return err
			}
			defer app.close()

			req, err := loadFindings(inputPath)
			if err != nil {
				return err
			}
			req.NewComment = newComment
			req.RemovePrevious = removePrevious

			if err := app.svc.Update(cmd.Context(), req); err != nil {
				return err
			}

			total := len(req.Errors) + len(req.Warnings) + len(req.Messages) + len(req.Markdowns)
			color.Green("reconciled %d finding(s) against %s#%d",
				total, app.cfg.RepoFullName, app.cfg.PRNumber)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Findings JSON file (required)")
	cmd.Flags().BoolVar(&newComment, "new-comment", false, "Post a fresh summary comment instead of updating the previous one")
	cmd.Flags().BoolVar(&removePrevious, "remove-previous", false, "Delete the previous summary comment before posting")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("marking --input required: %v", err))
	}

	return cmd
}
