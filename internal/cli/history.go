package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// NewHistoryCmd builds the history command: show recent reconcile passes from
// the local journal.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reconcile passes from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initApp()
			if err != nil {
				return err
			}
			defer app.close()

			if app.db == nil {
				return fmt.Errorf("journal disabled (REVIEWSYNC_DB_PATH is empty)")
			}

			passes, err := app.journal.RecentPasses(cmd.Context(), app.cfg.RepoFullName, app.cfg.PRNumber, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range passes {
				fmt.Fprintf(out, "%s %s#%d errors=%d warnings=%d messages=%d markdowns=%d inline=%v\n",
					p.StartedAt.Format("2006-01-02 15:04:05"),
					p.RepoFullName, p.PRNumber,
					p.Errors, p.Warnings, p.Messages, p.Markdowns, p.InlineSupport)
				for _, a := range p.Actions {
					fmt.Fprintf(out, "  %s %s\n", colorOp(a.Op), describeAction(a))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of passes to show")

	return cmd
}

func colorOp(op model.ActionOp) string {
	switch op {
	case model.ActionCreate:
		return color.GreenString(string(op))
	case model.ActionDelete:
		return color.RedString(string(op))
	case model.ActionResolve:
		return color.CyanString(string(op))
	case model.ActionSkip:
		return color.YellowString(string(op))
	default:
		return string(op)
	}
}

func describeAction(a model.ReconcileAction) string {
	target := a.CommentID
	if a.Path != "" {
		target = fmt.Sprintf("%s:%d", a.Path, a.Line)
	}
	if a.Error != "" {
		return fmt.Sprintf("%s (%s) failed: %s", target, a.Kind, a.Error)
	}
	if a.Kind != "" {
		return fmt.Sprintf("%s (%s)", target, a.Kind)
	}
	return target
}
