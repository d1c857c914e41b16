package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewsync/internal/application"
	"github.com/ericfisherdev/reviewsync/internal/domain/model"
	"github.com/ericfisherdev/reviewsync/internal/render"
)

// NewPreviewCmd builds the preview command: render the summary comment body
// for a findings file without touching the remote. Useful for inspecting what
// a run would post.
func NewPreviewCmd() *cobra.Command {
	var inputPath string
	var dangerID string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the summary comment body for a findings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadFindings(inputPath)
			if err != nil {
				return err
			}

			set := model.NewViolationSet()
			for _, v := range collect(req) {
				set.Add(v)
			}

			body, err := render.Summary(set, nil, dangerID)
			if err != nil {
				return err
			}

			if asHTML {
				body = render.PreviewHTML(body)
			}

			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Findings JSON file (required)")
	cmd.Flags().StringVar(&dangerID, "danger-id", "reviewsync", "Marker id to embed")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Emit sanitized HTML instead of markdown")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("marking --input required: %v", err))
	}

	return cmd
}

func collect(req application.UpdateRequest) []model.Violation {
	var all []model.Violation
	all = append(all, req.Errors...)
	all = append(all, req.Warnings...)
	all = append(all, req.Messages...)
	all = append(all, req.Markdowns...)
	return all
}
