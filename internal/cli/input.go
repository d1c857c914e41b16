package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ericfisherdev/reviewsync/internal/application"
	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// findingJSON is one entry of the findings file produced by the analysis
// pipeline. File and line are optional; both must be present for the finding
// to be eligible for an anchored comment.
type findingJSON struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Sticky  bool   `json:"sticky,omitempty"`
}

// findingsFile is the JSON document handed to `reviewsync sync --input`.
type findingsFile struct {
	Errors    []findingJSON `json:"errors"`
	Warnings  []findingJSON `json:"warnings"`
	Messages  []findingJSON `json:"messages"`
	Markdowns []findingJSON `json:"markdowns"`
}

// loadFindings reads a findings file into an UpdateRequest. Kinds are assigned
// from the slice each finding appears in.
func loadFindings(path string) (application.UpdateRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return application.UpdateRequest{}, fmt.Errorf("reading findings file: %w", err)
	}

	var file findingsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return application.UpdateRequest{}, fmt.Errorf("parsing findings file %s: %w", path, err)
	}

	return application.UpdateRequest{
		Errors:    toViolations(file.Errors, model.KindError),
		Warnings:  toViolations(file.Warnings, model.KindWarning),
		Messages:  toViolations(file.Messages, model.KindMessage),
		Markdowns: toViolations(file.Markdowns, model.KindMarkdown),
	}, nil
}

func toViolations(fs []findingJSON, kind model.Kind) []model.Violation {
	if len(fs) == 0 {
		return nil
	}
	vs := make([]model.Violation, len(fs))
	for i, f := range fs {
		vs[i] = model.Violation{
			Kind:    kind,
			Message: f.Message,
			File:    f.File,
			Line:    f.Line,
			Sticky:  f.Sticky,
		}
	}
	return vs
}
