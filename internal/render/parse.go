package render

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// Parse recovers the unresolved violation state embedded in a previously
// rendered body. Entries that were rendered as resolved are dropped: they have
// already been surfaced and must not resurface as live findings. Bodies
// without a state blob yield an empty set and no error, so hand-written
// comments that merely quote a marker parse harmlessly.
func Parse(body string) (model.ViolationSet, error) {
	set := model.NewViolationSet()

	entries, err := parseEntries(body)
	if err != nil {
		return set, err
	}

	for _, e := range entries {
		if e.Resolved {
			continue
		}
		set.Add(model.Violation{
			Kind:    e.Kind,
			Message: e.Message,
			File:    e.File,
			Line:    e.Line,
			Sticky:  e.Sticky,
		})
	}
	return set, nil
}

func parseEntries(body string) ([]stateEntry, error) {
	start := strings.Index(body, statePrefix)
	if start < 0 {
		return nil, nil
	}
	rest := body[start+len(statePrefix):]
	end := strings.Index(rest, commentClose)
	if end < 0 {
		return nil, fmt.Errorf("unterminated state blob in comment body")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest[:end]))
	if err != nil {
		return nil, fmt.Errorf("decode comment state: %w", err)
	}

	var entries []stateEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal comment state: %w", err)
	}
	return entries, nil
}

// ParseOne returns the first violation embedded in body, for anchored comment
// bodies that carry exactly one finding. Unlike Parse it keeps entries that
// were rendered as resolved, so a resolved sticky comment still decodes to its
// sticky violation on later passes. ok is false when body holds no entries.
func ParseOne(body string) (v model.Violation, ok bool) {
	entries, err := parseEntries(body)
	if err != nil || len(entries) == 0 {
		return model.Violation{}, false
	}
	e := entries[0]
	return model.Violation{
		Kind:    e.Kind,
		Message: e.Message,
		File:    e.File,
		Line:    e.Line,
		Sticky:  e.Sticky,
	}, true
}
