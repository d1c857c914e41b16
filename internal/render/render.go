// Package render is the comment body codec. It renders violations into the
// markdown bodies posted to the review thread and recovers the structured
// violation state back out of a previously rendered body.
//
// Every rendered body carries two machine-readable HTML comments: a marker
// line identifying the body as authored by this tool under a caller-supplied
// id, and a state blob encoding the violations the body represents. The blob
// is base64-encoded JSON so message text can never break the HTML comment.
package render

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

const (
	markerPrefix = "<!-- reviewsync-id:"
	statePrefix  = "<!-- reviewsync-state:"
	commentClose = " -->"
)

// stateEntry is the persisted form of a violation inside the state blob.
type stateEntry struct {
	Kind     model.Kind `json:"kind"`
	Message  string     `json:"message"`
	File     string     `json:"file,omitempty"`
	Line     int        `json:"line,omitempty"`
	Sticky   bool       `json:"sticky,omitempty"`
	Resolved bool       `json:"resolved,omitempty"`
}

// Marker returns the marker line embedded in every body rendered for dangerID.
func Marker(dangerID string) string {
	return markerPrefix + dangerID + commentClose
}

// IsToolComment reports whether body was rendered by this tool under dangerID.
// Comments without the marker must never be touched by the engine.
func IsToolComment(body, dangerID string) bool {
	return strings.Contains(body, Marker(dangerID))
}

func kindEmoji(k model.Kind) string {
	switch k {
	case model.KindError:
		return "❌" // cross mark
	case model.KindWarning:
		return "⚠️" // warning sign
	default:
		return "\U0001f4d6" // open book
	}
}

func kindHeading(k model.Kind) string {
	switch k {
	case model.KindError:
		return kindEmoji(k) + " Errors"
	case model.KindWarning:
		return kindEmoji(k) + " Warnings"
	default:
		return kindEmoji(k) + " Messages"
	}
}

// row renders the human-visible list entry for a violation. Anchor metadata is
// always shown when present, including in the no-inline fallback.
func row(v model.Violation, resolved bool) string {
	text := v.Message
	if v.Inline() {
		text = fmt.Sprintf("`%s:%d` - %s", v.File, v.Line, v.Message)
	}
	if resolved {
		return "~~" + text + "~~ :white_check_mark:"
	}
	return text
}

func encodeState(entries []stateEntry) (string, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal comment state: %w", err)
	}
	return statePrefix + base64.StdEncoding.EncodeToString(raw) + commentClose, nil
}

// Inline renders the body of a single anchored comment. With resolved set the
// message is struck through and tagged, but the state blob keeps the original
// violation so later passes can still decode it.
func Inline(v model.Violation, dangerID string, resolved bool) (string, error) {
	state, err := encodeState([]stateEntry{{
		Kind:     v.Kind,
		Message:  v.Message,
		File:     v.File,
		Line:     v.Line,
		Sticky:   v.Sticky,
		Resolved: resolved,
	}})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(kindEmoji(v.Kind))
	b.WriteByte(' ')
	if resolved {
		b.WriteString("~~" + v.Message + "~~ :white_check_mark:")
	} else {
		b.WriteString(v.Message)
	}
	b.WriteString("\n\n")
	b.WriteString(Marker(dangerID))
	b.WriteByte('\n')
	b.WriteString(state)
	b.WriteByte('\n')
	return b.String(), nil
}

// summaryTemplate renders the per-kind sections of the summary comment.
// Markdown violations are emitted verbatim; other kinds render as lists.
var summaryTemplate = template.Must(template.New("summary").Parse(
	`{{range .Sections}}## {{.Heading}}

{{range .Rows}}- {{.}}
{{end}}
{{end -}}
{{range .Markdowns}}{{.}}

{{end -}}
{{if .Resolved}}## :white_check_mark: Resolved

{{range .Resolved}}- {{.}}
{{end}}
{{end -}}
`))

type summarySection struct {
	Heading string
	Rows    []string
}

type summaryData struct {
	Sections  []summarySection
	Markdowns []string
	Resolved  []string
}

// Summary renders the single summary comment body: the current violations by
// kind plus previously reported sticky findings now resolved. The state blob
// encodes only the unresolved entries, so a later parse of this body yields
// exactly the current violation set.
func Summary(current model.ViolationSet, resolved []model.Violation, dangerID string) (string, error) {
	var data summaryData
	var entries []stateEntry

	for _, kind := range model.Kinds() {
		vs := current[kind]
		if len(vs) == 0 {
			continue
		}
		if kind == model.KindMarkdown {
			for _, v := range vs {
				data.Markdowns = append(data.Markdowns, v.Message)
			}
		} else {
			section := summarySection{Heading: kindHeading(kind)}
			for _, v := range vs {
				section.Rows = append(section.Rows, row(v, false))
			}
			data.Sections = append(data.Sections, section)
		}
		for _, v := range vs {
			entries = append(entries, stateEntry{
				Kind:    v.Kind,
				Message: v.Message,
				File:    v.File,
				Line:    v.Line,
				Sticky:  v.Sticky,
			})
		}
	}

	for _, v := range resolved {
		data.Resolved = append(data.Resolved, row(v, true))
		entries = append(entries, stateEntry{
			Kind:     v.Kind,
			Message:  v.Message,
			File:     v.File,
			Line:     v.Line,
			Sticky:   v.Sticky,
			Resolved: true,
		})
	}

	var b strings.Builder
	if err := summaryTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render summary body: %w", err)
	}

	state, err := encodeState(entries)
	if err != nil {
		return "", err
	}

	b.WriteString(Marker(dangerID))
	b.WriteByte('\n')
	b.WriteString(state)
	b.WriteByte('\n')
	return b.String(), nil
}
