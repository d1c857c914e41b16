package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// PreviewHTML converts a rendered comment body to sanitized HTML for local
// inspection before anything is posted. Strikethrough and tables need GFM;
// the sanitizer strips whatever a hostile violation message smuggles in.
// Returns empty string for empty input.
func PreviewHTML(body string) string {
	if body == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(body), &buf); err != nil {
		return htmlSanitizer.Sanitize(body)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
