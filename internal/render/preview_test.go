package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewHTML(t *testing.T) {
	html := PreviewHTML("## Warnings\n\n- ~~done~~\n")

	assert.Contains(t, html, "<h2>")
	assert.Contains(t, html, "<del>done</del>")
}

func TestPreviewHTMLSanitizes(t *testing.T) {
	html := PreviewHTML("hello <script>alert(1)</script> world")

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "hello")
}

func TestPreviewHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", PreviewHTML(""))
}
