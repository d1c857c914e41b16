package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

func writeFindings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "findings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFindings(t *testing.T) {
	path := writeFindings(t, `{
		"errors":   [{"message": "nil deref", "file": "src/b.rb", "line": 3}],
		"warnings": [{"message": "big PR", "sticky": true}],
		"markdowns": [{"message": "## report"}]
	}`)

	req, err := loadFindings(path)
	require.NoError(t, err)

	require.Len(t, req.Errors, 1)
	assert.Equal(t, model.Violation{
		Kind: model.KindError, Message: "nil deref", File: "src/b.rb", Line: 3,
	}, req.Errors[0])

	require.Len(t, req.Warnings, 1)
	assert.True(t, req.Warnings[0].Sticky)
	assert.Equal(t, model.KindWarning, req.Warnings[0].Kind)

	assert.Empty(t, req.Messages)
	require.Len(t, req.Markdowns, 1)
	assert.Equal(t, model.KindMarkdown, req.Markdowns[0].Kind)
}

func TestLoadFindingsMissingFile(t *testing.T) {
	_, err := loadFindings(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadFindingsInvalidJSON(t *testing.T) {
	path := writeFindings(t, "{not json")
	_, err := loadFindings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing findings file")
}
