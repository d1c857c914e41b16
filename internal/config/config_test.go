package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("REVIEWSYNC_GITHUB_TOKEN", "tok")
	t.Setenv("REVIEWSYNC_REPO", "owner/repo")
	t.Setenv("REVIEWSYNC_PR", "7")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.GitHubToken)
	assert.Equal(t, "owner/repo", cfg.RepoFullName)
	assert.Equal(t, 7, cfg.PRNumber)
	assert.Equal(t, "reviewsync", cfg.DangerID)
	assert.Equal(t, "reviewsync.db", cfg.DBPath)
	assert.Empty(t, cfg.GitHubBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEWSYNC_DANGER_ID", "my-bot")
	t.Setenv("REVIEWSYNC_DB_PATH", "")
	t.Setenv("REVIEWSYNC_GITHUB_BASE_URL", "https://ghe.example.com/api/v3/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "my-bot", cfg.DangerID)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.GitHubBaseURL)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("REVIEWSYNC_GITHUB_TOKEN", "")
	t.Setenv("REVIEWSYNC_REPO", "owner/repo")
	t.Setenv("REVIEWSYNC_PR", "7")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEWSYNC_GITHUB_TOKEN")
}

func TestLoadInvalidRepo(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEWSYNC_REPO", "no-slash")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEWSYNC_REPO")
}

func TestLoadInvalidPR(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEWSYNC_PR", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEWSYNC_PR")
}
