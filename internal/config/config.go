// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken   string
	GitHubBaseURL string // Empty for github.com; API root for Enterprise hosts.
	RepoFullName  string // "owner/repo".
	PRNumber      int
	DangerID      string // Marker id distinguishing this tool's comments.
	DBPath        string // Journal database path; empty disables the journal.
}

// Load reads configuration from environment variables and returns a validated
// Config. REVIEWSYNC_GITHUB_TOKEN, REVIEWSYNC_REPO, and REVIEWSYNC_PR are
// required; a missing credential fails here, before any reconciliation starts.
// Optional variables: REVIEWSYNC_DANGER_ID (default "reviewsync"),
// REVIEWSYNC_GITHUB_BASE_URL (default github.com), REVIEWSYNC_DB_PATH
// (default "reviewsync.db"; set empty to disable the pass journal).
func Load() (*Config, error) {
	token := os.Getenv("REVIEWSYNC_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("REVIEWSYNC_GITHUB_TOKEN is required")
	}

	repo := os.Getenv("REVIEWSYNC_REPO")
	if repo == "" {
		return nil, fmt.Errorf("REVIEWSYNC_REPO is required (owner/repo)")
	}
	if parts := strings.SplitN(repo, "/", 2); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("REVIEWSYNC_REPO has invalid value %q, expected owner/repo", repo)
	}

	prRaw := os.Getenv("REVIEWSYNC_PR")
	if prRaw == "" {
		return nil, fmt.Errorf("REVIEWSYNC_PR is required")
	}
	prNumber, err := strconv.Atoi(prRaw)
	if err != nil || prNumber <= 0 {
		return nil, fmt.Errorf("REVIEWSYNC_PR has invalid value %q, expected a positive integer", prRaw)
	}

	dangerID := "reviewsync"
	if v, ok := os.LookupEnv("REVIEWSYNC_DANGER_ID"); ok && v != "" {
		dangerID = v
	}

	dbPath := "reviewsync.db"
	if v, ok := os.LookupEnv("REVIEWSYNC_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		GitHubToken:   token,
		GitHubBaseURL: os.Getenv("REVIEWSYNC_GITHUB_BASE_URL"),
		RepoFullName:  repo,
		PRNumber:      prNumber,
		DangerID:      dangerID,
		DBPath:        dbPath,
	}, nil
}
