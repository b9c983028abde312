//go:build basic

// Package integration contains end-to-end tests for the dailyxp binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeOutput struct {
	Action string `json:"action"`
	Date   string `json:"date"`
	Item   struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Title string `json:"title"`
	} `json:"item"`
	Stats struct {
		OutputScore int    `json:"output_score"`
		LetterGrade string `json:"letter_grade"`
	} `json:"stats"`
}

// TestManualEntriesPersist adds entries through the CLI and reads them back from disk.
func TestManualEntriesPersist(t *testing.T) {
	repo := t.TempDir()
	env := []string{"DAILYXP_TRANSCRIPTS_DIR=" + t.TempDir()}
	day := "2026-02-11"

	out, err := runCommand(t, repo, env, "add", "Wrote the launch post", "--type", "lead_magnet", "--words", "900", "--date", day, "--output", "json")
	require.NoError(t, err)
	var added changeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Added accomplishment", added.Action)
	assert.Equal(t, day, added.Date)
	assert.Equal(t, "Wrote the launch post", added.Item.Title)
	assert.Positive(t, added.Stats.OutputScore)
	assert.NotEmpty(t, added.Stats.LetterGrade)

	out, err = runCommand(t, repo, env, "todo", "Review", "analytics", "--priority", "high", "--date", day, "--output", "json")
	require.NoError(t, err)
	var todo changeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &todo))
	require.NotEmpty(t, todo.Item.ID)

	_, err = runCommand(t, repo, env, "done", todo.Item.ID[:6], "--date", day)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(repo, "data", "daily-log", day+".json"))
	require.NoError(t, err)
	var record struct {
		Accomplishments []struct {
			Title  string `json:"title"`
			Source string `json:"source"`
		} `json:"accomplishments"`
		Todos []struct {
			Task   string `json:"task"`
			Status string `json:"status"`
		} `json:"todos"`
	}
	require.NoError(t, json.Unmarshal(data, &record))
	require.Len(t, record.Todos, 1)
	assert.Equal(t, "Review analytics", record.Todos[0].Task)
	assert.Equal(t, "done", record.Todos[0].Status)

	var titles []string
	for _, a := range record.Accomplishments {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Wrote the launch post")
}

// TestScanIsIdempotent scans the same day twice and expects identical stats.
func TestScanIsIdempotent(t *testing.T) {
	repo := t.TempDir()
	env := []string{"DAILYXP_TRANSCRIPTS_DIR=" + t.TempDir()}
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "content", "linkedin", "drafts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "content", "linkedin", "drafts", "post.md"), []byte("one two three four"), 0o644))

	first, err := runCommand(t, repo, env, "scan", "--output", "json")
	require.NoError(t, err)
	second, err := runCommand(t, repo, env, "scan", "--output", "json")
	require.NoError(t, err)

	var a, b struct {
		Record struct {
			Stats struct {
				OutputScore   int `json:"output_score"`
				PipelineWords int `json:"pipeline_words"`
			} `json:"stats"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	assert.Equal(t, a.Record.Stats, b.Record.Stats)
}

// TestVersionCommand checks the version banner.
func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dailyxp CLI"))
}
