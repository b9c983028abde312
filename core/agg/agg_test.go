package agg

import (
	"context"
	_ "embed"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/name_status_day.txt
var nameStatusFixture []byte

//go:embed testdata/numstat_day.txt
var numstatFixture []byte

func testConfig() *contract.Config {
	return &contract.Config{
		RepoPath: "/test/repo",
		Date:     time.Date(2026, 2, 11, 0, 0, 0, 0, time.Local),
	}
}

// TestAggregateDay tests folding both git logs into a day summary.
func TestAggregateDay(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	start, end := cfg.DayWindow()

	mockClient := &contract.MockGitClient{}
	mockClient.On("GetChangeLog", ctx, "/test/repo", start, end).Return(nameStatusFixture, nil)
	mockClient.On("GetNumstatLog", ctx, "/test/repo", start, end).Return(numstatFixture, nil)

	activity, err := AggregateDay(ctx, cfg, mockClient)
	require.NoError(t, err)

	assert.Equal(t, schema.GitSummary{
		CommitsToday:  3,
		FilesAdded:    2,
		FilesModified: 1,
		LinesAdded:    95,
		LinesRemoved:  18,
		NetLines:      77,
		CodeLOC:       30,
		ContentLOC:    57,
		DataLOC:       8,
	}, activity.Summary)

	assert.Equal(t, []string{
		"content/linkedin/final/launch.md",
		"scripts/new_tool.py",
		"website/app/page.tsx",
	}, activity.Paths())

	launch := activity.Changes["content/linkedin/final/launch.md"]
	assert.Equal(t, StatusAdded, launch.Status, "an add earlier in the day wins over a later edit")
	wantLast, _ := time.Parse(time.RFC3339, "2026-02-11T18:20:00-08:00")
	assert.True(t, wantLast.Equal(launch.LastCommit), "last commit is the newest touching the path")
	assert.Equal(t, StatusDeleted, activity.Changes["notes/scratch.md"].Status)
	assert.Equal(t, StatusDeleted, activity.Changes["scripts/old_tool.py"].Status)
	mockClient.AssertExpectations(t)
}

// TestAggregateDayWithoutGit tests that git failures yield an empty day.
func TestAggregateDayWithoutGit(t *testing.T) {
	ctx := context.Background()
	mockClient := &contract.MockGitClient{}
	mockClient.On("GetChangeLog", ctx, "/test/repo", mock.Anything, mock.Anything).Return(nil, errors.New("not a git repository"))

	activity, err := AggregateDay(ctx, testConfig(), mockClient)
	require.NoError(t, err)
	assert.Empty(t, activity.Changes)
	assert.Equal(t, schema.GitSummary{}, activity.Summary)
	mockClient.AssertNotCalled(t, "GetNumstatLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestParseStatusLine tests name-status line normalization.
func TestParseStatusLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want map[string]string
	}{
		{"added", "A\tdocs/a.md", map[string]string{"docs/a.md": StatusAdded}},
		{"modified", "M\tdocs/a.md", map[string]string{"docs/a.md": StatusModified}},
		{"type change", "T\tdocs/link", map[string]string{"docs/link": StatusModified}},
		{"deleted", "D\tdocs/a.md", map[string]string{"docs/a.md": StatusDeleted}},
		{"rename", "R087\ta.py\tb.py", map[string]string{"a.py": StatusDeleted, "b.py": StatusAdded}},
		{"copy", "C100\ta.py\tb.py", map[string]string{"b.py": StatusAdded}},
		{"rename missing target", "R100\ta.py", nil},
		{"unknown code", "X\ta.py", nil},
		{"no path", "M", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStatusLine(tt.line))
		})
	}
}

// TestParseCommitHeader tests commit header parsing.
func TestParseCommitHeader(t *testing.T) {
	author, date := parseCommitHeader("--abc|Sam|2026-02-11T09:15:00Z")
	assert.Equal(t, "Sam", author)
	assert.Equal(t, time.Date(2026, 2, 11, 9, 15, 0, 0, time.UTC), date)

	author, date = parseCommitHeader("--abc|Sam|yesterday")
	assert.Empty(t, author)
	assert.True(t, date.IsZero())

	_, date = parseCommitHeader("--a")
	assert.True(t, date.IsZero())
}

// TestParseRenamePath tests both rename notations.
func TestParseRenamePath(t *testing.T) {
	tests := []struct {
		in, oldPath, newPath string
	}{
		{"old.go => new.go", "old.go", "new.go"},
		{"src/{a => b}/main.go", "src/a/main.go", "src/b/main.go"},
		{"src/{ => sub}/main.go", "src/main.go", "src/sub/main.go"},
		{"src/{a}/main.go", "", ""},
		{"src/}a => b{/main.go", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			o, n := parseRenamePath(tt.in)
			assert.Equal(t, tt.oldPath, o)
			assert.Equal(t, tt.newPath, n)
		})
	}
}

// TestParseChurnValue tests numstat counters including binary markers.
func TestParseChurnValue(t *testing.T) {
	assert.Equal(t, 0, parseChurnValue("-"))
	assert.Equal(t, 12, parseChurnValue("12"))
	assert.Equal(t, 0, parseChurnValue("-3"))
	assert.Equal(t, 0, parseChurnValue("x"))
}
