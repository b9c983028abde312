package activity

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixtureFile struct {
	path  string
	body  string
	mtime time.Time
}

func writeRepo(t *testing.T, files []fixtureFile) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f.path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f.body), 0o644))
		require.NoError(t, os.Chtimes(full, f.mtime, f.mtime))
	}
	return root
}

// TestScan tests that every source is merged with commit records first.
func TestScan(t *testing.T) {
	day := time.Date(2026, 2, 11, 0, 0, 0, 0, time.Local)
	morning := day.Add(10*time.Hour + 30*time.Minute)
	yesterday := day.Add(-12 * time.Hour)

	root := writeRepo(t, []fixtureFile{
		{"content/linkedin/final/2026-02-11_launch.md", "---\ntitle: Launch Day\n---\none two three", morning},
		{"website/apps/shawnos/app/page.tsx", "export default function Page() {}", morning},
		{"clients/partner/acme/prompts/web-reveal.md", "reveal the web", morning.Add(time.Hour)},
		{"clients/partner/acme/prompts/_internal.md", "skip me", morning},
		{"website/node_modules/x/index.ts", "generated", morning},
		{"content/x/drafts/2026-02-11_idea.md", "an idea", morning},
		{"content/x/drafts/2026-02-12_thread.md", "---\ntarget_date: 2026-02-20\n---\na b c d", yesterday},
		{"content/x/drafts/README.md", "readme", yesterday},
		{"scripts/old.py", "print(1)", yesterday},
	})

	cfg := &contract.Config{
		RepoPath:  root,
		Date:      day,
		DataDir:   filepath.Join(root, contract.DefaultDataDir),
		WatchDirs: []string{"content", "clients", "website", "scripts", "missing"},
	}
	changeLog := "--c1|Sam|2026-02-11T10:30:00Z\nA\tcontent/linkedin/final/2026-02-11_launch.md\nM\twebsite/apps/shawnos/app/page.tsx\n"
	numstat := "--c1|Sam|2026-02-11T10:30:00Z\n7\t0\tcontent/linkedin/final/2026-02-11_launch.md\n3\t1\twebsite/apps/shawnos/app/page.tsx\n"

	client := &contract.MockGitClient{}
	client.On("GetChangeLog", mock.Anything, root, mock.Anything, mock.Anything).Return([]byte(changeLog), nil)
	client.On("GetNumstatLog", mock.Anything, root, mock.Anything, mock.Anything).Return([]byte(numstat), nil)
	client.On("ListUntracked", mock.Anything, root).Return([]string{
		"content/x/drafts/2026-02-11_idea.md",
		"content/x/drafts/2026-02-12_thread.md",
	}, nil)

	result, err := Scan(context.Background(), cfg, client)
	require.NoError(t, err)

	var got []string
	for _, a := range result.Accomplishments {
		got = append(got, a.Path+"|"+a.Type+"|"+string(a.Source))
	}
	assert.Equal(t, []string{
		"content/linkedin/final/2026-02-11_launch.md|linkedin_final|auto",
		"website/apps/shawnos/app/page.tsx|landing_page|auto",
		"content/x/drafts/2026-02-11_idea.md|x_draft|auto",
		"clients/partner/acme/prompts/web-reveal.md|partner_prompt|auto-mtime",
	}, got)

	launch := result.Accomplishments[0]
	assert.Equal(t, "Launch Day", launch.Title, "front matter title wins")
	assert.Equal(t, 3, launch.Words)
	assert.Equal(t, "10:30", launch.Timestamp)
	assert.Equal(t, schema.ScribeCategory, launch.Category)
	assert.Equal(t, "linkedin", launch.Platform)

	assert.Equal(t, 1, result.GitSummary.CommitsToday)
	assert.Equal(t, 10, result.GitSummary.LinesAdded)

	require.Len(t, result.Pipeline.DraftsActive, 2)
	assert.Equal(t, "2026-02-11", result.Pipeline.DraftsActive[0].TargetDate)
	assert.Equal(t, "2026-02-12", result.Pipeline.DraftsActive[1].TargetDate, "file name date wins over front matter")
	assert.Equal(t, 4, result.Pipeline.DraftsActive[1].Words)

	require.Len(t, result.Pipeline.FinalizedToday, 1)
	assert.Equal(t, "content/linkedin/final/2026-02-11_launch.md", result.Pipeline.FinalizedToday[0].Path)
	client.AssertExpectations(t)
}

// TestScanEmptyDirectory tests that a folder without git or content scans to zero.
func TestScanEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	cfg := &contract.Config{
		RepoPath:  root,
		Date:      time.Date(2026, 2, 11, 0, 0, 0, 0, time.Local),
		WatchDirs: contract.DefaultWatchDirs,
	}
	client := &contract.MockGitClient{}
	client.On("GetChangeLog", mock.Anything, root, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	client.On("ListUntracked", mock.Anything, root).Return(nil, assert.AnError)

	result, err := Scan(context.Background(), cfg, client)
	require.NoError(t, err)
	assert.Empty(t, result.Accomplishments)
	assert.Empty(t, result.Pipeline.DraftsActive)
	assert.Empty(t, result.Pipeline.FinalizedToday)
	assert.Equal(t, schema.GitSummary{}, result.GitSummary)
}

// TestScanSkipsUnreadableFiles tests that files which cannot be stat'ed or read
// are dropped while the rest of the day is still classified.
func TestScanSkipsUnreadableFiles(t *testing.T) {
	day := time.Date(2026, 2, 11, 0, 0, 0, 0, time.Local)
	morning := day.Add(9 * time.Hour)

	root := writeRepo(t, []fixtureFile{
		{"content/linkedin/final/2026-02-11_launch.md", "one two three", morning},
	})
	// A directory with a countable name passes stat but cannot be read.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content", "linkedin", "final", "2026-02-11_folder.md"), 0o755))

	cfg := &contract.Config{
		RepoPath: root,
		Date:     day,
		DataDir:  filepath.Join(root, contract.DefaultDataDir),
	}
	changeLog := "--c1|Sam|2026-02-11T09:00:00Z\n" +
		"A\tcontent/linkedin/final/2026-02-11_launch.md\n" +
		"A\tcontent/linkedin/final/2026-02-11_gone.md\n" +
		"A\tcontent/linkedin/final/2026-02-11_folder.md\n"
	numstat := "--c1|Sam|2026-02-11T09:00:00Z\n3\t0\tcontent/linkedin/final/2026-02-11_launch.md\n"

	client := &contract.MockGitClient{}
	client.On("GetChangeLog", mock.Anything, root, mock.Anything, mock.Anything).Return([]byte(changeLog), nil)
	client.On("GetNumstatLog", mock.Anything, root, mock.Anything, mock.Anything).Return([]byte(numstat), nil)
	client.On("ListUntracked", mock.Anything, root).Return(nil, nil)

	result, err := Scan(context.Background(), cfg, client)
	require.NoError(t, err, "unreadable files must not fail the scan")

	require.Len(t, result.Accomplishments, 1)
	assert.Equal(t, "content/linkedin/final/2026-02-11_launch.md", result.Accomplishments[0].Path)
	assert.Equal(t, 3, result.Accomplishments[0].Words)
	assert.Equal(t, 1, result.GitSummary.CommitsToday)
}
