// Package agg has aggregation logic for one day of Git activity.
package agg

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// Change status codes as reported by git --name-status.
const (
	StatusAdded    = "A"
	StatusModified = "M"
	StatusDeleted  = "D"
)

// FileChange is the net effect of a day's commits on one path.
type FileChange struct {
	Path       string
	Status     string    // StatusAdded wins over StatusModified across commits
	LastCommit time.Time // newest commit touching the path
}

// DayActivity is the git view of a single day.
type DayActivity struct {
	Changes map[string]FileChange
	Summary schema.GitSummary
}

// Paths returns the changed paths that still exist after the day, sorted.
func (d *DayActivity) Paths() []string {
	paths := make([]string, 0, len(d.Changes))
	for p, c := range d.Changes {
		if c.Status != StatusDeleted {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// LOC classes by file extension. Everything else counts as data.
var (
	CodeExts    = map[string]bool{".py": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".css": true, ".scss": true, ".sh": true, ".sql": true, ".go": true, ".rs": true}
	ContentExts = map[string]bool{".md": true, ".txt": true, ".mdx": true}
)

// AggregateDay runs the name-status and numstat logs for the configured day
// and folds them into a DayActivity. A repository without history yields an
// empty result rather than an error.
func AggregateDay(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*DayActivity, error) {
	start, end := cfg.DayWindow()
	activity := &DayActivity{Changes: make(map[string]FileChange)}

	out, err := client.GetChangeLog(ctx, cfg.RepoPath, start, end)
	if err != nil {
		contract.LogWarn("Git change log unavailable, skipping commits", err)
		return activity, nil
	}
	activity.Summary.CommitsToday = parseChangeLog(out, activity.Changes)

	for _, c := range activity.Changes {
		switch c.Status {
		case StatusAdded:
			activity.Summary.FilesAdded++
		case StatusModified:
			activity.Summary.FilesModified++
		}
	}

	numstat, err := client.GetNumstatLog(ctx, cfg.RepoPath, start, end)
	if err != nil {
		contract.LogWarn("Git numstat log unavailable, skipping line counts", err)
		return activity, nil
	}
	parseNumstatLog(numstat, &activity.Summary)
	return activity, nil
}

// parseChangeLog processes --name-status output and returns the number of commits.
// Commits are listed newest first, so the first status seen for a path is its
// final state while an add anywhere in the day marks the path as added.
func parseChangeLog(out []byte, changes map[string]FileChange) int {
	lines := strings.Split(string(out), "\n")
	var commits int
	var currentDate time.Time

	for _, l := range lines {
		l = strings.Trim(l, " \t\r\n'")

		if strings.HasPrefix(l, "--") {
			// Commit header line
			_, currentDate = parseCommitHeader(l)
			commits++
			continue
		}
		if l == "" {
			continue // Skip blank lines
		}

		for p, status := range parseStatusLine(l) {
			applyChange(changes, p, status, currentDate)
		}
	}
	return commits
}

// parseCommitHeader extracts author and date from a commit header line.
func parseCommitHeader(line string) (string, time.Time) {
	if !strings.HasPrefix(line, "--") || len(line) < 5 { // --x|y|z minimum
		return "", time.Time{}
	}
	parts := strings.SplitN(line[2:], "|", 3) // commit|author|date
	if len(parts) == 3 {
		author := parts[1]
		dateStr := parts[2]
		if date, err := time.Parse(time.RFC3339, dateStr); err == nil {
			return author, date
		}
	}
	return "", time.Time{}
}

// parseStatusLine parses a name-status line into the paths it affects and
// their normalized status. Renames and copies count as an add of the new path and a
// delete of the old one.
func parseStatusLine(line string) map[string]string {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 || parts[0] == "" {
		return nil
	}
	switch code := parts[0][:1]; code {
	case "R":
		if len(parts) < 3 {
			return nil
		}
		return map[string]string{parts[1]: StatusDeleted, parts[2]: StatusAdded}
	case "C":
		if len(parts) < 3 {
			return nil
		}
		return map[string]string{parts[2]: StatusAdded}
	case StatusAdded, StatusDeleted:
		return map[string]string{parts[1]: code}
	case StatusModified, "T":
		return map[string]string{parts[1]: StatusModified}
	}
	return nil
}

// applyChange records one status for a path, keeping the newest commit time.
func applyChange(changes map[string]FileChange, p, status string, date time.Time) {
	existing, seen := changes[p]
	if !seen {
		changes[p] = FileChange{Path: p, Status: status, LastCommit: date}
		return
	}
	// Older commits only upgrade a surviving path to "added".
	if status == StatusAdded && existing.Status != StatusDeleted {
		existing.Status = StatusAdded
	}
	if date.After(existing.LastCommit) {
		existing.LastCommit = date
	}
	changes[p] = existing
}

// parseNumstatLog sums line counters from --numstat output into summary.
func parseNumstatLog(out []byte, summary *schema.GitSummary) {
	for _, l := range strings.Split(string(out), "\n") {
		l = strings.Trim(l, " \t\r\n'")
		if l == "" || strings.HasPrefix(l, "--") {
			continue
		}
		parts := strings.SplitN(l, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		add := parseChurnValue(parts[0])
		del := parseChurnValue(parts[1])
		p := parts[2]
		if strings.Contains(p, " => ") {
			if _, newPath := parseRenamePath(p); newPath != "" {
				p = newPath
			}
		}

		summary.LinesAdded += add
		summary.LinesRemoved += del
		switch ext := strings.ToLower(path.Ext(p)); {
		case CodeExts[ext]:
			summary.CodeLOC += add
		case ContentExts[ext]:
			summary.ContentLOC += add
		default:
			summary.DataLOC += add
		}
	}
	summary.NetLines = summary.LinesAdded - summary.LinesRemoved
}

// parseChurnValue converts a churn string to int, handling "-" as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(p string) (string, string) {
	if !strings.Contains(p, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(p, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	braceStart := strings.Index(p, "{")
	braceEnd := strings.Index(p, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := p[:braceStart]
	renamePart := p[braceStart+1 : braceEnd]
	suffix := p[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	oldPath := path.Clean(prefix + renameParts[0] + suffix)
	newPath := path.Clean(prefix + renameParts[1] + suffix)
	return oldPath, newPath
}
