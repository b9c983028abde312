// Package activity discovers a day's accomplishments from git, untracked
// files, file modification times and the content pipeline.
package activity

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/dailyxp/core/agg"
	"github.com/huangsam/dailyxp/core/classify"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// SkipPatterns are paths never picked up by the modification time walk.
var SkipPatterns = []string{
	"node_modules/", ".git/", "__pycache__/", "schemas/", "office/",
	".next/", ".turbo/", ".vercel/", "next-env.d.ts", "package-lock.json", "_",
}

// ValidExts are the extensions considered by the modification time walk.
var ValidExts = map[string]bool{
	".md": true, ".py": true, ".txt": true, ".csv": true, ".tsx": true, ".ts": true,
	".css": true, ".yaml": true, ".json": true, ".go": true, ".html": true,
}

// candidate is a path discovered by one of the sources.
type candidate struct {
	path   string
	source schema.Source
	added  bool
}

// Scan observes the configured day and returns the auto-derived view of it.
// Token usage is left empty. Every source degrades to zero results when it
// is unavailable.
func Scan(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.ScanResult, error) {
	day, err := agg.AggregateDay(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	untracked := untrackedForDate(ctx, cfg, client)
	mtime, err := modifiedOnDate(ctx, cfg)
	if err != nil {
		return nil, err
	}

	result := &schema.ScanResult{
		Accomplishments: buildAccomplishments(cfg, collectCandidates(day, untracked, mtime)),
		GitSummary:      day.Summary,
	}
	result.Pipeline = schema.PipelineState{
		DraftsActive:   scanDrafts(cfg),
		FinalizedToday: finalizedToday(cfg, day, untracked),
	}
	return result, nil
}

// untrackedForDate returns untracked files whose name starts with the target date.
func untrackedForDate(ctx context.Context, cfg *contract.Config, client contract.GitClient) []string {
	files, err := client.ListUntracked(ctx, cfg.RepoPath)
	if err != nil {
		contract.LogWarn("Untracked files unavailable, skipping", err)
		return nil
	}
	date := cfg.DateString()
	var matched []string
	for _, f := range files {
		if classify.DateFromName(f) == date {
			matched = append(matched, filepath.ToSlash(f))
		}
	}
	sort.Strings(matched)
	return matched
}

// modifiedOnDate walks the watched directories and returns files whose
// modification time falls inside the target day.
func modifiedOnDate(ctx context.Context, cfg *contract.Config) ([]string, error) {
	start, end := cfg.DayWindow()
	skip := append([]string(nil), SkipPatterns...)
	if rel, err := contract.ToSlashRel(cfg.RepoPath, cfg.DataDir); err == nil {
		skip = append(skip, strings.TrimSuffix(rel, "/")+"/")
	}

	var matched []string
	for _, dir := range cfg.WatchDirs {
		root := filepath.Join(cfg.RepoPath, filepath.FromSlash(dir))
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				contract.Logger().Warn().Str("path", p).Err(err).Msg("Skipping unreadable path")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			rel, relErr := contract.ToSlashRel(cfg.RepoPath, p)
			if relErr != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && contract.ShouldIgnore(rel+"/", skip) {
					return fs.SkipDir
				}
				return nil
			}
			if !ValidExts[strings.ToLower(path.Ext(rel))] || contract.ShouldIgnore(rel, skip) {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				contract.Logger().Warn().Str("path", rel).Err(infoErr).Msg("Skipping unreadable file")
				return nil
			}
			if mt := info.ModTime(); !mt.Before(start) && mt.Before(end) {
				matched = append(matched, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// collectCandidates merges the sources in priority order. The first source
// to report a path wins, so commit records beat mtime records.
func collectCandidates(day *agg.DayActivity, untracked, mtime []string) []candidate {
	var out []candidate
	seen := make(map[string]bool)
	add := func(c candidate) {
		if seen[c.path] {
			return
		}
		seen[c.path] = true
		out = append(out, c)
	}
	for _, p := range day.Paths() {
		change := day.Changes[p]
		add(candidate{path: p, source: schema.SourceAuto, added: change.Status == agg.StatusAdded})
	}
	for _, p := range untracked {
		add(candidate{path: p, source: schema.SourceAuto, added: true})
	}
	for _, p := range mtime {
		add(candidate{path: p, source: schema.SourceAutoMtime})
	}
	return out
}

// buildAccomplishments classifies candidates into accomplishments. Files that
// cannot be read are logged and skipped.
func buildAccomplishments(cfg *contract.Config, candidates []candidate) []schema.Accomplishment {
	classifier := classify.NewClassifier()
	var out []schema.Accomplishment
	for _, c := range candidates {
		full := filepath.Join(cfg.RepoPath, filepath.FromSlash(c.path))
		res, ok := classifier.Classify(c.path, classify.Hint{
			Added: c.added,
			Lines: func() (int, error) { return classify.CountLines(full) },
		})
		if !ok {
			continue
		}

		info, err := os.Stat(full)
		if err != nil {
			contract.Logger().Warn().Str("path", c.path).Err(err).Msg("Skipping unreadable file")
			continue
		}

		acc := schema.Accomplishment{
			Type:      res.Type,
			Title:     res.Title,
			Path:      c.path,
			Category:  res.Category,
			Platform:  res.Platform,
			Source:    c.source,
			Timestamp: info.ModTime().In(cfg.Date.Location()).Format(schema.ClockLayout),
		}
		if classify.IsCountable(c.path) {
			words, meta, err := classify.CountWords(full)
			if err != nil {
				contract.Logger().Warn().Str("path", c.path).Err(err).Msg("Skipping unreadable file")
				continue
			}
			acc.Words = words
			if meta.Title != "" {
				acc.Title = meta.Title
			}
		}
		out = append(out, acc)
	}
	return out
}

// scanDrafts lists the drafts folder of every platform.
func scanDrafts(cfg *contract.Config) []schema.DraftItem {
	var drafts []schema.DraftItem
	for _, plat := range classify.Platforms {
		dir := filepath.Join(cfg.RepoPath, "content", plat, "drafts")
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries { // ReadDir sorts by name
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".md") || name == "README.md" || strings.HasPrefix(name, "_") {
				continue
			}
			rel := path.Join("content", plat, "drafts", name)
			item := schema.DraftItem{
				Platform:   plat,
				Path:       rel,
				Title:      classify.SlugTitle(name),
				TargetDate: classify.DateFromName(name),
			}
			words, meta, err := classify.CountWords(filepath.Join(dir, name))
			if err != nil {
				contract.Logger().Warn().Str("path", rel).Err(err).Msg("Skipping unreadable draft")
				continue
			}
			item.Words = words
			if item.TargetDate == "" {
				item.TargetDate = meta.TargetDate
			}
			drafts = append(drafts, item)
		}
	}
	return drafts
}

// finalizedToday lists content finals committed or created on the target day.
func finalizedToday(cfg *contract.Config, day *agg.DayActivity, untracked []string) []schema.DraftItem {
	paths := append(day.Paths(), untracked...)
	sort.Strings(paths)

	var finals []schema.DraftItem
	seen := make(map[string]bool)
	for _, p := range paths {
		plat := classify.PlatformOf(p)
		if plat == "" || seen[p] || !strings.HasPrefix(p, "content/"+plat+"/final/") || strings.HasSuffix(p, ".gitkeep") {
			continue
		}
		seen[p] = true
		item := schema.DraftItem{Platform: plat, Path: p, Title: classify.SlugTitle(p)}
		if words, _, err := classify.CountWords(filepath.Join(cfg.RepoPath, filepath.FromSlash(p))); err == nil {
			item.Words = words
		}
		finals = append(finals, item)
	}
	return finals
}
