package tokens

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// Bucket is a fixed token estimate for a range of session lengths.
type Bucket struct {
	Name         string
	MaxExchanges int // inclusive; 0 means unbounded
	Input        int64
	Output       int64
}

// Buckets map a session's exchange count to estimated tokens.
var Buckets = []Bucket{
	{Name: "short", MaxExchanges: 5, Input: 15_000, Output: 3_000},
	{Name: "medium", MaxExchanges: 20, Input: 60_000, Output: 12_000},
	{Name: "large", Input: 150_000, Output: 30_000},
}

// BucketFor returns the estimate bucket for an exchange count.
func BucketFor(exchanges int) Bucket {
	for _, b := range Buckets {
		if b.MaxExchanges == 0 || exchanges <= b.MaxExchanges {
			return b
		}
	}
	return Buckets[len(Buckets)-1]
}

var textUserPrefixes = []string{"user:", "## user", "**user**", "> user:"}

// ScanEstimates walks the estimate directories for transcripts that carry no
// token telemetry and estimates their usage from the exchange count.
func ScanEstimates(ctx context.Context, cfg *contract.Config) ([]schema.TokenUsageEntry, error) {
	start, end := cfg.DayWindow()
	var entries []schema.TokenUsageEntry
	for _, dir := range cfg.EstimateDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		var files []string
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				contract.Logger().Warn().Str("path", p).Err(err).Msg("Skipping unreadable path")
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !d.IsDir() && isTranscript(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(files)

		for _, file := range files {
			exchanges, model, last, err := countExchanges(file, start, end)
			if err != nil {
				contract.Logger().Warn().Str("path", file).Err(err).Msg("Skipping unreadable transcript")
				continue
			}
			if exchanges == 0 {
				continue
			}
			if model == "" {
				model = cfg.DefaultModel
			}
			b := BucketFor(exchanges)
			entry := schema.TokenUsageEntry{
				SessionID:    sessionID(file),
				InputTokens:  b.Input,
				OutputTokens: b.Output,
				Model:        model,
				Source:       schema.TokenSourceEstimate,
				Messages:     exchanges,
				Context:      "estimate " + b.Name,
				LoggedAt:     last.In(cfg.Date.Location()).Format(schema.ClockLayout),
				Estimated:    true,
			}
			entry.Cost = Cost(entry, cfg.Pricing, cfg.DefaultModel)
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func isTranscript(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jsonl", ".md", ".txt":
		return true
	}
	return false
}

// countExchanges returns the number of user turns on the day, the mapped
// model if the transcript names one, and the time of the last turn.
func countExchanges(file string, start, end time.Time) (int, string, time.Time, error) {
	info, err := os.Stat(file)
	if err != nil {
		return 0, "", time.Time{}, err
	}
	mtime := info.ModTime()
	inDay := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	if strings.EqualFold(filepath.Ext(file), ".jsonl") {
		events, err := readEvents(file)
		if err != nil {
			return 0, "", time.Time{}, err
		}
		var n int
		var model string
		var last time.Time
		for _, ev := range events {
			if ev.model != "" && model == "" {
				model = MapModel(ev.model)
			}
			at := ev.at
			if at.IsZero() {
				at = mtime
			}
			if ev.role != "user" || !inDay(at) {
				continue
			}
			n++
			if at.After(last) {
				last = at
			}
		}
		return n, model, last, nil
	}

	if !inDay(mtime) {
		return 0, "", time.Time{}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return 0, "", time.Time{}, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	var n int
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		for _, prefix := range textUserPrefixes {
			if strings.HasPrefix(line, prefix) {
				n++
				break
			}
		}
	}
	return n, "", mtime, scanner.Err()
}
