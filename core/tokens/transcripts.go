package tokens

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// maxLineSize bounds a single transcript line; tool results can be large.
const maxLineSize = 64 * 1024 * 1024

// transcriptLine is the subset of a transcript event we read.
type transcriptLine struct {
	Type      string          `json:"type"`
	Role      string          `json:"role"`
	Timestamp string          `json:"timestamp"`
	Model     string          `json:"model"`
	Message   json.RawMessage `json:"message"`
}

type transcriptMessage struct {
	Role  string `json:"role"`
	Model string `json:"model"`
	Usage *struct {
		InputTokens              int64 `json:"input_tokens"`
		OutputTokens             int64 `json:"output_tokens"`
		CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
		CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	} `json:"usage"`
}

// event is one parsed transcript line.
type event struct {
	at    time.Time
	role  string
	model string
	usage *usage
}

// Scan returns the measured and estimated token entries for the configured
// day, sorted by session. Missing directories yield no entries.
func Scan(ctx context.Context, cfg *contract.Config) ([]schema.TokenUsageEntry, error) {
	measured, err := ScanTranscripts(ctx, cfg)
	if err != nil {
		return nil, err
	}
	estimated, err := ScanEstimates(ctx, cfg)
	if err != nil {
		return nil, err
	}
	entries := append(measured, estimated...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SessionID < entries[j].SessionID
	})
	return entries, nil
}

// ScanTranscripts sums usage telemetry per session from the transcript
// directory. Only events inside the configured day count.
func ScanTranscripts(ctx context.Context, cfg *contract.Config) ([]schema.TokenUsageEntry, error) {
	if cfg.TranscriptsDir == "" {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(cfg.TranscriptsDir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	start, end := cfg.DayWindow()
	var entries []schema.TokenUsageEntry
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events, err := readEvents(file)
		if err != nil {
			contract.Logger().Warn().Str("path", file).Err(err).Msg("Skipping unreadable transcript")
			continue
		}
		if entry, ok := measuredEntry(sessionID(file), events, start, end, cfg); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// measuredEntry folds a session's usage events into one entry.
func measuredEntry(session string, events []event, start, end time.Time, cfg *contract.Config) (schema.TokenUsageEntry, bool) {
	var total usage
	perModel := make(map[string]*usage)
	var first, last time.Time
	var messages int

	for _, ev := range events {
		if ev.usage == nil || ev.at.Before(start) || !ev.at.Before(end) {
			continue
		}
		messages++
		total.add(*ev.usage)
		model := MapModel(ev.model)
		if perModel[model] == nil {
			perModel[model] = &usage{}
		}
		perModel[model].add(*ev.usage)
		if first.IsZero() || ev.at.Before(first) {
			first = ev.at
		}
		if ev.at.After(last) {
			last = ev.at
		}
	}
	if messages == 0 {
		return schema.TokenUsageEntry{}, false
	}

	models := make([]string, 0, len(perModel))
	for m := range perModel {
		models = append(models, m)
	}
	sort.Strings(models)

	var cost float64
	for _, m := range models {
		cost += perModel[m].cost(RateFor(cfg.Pricing, m, cfg.DefaultModel))
	}

	loc := cfg.Date.Location()
	return schema.TokenUsageEntry{
		SessionID:        session,
		InputTokens:      total.input,
		OutputTokens:     total.output,
		CacheReadTokens:  total.cacheRead,
		CacheWriteTokens: total.cacheWrite,
		Model:            strings.Join(models, ","),
		Source:           schema.TokenSourceClaudeCode,
		Messages:         messages,
		Context:          fmt.Sprintf("claude-code %s", first.In(loc).Format(schema.ClockLayout)),
		LoggedAt:         last.In(loc).Format(schema.ClockLayout),
		Cost:             Round(cost, 4),
	}, true
}

// readEvents parses a JSONL transcript, skipping malformed lines.
func readEvents(file string) ([]event, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parseEvents(f)
}

func parseEvents(r io.Reader) ([]event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), maxLineSize)

	var events []event
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var tl transcriptLine
		if err := json.Unmarshal(line, &tl); err != nil {
			continue
		}
		ev := event{role: tl.Role, model: tl.Model}
		if ev.role == "" {
			ev.role = tl.Type
		}
		if at, err := time.Parse(time.RFC3339Nano, tl.Timestamp); err == nil {
			ev.at = at
		}
		if len(tl.Message) > 0 && tl.Message[0] == '{' {
			var msg transcriptMessage
			if err := json.Unmarshal(tl.Message, &msg); err == nil {
				if msg.Role != "" {
					ev.role = msg.Role
				}
				if msg.Model != "" {
					ev.model = msg.Model
				}
				if msg.Usage != nil {
					ev.usage = &usage{
						input:      msg.Usage.InputTokens,
						output:     msg.Usage.OutputTokens,
						cacheRead:  msg.Usage.CacheReadInputTokens,
						cacheWrite: msg.Usage.CacheCreationInputTokens,
					}
				}
			}
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}

func sessionID(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
