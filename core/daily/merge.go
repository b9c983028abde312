package daily

import (
	"sort"
	"time"

	"github.com/huangsam/dailyxp/schema"
)

// MergeInput is the three-way input of a merge: the persisted record, the
// fresh scan and the todos inherited from an earlier day.
type MergeInput struct {
	Date    string
	Prior   *schema.DailyRecord // nil on the first write of the day
	Scan    schema.ScanResult
	Carry   []schema.TodoItem // pending todos of the latest earlier record
	Weights map[string]int
	Now     time.Time
}

// Merge reconciles a fresh scan with the persisted record for the same day.
// Auto accomplishments and auto token entries are replaced by the scan.
// Manual accomplishments, todos and other token entries are kept verbatim
// and in order. Stats are recomputed from the merged state.
func Merge(in MergeInput) schema.DailyRecord {
	rec := schema.DailyRecord{Date: in.Date}
	if in.Prior != nil {
		rec = *in.Prior
		rec.Date = in.Date
	} else {
		rec.Todos = append([]schema.TodoItem(nil), in.Carry...)
	}

	auto := append([]schema.Accomplishment(nil), in.Scan.Accomplishments...)
	sort.SliceStable(auto, func(i, j int) bool {
		if auto[i].Path != auto[j].Path {
			return auto[i].Path < auto[j].Path
		}
		return auto[i].Type < auto[j].Type
	})
	accs := make([]schema.Accomplishment, 0, len(auto)+len(rec.Accomplishments))
	for _, a := range auto {
		if a.IsAuto() {
			accs = append(accs, a)
		}
	}
	for _, a := range rec.Accomplishments {
		if !a.IsAuto() {
			accs = append(accs, a)
		}
	}
	rec.Accomplishments = accs

	autoTokens := append([]schema.TokenUsageEntry(nil), in.Scan.TokenUsage...)
	sort.SliceStable(autoTokens, func(i, j int) bool {
		return autoTokens[i].SessionID < autoTokens[j].SessionID
	})
	toks := make([]schema.TokenUsageEntry, 0, len(autoTokens)+len(rec.TokenUsage))
	for _, e := range autoTokens {
		if e.Source.IsAutoToken() {
			toks = append(toks, e)
		}
	}
	for _, e := range rec.TokenUsage {
		if !e.Source.IsAutoToken() {
			toks = append(toks, e)
		}
	}
	rec.TokenUsage = toks

	rec.Pipeline = in.Scan.Pipeline
	rec.GitSummary = in.Scan.GitSummary
	return Recompute(rec, in.Weights, in.Now)
}

// Recompute rescores auto accomplishments against the weights and rebuilds
// the stats block. Manual accomplishments keep their stored value.
func Recompute(rec schema.DailyRecord, weights map[string]int, now time.Time) schema.DailyRecord {
	rec.Version = schema.RecordVersion
	rec.GeneratedAt = now.Format(time.RFC3339)

	accs := make([]schema.Accomplishment, len(rec.Accomplishments))
	for i, a := range rec.Accomplishments {
		if a.IsAuto() {
			a.ValueScore = PointsFor(a.Type, weights)
			a.Shipped = IsShipped(a.Type)
		}
		accs[i] = a
	}
	rec.Accomplishments = accs
	normalize(&rec)
	rec.Stats = ComputeStats(rec)
	return rec
}

// normalize replaces nil slices so that empty lists encode as [].
func normalize(rec *schema.DailyRecord) {
	if rec.Accomplishments == nil {
		rec.Accomplishments = []schema.Accomplishment{}
	}
	if rec.Todos == nil {
		rec.Todos = []schema.TodoItem{}
	}
	if rec.TokenUsage == nil {
		rec.TokenUsage = []schema.TokenUsageEntry{}
	}
	if rec.Pipeline.DraftsActive == nil {
		rec.Pipeline.DraftsActive = []schema.DraftItem{}
	}
	if rec.Pipeline.FinalizedToday == nil {
		rec.Pipeline.FinalizedToday = []schema.DraftItem{}
	}
}
