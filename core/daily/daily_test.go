package daily

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	morning = time.Date(2026, 2, 11, 9, 0, 0, 0, time.Local)
	evening = time.Date(2026, 2, 11, 21, 0, 0, 0, time.Local)
)

func testConfig() *contract.Config {
	return &contract.Config{
		Date:         time.Date(2026, 2, 11, 0, 0, 0, 0, time.Local),
		Pricing:      schema.DefaultPricing(),
		DefaultModel: schema.DefaultModel,
	}
}

func sampleScan() schema.ScanResult {
	return schema.ScanResult{
		Accomplishments: []schema.Accomplishment{
			{Type: "website_page", Title: "blog page", Path: "website/apps/a/app/blog/page.tsx", Source: schema.SourceAuto, Timestamp: "14:10", Words: 120, Category: schema.BuilderCategory},
			{Type: "linkedin_final", Title: "launch", Path: "content/linkedin/final/launch.md", Source: schema.SourceAuto, Timestamp: "09:45", Words: 300, Category: schema.ScribeCategory, Platform: "linkedin"},
			{Type: "x_draft", Title: "thread", Path: "content/x/drafts/thread.md", Source: schema.SourceAutoMtime, Timestamp: "11:00", Words: 80, Category: schema.ScribeCategory, Platform: "x"},
		},
		TokenUsage: []schema.TokenUsageEntry{
			{SessionID: "s2", Model: "sonnet", InputTokens: 10_000, OutputTokens: 5_000, Source: schema.TokenSourceClaudeCode, Cost: 0.105},
			{SessionID: "s1", Model: "haiku", InputTokens: 1_000, Source: schema.TokenSourceEstimate, Cost: 0.0003, Estimated: true},
		},
		Pipeline: schema.PipelineState{
			DraftsActive: []schema.DraftItem{{Platform: "x", Path: "content/x/drafts/thread.md", Title: "thread", Words: 80}},
		},
		GitSummary: schema.GitSummary{CommitsToday: 4, CodeLOC: 100},
	}
}

// TestPointsFor tests the weight table, fallbacks and overrides.
func TestPointsFor(t *testing.T) {
	tests := []struct {
		typ       string
		overrides map[string]int
		want      int
	}{
		{"monorepo_build", nil, 50},
		{"linkedin_final", nil, 10},
		{"tiktok_draft", nil, 2},
		{"website_config", nil, 1},
		{"unknown_type", nil, 0},
		{"code_infra", map[string]int{"code_infra": 20}, 20},
		{"reddit_final", map[string]int{"final": 12}, 12},
		{"script", map[string]int{"script": -3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, PointsFor(tt.typ, tt.overrides))
		})
	}
}

// TestLetterGradeBoundaries tests that each threshold gets the higher grade.
func TestLetterGradeBoundaries(t *testing.T) {
	for i, step := range GradeLadder {
		threshold := int(step.Threshold)
		assert.Equal(t, step.Grade, LetterGrade(threshold), "score %d", threshold)
		if i+1 < len(GradeLadder) {
			assert.Equal(t, GradeLadder[i+1].Grade, LetterGrade(threshold-1), "score %d", threshold-1)
		}
	}
	assert.Equal(t, "D", LetterGrade(-10))
	assert.Equal(t, "A", LetterGrade(40))
	assert.Equal(t, "S+", LetterGrade(100000))
}

// TestMergeFirstScan tests scoring, ordering and todo carry-over.
func TestMergeFirstScan(t *testing.T) {
	carry := []schema.TodoItem{{ID: "abc12345", Task: "publish thread", Priority: schema.HighPriority, Status: schema.TodoOpen}}
	rec := Merge(MergeInput{Date: "2026-02-11", Scan: sampleScan(), Carry: carry, Now: morning})

	assert.Equal(t, schema.RecordVersion, rec.Version)
	var paths []string
	for _, a := range rec.Accomplishments {
		paths = append(paths, a.Path)
	}
	assert.Equal(t, []string{
		"content/linkedin/final/launch.md",
		"content/x/drafts/thread.md",
		"website/apps/a/app/blog/page.tsx",
	}, paths)
	assert.Equal(t, "s1", rec.TokenUsage[0].SessionID)
	assert.Equal(t, carry, rec.Todos)

	s := rec.Stats
	assert.Equal(t, 17, s.OutputScore) // 10 + 2 + 5
	assert.Equal(t, "B", s.LetterGrade)
	assert.Len(t, s.ScoreBreakdown, 3)
	assert.Equal(t, 500, s.WordsToday)
	assert.Equal(t, 80, s.PipelineWords)
	assert.Equal(t, "09:45", s.FirstActivity)
	assert.Equal(t, "14:10", s.LastActivity)
	assert.Equal(t, 2, s.ShippedCount)
	assert.Equal(t, 1, s.DraftCount)
	assert.Equal(t, 0.67, s.ShipRate)
	assert.Equal(t, map[string]int{"linkedin": 1, "x": 1, "website": 1}, s.PlatformBreakdown)
	assert.InDelta(t, 0.1053, s.AgentCost, 1e-9)
	assert.Equal(t, 161.44, s.EfficiencyRating)
	assert.Equal(t, int64(16_000), s.TotalTokens)
	assert.Equal(t, 2.0, s.DevEquivalent.DevHours)
	assert.Equal(t, 150.0, s.DevEquivalent.DevCost)
	assert.Equal(t, 1.0, s.DevEquivalent.WriterHours)
	assert.Equal(t, 200.0, s.DevEquivalent.Total)
	assert.Equal(t, 199.89, s.CostSavings)
}

// TestMergeIdempotent tests that a repeated scan changes only generated_at.
func TestMergeIdempotent(t *testing.T) {
	first := Merge(MergeInput{Date: "2026-02-11", Scan: sampleScan(), Now: morning})
	second := Merge(MergeInput{Date: "2026-02-11", Prior: &first, Scan: sampleScan(), Now: evening})

	assert.Empty(t, cmp.Diff(first, second, cmpopts.IgnoreFields(schema.DailyRecord{}, "GeneratedAt")))
	assert.NotEqual(t, first.GeneratedAt, second.GeneratedAt)

	second.GeneratedAt = first.GeneratedAt
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// TestMergePreservesManualData tests manual entries and todos across rescans.
func TestMergePreservesManualData(t *testing.T) {
	cfg := testConfig()
	rec := Merge(MergeInput{Date: "2026-02-11", Scan: sampleScan(), Now: morning})

	manual, err := NewAccomplishment(ManualEntry{Title: "Partner call"}, nil, morning)
	require.NoError(t, err)
	rec = AddAccomplishment(rec, manual, nil, morning)
	rec, todo, err := AddTodo(rec, "ship v2", schema.LowPriority, nil, morning)
	require.NoError(t, err)
	cost := 2.00
	rec, _, err = AddTokens(rec, ManualTokens{Model: "opus", Cost: &cost, Context: "cursor chat"}, cfg, morning)
	require.NoError(t, err)

	for i := range 5 {
		scan := sampleScan()
		if i%2 == 1 {
			scan.Accomplishments = scan.Accomplishments[:1]
			scan.TokenUsage = nil
		}
		rec = Merge(MergeInput{Date: "2026-02-11", Prior: &rec, Scan: scan, Now: evening})

		last := rec.Accomplishments[len(rec.Accomplishments)-1]
		assert.Equal(t, manual, last, "rescan %d", i)
		assert.Equal(t, []schema.TodoItem{todo}, rec.Todos, "rescan %d", i)
		manualTokens := 0
		for _, e := range rec.TokenUsage {
			if e.Source == schema.TokenSourceManual {
				manualTokens++
				assert.Equal(t, 2.00, e.Cost)
			}
		}
		assert.Equal(t, 1, manualTokens, "rescan %d", i)
	}
}

// TestManualTokensCost tests the sonnet plus explicit cost scenario.
func TestManualTokensCost(t *testing.T) {
	cfg := testConfig()
	scan := schema.ScanResult{TokenUsage: []schema.TokenUsageEntry{{
		SessionID: "s", Model: "sonnet", InputTokens: 10_000, OutputTokens: 5_000,
		Source: schema.TokenSourceClaudeCode, Cost: 0.105,
	}}}
	rec := Merge(MergeInput{Date: "2026-02-11", Scan: scan, Now: morning})
	cost := 2.00
	rec, entry, err := AddTokens(rec, ManualTokens{Model: "gpt-4o", Cost: &cost}, cfg, morning)
	require.NoError(t, err)
	assert.Equal(t, "gpt4o", entry.Model)
	assert.InDelta(t, 2.105, rec.Stats.AgentCost, 1e-9)

	rec = Merge(MergeInput{Date: "2026-02-11", Prior: &rec, Scan: scan, Now: evening})
	assert.Len(t, rec.TokenUsage, 2)
	assert.InDelta(t, 2.105, rec.Stats.AgentCost, 1e-9)

	_, priced, err := AddTokens(rec, ManualTokens{InputTokens: 1_000_000}, cfg, morning)
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultModel, priced.Model)
	assert.Equal(t, 3.0, priced.Cost)

	_, _, err = AddTokens(rec, ManualTokens{InputTokens: -1}, cfg, morning)
	assert.Error(t, err)
}

// TestNewAccomplishment tests manual defaults and validation.
func TestNewAccomplishment(t *testing.T) {
	acc, err := NewAccomplishment(ManualEntry{Title: " Draft essay ", Type: "substack_draft", Words: 900}, nil, morning)
	require.NoError(t, err)
	assert.Equal(t, "Draft essay", acc.Title)
	assert.Equal(t, schema.ScribeCategory, acc.Category)
	assert.Equal(t, schema.SourceManual, acc.Source)
	assert.Equal(t, ManualPathPrefix+acc.ID, acc.Path)
	assert.Equal(t, "09:00", acc.Timestamp)
	assert.Equal(t, 2, acc.ValueScore)
	assert.False(t, acc.Shipped)
	assert.False(t, acc.IsAuto())

	shipped := true
	acc, err = NewAccomplishment(ManualEntry{Title: "Call", Shipped: &shipped, Category: schema.StrategistCategory}, map[string]int{"manual": 7}, morning)
	require.NoError(t, err)
	assert.Equal(t, 7, acc.ValueScore)
	assert.Equal(t, schema.StrategistCategory, acc.Category)

	_, err = NewAccomplishment(ManualEntry{Title: "  "}, nil, morning)
	assert.Error(t, err)
	_, err = NewAccomplishment(ManualEntry{Title: "x", Category: "wizard"}, nil, morning)
	assert.Error(t, err)
}

// TestTodos tests adding, completing and listing todos.
func TestTodos(t *testing.T) {
	rec := Merge(MergeInput{Date: "2026-02-11", Now: morning})
	rec, low, err := AddTodo(rec, "tidy notes", schema.LowPriority, nil, morning)
	require.NoError(t, err)
	rec, high, err := AddTodo(rec, "ship launch", schema.HighPriority, nil, morning)
	require.NoError(t, err)
	rec, med, err := AddTodo(rec, "review draft", "", nil, morning)
	require.NoError(t, err)
	assert.Equal(t, schema.MediumPriority, med.Priority)

	_, _, err = AddTodo(rec, "bad", "urgent", nil, morning)
	assert.Error(t, err)

	next := Next(rec)
	require.Len(t, next.Todos, 3)
	assert.Equal(t, []string{high.ID, med.ID, low.ID}, []string{next.Todos[0].ID, next.Todos[1].ID, next.Todos[2].ID})

	rec, done, err := CompleteTodo(rec, high.ID[:6], nil, evening)
	require.NoError(t, err)
	assert.Equal(t, schema.TodoDone, done.Status)
	assert.NotEmpty(t, done.CompletedAt)
	assert.Len(t, Next(rec).Todos, 2)
	assert.Len(t, rec.Todos, 3, "done todos are kept")

	again, doneAgain, err := CompleteTodo(rec, high.ID, nil, evening.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, done.CompletedAt, doneAgain.CompletedAt)
	assert.Equal(t, rec.Todos, again.Todos)

	_, _, err = CompleteTodo(rec, "zzzz", nil, evening)
	assert.True(t, errors.Is(err, contract.ErrTodoNotFound))
}

// TestCompleteTodoAmbiguous tests that a shared prefix is rejected.
func TestCompleteTodoAmbiguous(t *testing.T) {
	rec := schema.DailyRecord{Todos: []schema.TodoItem{
		{ID: "ab000001", Task: "a", Status: schema.TodoOpen},
		{ID: "ab000002", Task: "b", Status: schema.TodoOpen},
	}}
	_, _, err := CompleteTodo(rec, "ab", nil, evening)
	assert.ErrorContains(t, err, "ambiguous")
}

// TestEfficiency tests the zero guards.
func TestEfficiency(t *testing.T) {
	assert.Equal(t, 0.0, Efficiency(0, 1))
	assert.Equal(t, 0.0, Efficiency(10, 0))
	assert.Equal(t, 5.0, Efficiency(10, 2))
}

// TestSummarize tests multi-day aggregation.
func TestSummarize(t *testing.T) {
	var records []schema.DailyRecord
	for i, score := range []int{40, 55, 20} {
		records = append(records, schema.DailyRecord{
			Date:  fmt.Sprintf("2026-02-%02d", 9+i),
			Stats: schema.Stats{OutputScore: score, LetterGrade: LetterGrade(score), WordsToday: 100, AgentCost: 1.5, ShippedCount: 1},
		})
	}
	summary := Summarize(records)
	assert.Len(t, summary.Days, 3)
	assert.Equal(t, 115, summary.TotalScore)
	assert.Equal(t, 38.3, summary.AvgScore)
	assert.Equal(t, "2026-02-10", summary.BestDay)
	assert.Equal(t, 4.5, summary.TotalCost)
	assert.Equal(t, "A", summary.Grade)

	empty := Summarize(nil)
	assert.Empty(t, empty.Days)
	assert.Equal(t, "D", empty.Grade)
}
