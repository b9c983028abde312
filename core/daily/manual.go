package daily

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/dailyxp/core/classify"
	"github.com/huangsam/dailyxp/core/tokens"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// ManualPathPrefix namespaces manual accomplishments away from repo paths.
const ManualPathPrefix = "manual:"

// ManualEntry is a user-entered accomplishment before it is stamped.
type ManualEntry struct {
	Title    string
	Type     string          // defaults to "manual"
	Category schema.Category // defaults to the type's category
	Words    int
	Shipped  *bool // defaults to whether the type is shipped
}

// NewAccomplishment stamps a manual entry with an ID, time and value.
func NewAccomplishment(entry ManualEntry, weights map[string]int, now time.Time) (schema.Accomplishment, error) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return schema.Accomplishment{}, fmt.Errorf("accomplishment title must not be empty")
	}
	if entry.Words < 0 {
		return schema.Accomplishment{}, fmt.Errorf("words must not be negative (received %d)", entry.Words)
	}
	typ := strings.ToLower(strings.TrimSpace(entry.Type))
	if typ == "" {
		typ = "manual"
	}
	category := entry.Category
	if category == "" {
		category = classify.CategoryFor(typ)
	}
	if _, ok := schema.ValidCategories[category]; !ok {
		return schema.Accomplishment{}, fmt.Errorf("invalid category '%s'. must be builder, scribe, strategist", category)
	}
	shipped := IsShipped(typ)
	if entry.Shipped != nil {
		shipped = *entry.Shipped
	}

	id := uuid.NewString()
	return schema.Accomplishment{
		ID:         id,
		Type:       typ,
		Title:      title,
		Path:       ManualPathPrefix + id,
		Category:   category,
		Source:     schema.SourceManual,
		Timestamp:  now.Format(schema.ClockLayout),
		Words:      entry.Words,
		ValueScore: PointsFor(typ, weights),
		Shipped:    shipped,
	}, nil
}

// AddAccomplishment appends a manual accomplishment and recomputes stats.
func AddAccomplishment(rec schema.DailyRecord, acc schema.Accomplishment, weights map[string]int, now time.Time) schema.DailyRecord {
	rec.Accomplishments = append(append([]schema.Accomplishment(nil), rec.Accomplishments...), acc)
	return Recompute(rec, weights, now)
}

// AddTodo appends a new open todo.
func AddTodo(rec schema.DailyRecord, task string, priority schema.Priority, weights map[string]int, now time.Time) (schema.DailyRecord, schema.TodoItem, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return rec, schema.TodoItem{}, fmt.Errorf("todo task must not be empty")
	}
	if priority == "" {
		priority = schema.MediumPriority
	}
	if _, ok := schema.ValidPriorities[priority]; !ok {
		return rec, schema.TodoItem{}, fmt.Errorf("invalid priority '%s'. must be high, medium, low", priority)
	}
	todo := schema.TodoItem{
		ID:        uuid.NewString()[:8],
		Task:      task,
		Priority:  priority,
		Status:    schema.TodoOpen,
		CreatedAt: now.Format(time.RFC3339),
	}
	rec.Todos = append(append([]schema.TodoItem(nil), rec.Todos...), todo)
	return Recompute(rec, weights, now), todo, nil
}

// CompleteTodo marks the todo whose ID equals or uniquely starts with id as
// done. Completing a done todo is a no-op.
func CompleteTodo(rec schema.DailyRecord, id string, weights map[string]int, now time.Time) (schema.DailyRecord, schema.TodoItem, error) {
	id = strings.TrimSpace(id)
	match := -1
	for i, t := range rec.Todos {
		if t.ID == id {
			match = i
			break
		}
		if id != "" && strings.HasPrefix(t.ID, id) {
			if match >= 0 {
				return rec, schema.TodoItem{}, fmt.Errorf("todo id %q is ambiguous", id)
			}
			match = i
		}
	}
	if match < 0 {
		return rec, schema.TodoItem{}, fmt.Errorf("%w: %s", contract.ErrTodoNotFound, id)
	}

	todos := append([]schema.TodoItem(nil), rec.Todos...)
	if todos[match].Status != schema.TodoDone {
		todos[match].Status = schema.TodoDone
		todos[match].CompletedAt = now.Format(time.RFC3339)
	}
	rec.Todos = todos
	return Recompute(rec, weights, now), todos[match], nil
}

// ManualTokens is a user-entered token usage line.
type ManualTokens struct {
	Model            string
	InputTokens      int64
	OutputTokens     int64
	CacheReadTokens  int64
	CacheWriteTokens int64
	Cost             *float64 // explicit cost wins over pricing
	Context          string
}

// AddTokens prices and appends a manual token entry.
func AddTokens(rec schema.DailyRecord, in ManualTokens, cfg *contract.Config, now time.Time) (schema.DailyRecord, schema.TokenUsageEntry, error) {
	if in.InputTokens < 0 || in.OutputTokens < 0 || in.CacheReadTokens < 0 || in.CacheWriteTokens < 0 {
		return rec, schema.TokenUsageEntry{}, fmt.Errorf("token counts must not be negative")
	}
	if in.Cost != nil && *in.Cost < 0 {
		return rec, schema.TokenUsageEntry{}, fmt.Errorf("cost must not be negative")
	}
	model := tokens.MapModel(in.Model)
	if strings.TrimSpace(in.Model) == "" {
		model = cfg.DefaultModel
	}
	entry := schema.TokenUsageEntry{
		InputTokens:      in.InputTokens,
		OutputTokens:     in.OutputTokens,
		CacheReadTokens:  in.CacheReadTokens,
		CacheWriteTokens: in.CacheWriteTokens,
		Model:            model,
		Source:           schema.TokenSourceManual,
		Context:          strings.TrimSpace(in.Context),
		LoggedAt:         now.Format(schema.ClockLayout),
	}
	if in.Cost != nil {
		entry.Cost = tokens.Round(*in.Cost, 4)
	} else {
		entry.Cost = tokens.Cost(entry, cfg.Pricing, cfg.DefaultModel)
	}
	rec.TokenUsage = append(append([]schema.TokenUsageEntry(nil), rec.TokenUsage...), entry)
	return Recompute(rec, cfg.Weights, now), entry, nil
}

// NextUp is what remains to be done: open todos and active drafts.
type NextUp struct {
	Todos  []schema.TodoItem  `json:"todos"`
	Drafts []schema.DraftItem `json:"drafts"`
}

// Next lists pending todos, high priority first, and the drafts pipeline.
func Next(rec schema.DailyRecord) NextUp {
	todos := rec.PendingTodos()
	sort.SliceStable(todos, func(i, j int) bool {
		return todos[i].Priority.Rank() < todos[j].Priority.Rank()
	})
	if todos == nil {
		todos = []schema.TodoItem{}
	}
	drafts := append([]schema.DraftItem{}, rec.Pipeline.DraftsActive...)
	return NextUp{Todos: todos, Drafts: drafts}
}
