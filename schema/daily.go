package schema

// Accomplishment is a single unit of work observed or entered for a day.
// Auto entries are identified by (Type, Path); manual entries carry an ID
// and a "manual:" path so the two can never collide.
type Accomplishment struct {
	ID         string   `json:"id,omitempty"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	Category   Category `json:"category"`
	Platform   string   `json:"platform,omitempty"`
	Source     Source   `json:"source"`
	Timestamp  string   `json:"timestamp,omitempty"` // HH:MM local time
	Words      int      `json:"words"`
	ValueScore int      `json:"value_score"`
	Shipped    bool     `json:"shipped"`
}

// IsAuto reports whether the accomplishment is re-derived on every scan.
func (a Accomplishment) IsAuto() bool {
	return a.Source == SourceAuto || a.Source == SourceAutoMtime
}

// DraftItem is a content file in the publishing pipeline.
type DraftItem struct {
	Platform   string `json:"platform"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Words      int    `json:"words"`
	TargetDate string `json:"target_date,omitempty"`
}

// PipelineState is a snapshot of the content pipeline, replaced on every scan.
type PipelineState struct {
	DraftsActive   []DraftItem `json:"drafts_active"`
	FinalizedToday []DraftItem `json:"finalized_today"`
}

// TodoItem is a user task that spans days until it is marked done.
type TodoItem struct {
	ID          string     `json:"id"`
	Task        string     `json:"task"`
	Priority    Priority   `json:"priority"`
	Status      TodoStatus `json:"status"`
	CreatedAt   string     `json:"created_at"`
	CompletedAt string     `json:"completed_at,omitempty"`
}

// TokenUsageEntry is the per-session token usage of an AI assistant.
type TokenUsageEntry struct {
	SessionID        string  `json:"session_id,omitempty"`
	InputTokens      int64   `json:"input_tokens"`
	OutputTokens     int64   `json:"output_tokens"`
	CacheReadTokens  int64   `json:"cache_read_tokens"`
	CacheWriteTokens int64   `json:"cache_write_tokens"`
	Model            string  `json:"model"`
	Source           Source  `json:"source"`
	Messages         int     `json:"messages,omitempty"`
	Context          string  `json:"context,omitempty"`
	LoggedAt         string  `json:"logged_at"`
	Cost             float64 `json:"cost"`
	Estimated        bool    `json:"estimated,omitempty"`
}

// TotalTokens sums all four token tiers.
func (e TokenUsageEntry) TotalTokens() int64 {
	return e.InputTokens + e.OutputTokens + e.CacheReadTokens + e.CacheWriteTokens
}

// ScoreItem is one line of the score breakdown.
type ScoreItem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Points int    `json:"points"`
}

// DevEquivalent prices the day's output at human contractor rates.
type DevEquivalent struct {
	CodeLOC      int     `json:"code_loc"`
	DevHours     float64 `json:"dev_hours"`
	DevCost      float64 `json:"dev_cost"`
	ContentWords int     `json:"content_words"`
	WriterHours  float64 `json:"writer_hours"`
	WriterCost   float64 `json:"writer_cost"`
	Total        float64 `json:"total"`
}

// GitSummary holds the raw git counters for a day.
type GitSummary struct {
	CommitsToday  int `json:"commits_today"`
	FilesAdded    int `json:"files_added"`
	FilesModified int `json:"files_modified"`
	LinesAdded    int `json:"lines_added"`
	LinesRemoved  int `json:"lines_removed"`
	NetLines      int `json:"net_lines"`
	CodeLOC       int `json:"code_loc"`
	ContentLOC    int `json:"content_loc"`
	DataLOC       int `json:"data_loc"`
}

// Stats is derived from the rest of a DailyRecord and recomputed on every write.
type Stats struct {
	PlatformBreakdown map[string]int `json:"platform_breakdown"`
	WordsToday        int            `json:"words_today"`
	PipelineWords     int            `json:"pipeline_words"`
	FinalsCount       int            `json:"finals_count"`
	FirstActivity     string         `json:"first_activity,omitempty"`
	LastActivity      string         `json:"last_activity,omitempty"`
	OutputScore       int            `json:"output_score"`
	LetterGrade       string         `json:"letter_grade"`
	ScoreBreakdown    []ScoreItem    `json:"score_breakdown"`
	EfficiencyRating  float64        `json:"efficiency_rating"`
	AgentCost         float64        `json:"agent_cost"`
	TotalTokens       int64          `json:"total_tokens"`
	ShippedCount      int            `json:"shipped_count"`
	DraftCount        int            `json:"draft_count"`
	ShipRate          float64        `json:"ship_rate"`
	DevEquivalent     DevEquivalent  `json:"dev_equivalent"`
	CostSavings       float64        `json:"cost_savings"`
	ROIMultiplier     float64        `json:"roi_multiplier"`
}

// DailyRecord is the unit of persistence: one document per calendar date.
type DailyRecord struct {
	Date            string            `json:"date"`
	GeneratedAt     string            `json:"generated_at"`
	Version         int               `json:"version"`
	Accomplishments []Accomplishment  `json:"accomplishments"`
	Pipeline        PipelineState     `json:"pipeline"`
	Todos           []TodoItem        `json:"todos"`
	TokenUsage      []TokenUsageEntry `json:"token_usage"`
	Stats           Stats             `json:"stats"`
	GitSummary      GitSummary        `json:"git_summary"`
}

// PendingTodos returns the todos that are not done, in stored order.
func (r DailyRecord) PendingTodos() []TodoItem {
	var out []TodoItem
	for _, t := range r.Todos {
		if t.Status != TodoDone {
			out = append(out, t)
		}
	}
	return out
}

// ScanResult is the fresh, auto-derived view of a day before merging.
type ScanResult struct {
	Accomplishments []Accomplishment
	TokenUsage      []TokenUsageEntry
	Pipeline        PipelineState
	GitSummary      GitSummary
}
