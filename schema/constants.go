package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for scan history.
	DatabaseBackend string

	// Source is the provenance of an accomplishment or token entry.
	Source string

	// Category is the class bucket an accomplishment contributes to.
	Category string

	// Priority is the urgency of a todo.
	Priority string

	// TodoStatus is the lifecycle state of a todo.
	TodoStatus string

	// EngineVersion identifies a progression algorithm.
	EngineVersion string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Accomplishment sources.
const (
	SourceAuto      Source = "auto"       // commit or date-prefixed file
	SourceAutoMtime Source = "auto-mtime" // found by modification time only
	SourceManual    Source = "manual"
)

// Token usage sources.
const (
	TokenSourceClaudeCode Source = "claude-code"
	TokenSourceEstimate   Source = "transcript-estimate"
	TokenSourceManual     Source = "manual"
)

// Class categories.
const (
	BuilderCategory    Category = "builder"
	ScribeCategory     Category = "scribe"
	StrategistCategory Category = "strategist"
)

// Todo priorities.
const (
	HighPriority   Priority = "high"
	MediumPriority Priority = "medium" // default
	LowPriority    Priority = "low"
)

// Todo states.
const (
	TodoOpen TodoStatus = "todo"
	TodoDone TodoStatus = "done"
)

// Progression engine versions.
const (
	EngineV1 EngineVersion = "v1"
	EngineV2 EngineVersion = "v2"
	EngineV3 EngineVersion = "v3"
)

// AllEngineVersions lists every progression engine in replay order.
var AllEngineVersions = []EngineVersion{EngineV1, EngineV2, EngineV3}

// AllCategories lists class categories in tie-break order.
var AllCategories = []Category{BuilderCategory, ScribeCategory, StrategistCategory}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidCategories lists all valid class categories.
var ValidCategories = map[Category]struct{}{
	BuilderCategory:    {},
	ScribeCategory:     {},
	StrategistCategory: {},
}

// ValidPriorities lists all valid todo priorities.
var ValidPriorities = map[Priority]struct{}{
	HighPriority:   {},
	MediumPriority: {},
	LowPriority:    {},
}

// ValidEngineVersions lists all valid engine versions.
var ValidEngineVersions = map[EngineVersion]struct{}{
	EngineV1: {},
	EngineV2: {},
	EngineV3: {},
}

// Rank orders priorities so that high sorts first.
func (p Priority) Rank() int {
	switch p {
	case HighPriority:
		return 0
	case MediumPriority:
		return 1
	default:
		return 2
	}
}

// IsAutoToken reports whether the token source is re-derived on every scan.
func (s Source) IsAutoToken() bool {
	return s == TokenSourceClaudeCode || s == TokenSourceEstimate
}
