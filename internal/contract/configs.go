package contract

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/dailyxp/schema"
)

// Default values for configuration.
const (
	DefaultDataDir    = "data/daily-log"
	DefaultProfileDir = "data/rpg"
	DefaultName       = "Operator"
	DefaultPrecision  = 2
	DefaultLogLevel   = "warn"
)

// DefaultWatchDirs are the repo-relative directories walked for mtime activity.
var DefaultWatchDirs = []string{"content", "clients", "website", "scripts", "skills", "workflows", ".cursor", ".claude"}

// Config holds the runtime configuration for a run.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath       string
	Date           time.Time // local midnight of the target day
	DataDir        string    // absolute
	ProfileDir     string    // absolute
	TranscriptsDir string    // absolute, may not exist
	EstimateDirs   []string  // absolute
	WatchDirs      []string  // repo-relative
	Name           string

	Pricing      map[string]schema.ModelRate
	DefaultModel string
	Weights      map[string]int // overrides for the points table

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Date             string   `mapstructure:"date"`
	DataDir          string   `mapstructure:"data-dir"`
	ProfileDir       string   `mapstructure:"profile-dir"`
	TranscriptsDir   string   `mapstructure:"transcripts-dir"`
	EstimateDirs     []string `mapstructure:"estimate-dirs"`
	WatchDirs        []string `mapstructure:"watch-dirs"`
	Name             string   `mapstructure:"name"`
	DefaultModel     string   `mapstructure:"default-model"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	Precision        int      `mapstructure:"precision"`
	Width            int      `mapstructure:"width"`
	Color            string   `mapstructure:"color"`
	LogLevel         string   `mapstructure:"log-level"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`

	// --- Tables from config file ---
	Pricing map[string]schema.ModelRate `mapstructure:"pricing"`
	Weights map[string]int              `mapstructure:"weights"`
}

// DateString returns the target day as YYYY-MM-DD.
func (c *Config) DateString() string {
	return c.Date.Format(schema.DateLayout)
}

// DayWindow returns the [start, end) window of the target day in local time.
func (c *Config) DayWindow() (time.Time, time.Time) {
	return c.Date, c.Date.AddDate(0, 0, 1)
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.EstimateDirs = append([]string(nil), c.EstimateDirs...)
	clone.WatchDirs = append([]string(nil), c.WatchDirs...)
	if c.Pricing != nil {
		clone.Pricing = make(map[string]schema.ModelRate, len(c.Pricing))
		maps.Copy(clone.Pricing, c.Pricing)
	}
	if c.Weights != nil {
		clone.Weights = make(map[string]int, len(c.Weights))
		maps.Copy(clone.Weights, c.Weights)
	}
	return &clone
}

// CloneWithDate creates a copy of the Config targeting another day.
func (c *Config) CloneWithDate(date time.Time) *Config {
	clone := c.Clone()
	clone.Date = StartOfDay(date)
	return clone
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses YYYY-MM-DD in local time. An empty string means today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return StartOfDay(now), nil
	}
	d, err := time.ParseInLocation(schema.DateLayout, strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processPricing(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPaths(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.HistoryBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.HistoryBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	cfg.Name = strings.TrimSpace(input.Name)
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	cfg.LogLevel = input.LogLevel
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if err := SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	date, err := ParseDate(input.Date, time.Now())
	if err != nil {
		return err
	}
	cfg.Date = date
	return nil
}

// processPricing merges configured rates over the built-in table.
func processPricing(cfg *Config, input *ConfigRawInput) error {
	cfg.Pricing = schema.DefaultPricing()
	for model, rate := range input.Pricing {
		if rate.Input < 0 || rate.Output < 0 || rate.CacheRead < 0 || rate.CacheWrite < 0 {
			return fmt.Errorf("pricing for model %s must not be negative", model)
		}
		cfg.Pricing[strings.ToLower(model)] = rate
	}

	cfg.DefaultModel = strings.ToLower(strings.TrimSpace(input.DefaultModel))
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = schema.DefaultModel
	}
	if _, ok := cfg.Pricing[cfg.DefaultModel]; !ok {
		return fmt.Errorf("default model %q has no pricing entry", cfg.DefaultModel)
	}
	return nil
}

// processWeights copies point overrides, clamping negatives to zero.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	if len(input.Weights) == 0 {
		cfg.Weights = nil
		return nil
	}
	cfg.Weights = make(map[string]int, len(input.Weights))
	for typ, pts := range input.Weights {
		if typ == "" {
			return fmt.Errorf("weights must not contain an empty type")
		}
		cfg.Weights[strings.ToLower(typ)] = max(pts, 0)
	}
	return nil
}

// resolveRepoPaths resolves the Git repository root and every configured directory.
// A path that is not inside a Git repository falls back to the path itself so
// that content-only folders can still be scanned.
func resolveRepoPaths(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	if statErr != nil {
		return fmt.Errorf("repository path %q does not exist: %w", searchPath, statErr)
	}
	if !info.IsDir() {
		absSearchPath = filepath.Dir(absSearchPath)
	}

	root, err := client.GetRepoRoot(ctx, absSearchPath)
	if err != nil {
		LogWarn("Not a git repository, scanning files only", err)
		root = absSearchPath
	}
	cfg.RepoPath = root

	cfg.DataDir = resolveUnder(root, input.DataDir, DefaultDataDir)
	cfg.ProfileDir = resolveUnder(root, input.ProfileDir, DefaultProfileDir)

	if input.TranscriptsDir != "" {
		cfg.TranscriptsDir = expandHome(input.TranscriptsDir)
	} else {
		cfg.TranscriptsDir = DefaultTranscriptsDir(root)
	}

	cfg.EstimateDirs = nil
	for _, d := range input.EstimateDirs {
		if d = strings.TrimSpace(d); d != "" {
			cfg.EstimateDirs = append(cfg.EstimateDirs, resolveUnder(root, d, ""))
		}
	}

	cfg.WatchDirs = DefaultWatchDirs
	if len(input.WatchDirs) > 0 {
		cfg.WatchDirs = nil
		for _, d := range input.WatchDirs {
			if d = strings.Trim(strings.TrimSpace(d), "/"); d != "" {
				cfg.WatchDirs = append(cfg.WatchDirs, d)
			}
		}
	}
	return nil
}

// resolveUnder returns p as an absolute path, anchoring relative paths at root.
func resolveUnder(root, p, fallback string) string {
	if p == "" {
		p = fallback
	}
	p = expandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// DefaultTranscriptsDir returns the assistant transcript folder for a repo,
// ~/.claude/projects/<repo path with separators replaced by dashes>.
func DefaultTranscriptsDir(repoRoot string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	slug := strings.NewReplacer("/", "-", "\\", "-", ":", "-", ".", "-").Replace(repoRoot)
	return filepath.Join(home, ".claude", "projects", slug)
}
