package iocache

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	json "github.com/goccy/go-json"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for scan history.
const (
	runsTable      = "dailyxp_runs"
	dayScoresTable = "dailyxp_day_scores"
)

// historyTables lists every history table, parents first.
var historyTables = []string{runsTable, dayScoresTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// driverFor maps a backend to its database/sql driver name.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported backend: %s", backend)
}

// openDB opens and pings the database of a backend. An empty SQLite
// connection string means the default history file.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, "", err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = GetHistoryDBFilePath()
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		switch backend {
		case schema.MySQLBackend:
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		case schema.PostgreSQLBackend:
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		default:
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", connStr, err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, "", fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, driverName, nil
}

// NewHistoryStore creates a new HistoryStore with the specified backend.
// The none backend returns a store whose writes are no-ops.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend || backend == "" {
		return &HistoryStoreImpl{backend: schema.NoneBackend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createHistoryTables creates the history tables if they do not exist yet.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{dayScoresTable, getCreateDayScoresQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for dailyxp_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				command VARCHAR(64) NOT NULL,
				target_date VARCHAR(10) NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				command TEXT NOT NULL,
				target_date TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				command TEXT NOT NULL,
				target_date TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateDayScoresQuery returns the CREATE TABLE query for dailyxp_day_scores.
func getCreateDayScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(dayScoresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				score_date VARCHAR(10) NOT NULL,
				engine_version VARCHAR(8) NOT NULL,
				raw_score INT NOT NULL,
				xp DOUBLE NOT NULL,
				grade VARCHAR(4) NOT NULL,
				xp_total DOUBLE NOT NULL,
				level INT NOT NULL,
				class VARCHAR(32) NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, engine_version)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				score_date TEXT NOT NULL,
				engine_version TEXT NOT NULL,
				raw_score INT NOT NULL,
				xp DOUBLE PRECISION NOT NULL,
				grade TEXT NOT NULL,
				xp_total DOUBLE PRECISION NOT NULL,
				level INT NOT NULL,
				class TEXT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, engine_version)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				score_date TEXT NOT NULL,
				engine_version TEXT NOT NULL,
				raw_score INTEGER NOT NULL,
				xp REAL NOT NULL,
				grade TEXT NOT NULL,
				xp_total REAL NOT NULL,
				level INTEGER NOT NULL,
				class TEXT NOT NULL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, engine_version)
			);
		`, quotedTableName)
	}
}

// builder returns a statement builder with the backend's placeholder style.
func (hs *HistoryStoreImpl) builder() sq.StatementBuilderType {
	if hs.backend == schema.PostgreSQLBackend {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, command, targetDate string, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	insert := hs.builder().
		Insert(quoteTableName(runsTable, hs.backend)).
		Columns("start_time", "command", "target_date", "config_params").
		Values(formatTime(startTime, hs.backend), command, targetDate, string(configJSON))

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query, args, err := insert.Suffix("RETURNING run_id").ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build run insert: %w", err)
		}
		err = hs.db.QueryRow(query, args...).Scan(&runID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	default: // SQLite and MySQL
		query, args, err := insert.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build run insert: %w", err)
		}
		result, err := hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if runID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read run id: %w", err)
		}
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time) error {
	if hs.disabled() {
		return nil
	}

	query, args, err := hs.builder().
		Select("start_time").
		From(quoteTableName(runsTable, hs.backend)).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run lookup: %w", err)
	}
	startTime, err := hs.scanTime(hs.db.QueryRow(query, args...))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	query, args, err = hs.builder().
		Update(quoteTableName(runsTable, hs.backend)).
		Set("end_time", formatTime(endTime, hs.backend)).
		Set("run_duration_ms", endTime.Sub(startTime).Milliseconds()).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run update: %w", err)
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordDayScore stores one engine's view of the scanned day.
func (hs *HistoryStoreImpl) RecordDayScore(runID int64, rec schema.DayScoreRecord) error {
	if hs.disabled() {
		return nil
	}

	query, args, err := hs.builder().
		Insert(quoteTableName(dayScoresTable, hs.backend)).
		Columns("run_id", "score_date", "engine_version", "raw_score", "xp", "grade",
			"xp_total", "level", "class", "recorded_at").
		Values(runID, rec.Date, rec.EngineVersion, rec.RawScore, rec.XP, rec.Grade,
			rec.XPTotal, rec.Level, rec.Class, formatTime(rec.RecordedAt, hs.backend)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build day score insert: %w", err)
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert day score: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	for _, table := range historyTables {
		query, args, err := hs.builder().Select("COUNT(*)").From(quoteTableName(table, hs.backend)).ToSql()
		if err != nil {
			return status, fmt.Errorf("failed to build count for table %s: %w", table, err)
		}
		var count int64
		if err := hs.db.QueryRow(query, args...).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[runsTable])
	status.TotalDayRows = int(status.TableSizes[dayScoresTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	query, args, err := hs.builder().Select("run_id", "start_time").From(runs).OrderBy("run_id DESC").Limit(1).ToSql()
	if err != nil {
		return status, fmt.Errorf("failed to build last run query: %w", err)
	}
	row := hs.db.QueryRow(query, args...)
	if status.LastRunID, status.LastRunTime, err = hs.scanIDTime(row); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}

	query, args, err = hs.builder().Select("start_time").From(runs).OrderBy("run_id ASC").Limit(1).ToSql()
	if err != nil {
		return status, fmt.Errorf("failed to build oldest run query: %w", err)
	}
	if status.OldestRunTime, err = hs.scanTime(hs.db.QueryRow(query, args...)); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	return status, nil
}

// GetAllRuns retrieves every run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query, args, err := hs.builder().
		Select("run_id", "start_time", "end_time", "run_duration_ms", "command", "target_date", "config_params").
		From(quoteTableName(runsTable, hs.backend)).
		OrderBy("run_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build runs query: %w", err)
	}
	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.Command, &record.TargetDate, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.Command, &record.TargetDate, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllDayScores retrieves every day score ordered by run and version.
func (hs *HistoryStoreImpl) GetAllDayScores() ([]schema.DayScoreRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query, args, err := hs.builder().
		Select("run_id", "score_date", "engine_version", "raw_score", "xp", "grade",
			"xp_total", "level", "class", "recorded_at").
		From(quoteTableName(dayScoresTable, hs.backend)).
		OrderBy("run_id", "engine_version").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build day scores query: %w", err)
	}
	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query day scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DayScoreRecord
	for rows.Next() {
		var record schema.DayScoreRecord
		switch hs.backend {
		case schema.SQLiteBackend:
			var recordedStr string
			if err := rows.Scan(&record.RunID, &record.Date, &record.EngineVersion, &record.RawScore,
				&record.XP, &record.Grade, &record.XPTotal, &record.Level, &record.Class, &recordedStr); err != nil {
				return nil, fmt.Errorf("failed to scan day score: %w", err)
			}
			if record.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedStr); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Date, &record.EngineVersion, &record.RawScore,
				&record.XP, &record.Grade, &record.XPTotal, &record.Level, &record.Class, &record.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan day score: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day scores: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, parsing text for SQLite.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// scanIDTime reads an id and a timestamp column.
func (hs *HistoryStoreImpl) scanIDTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&id, &s); err != nil {
			return 0, time.Time{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		return id, t, err
	}
	var t time.Time
	err := row.Scan(&id, &t)
	return id, t, err
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}
