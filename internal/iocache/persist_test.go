package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend schema.DatabaseBackend) *contract.Config {
	t.Helper()
	root := t.TempDir()
	return &contract.Config{
		DataDir:          filepath.Join(root, "daily-log"),
		ProfileDir:       filepath.Join(root, "rpg"),
		HistoryBackend:   backend,
		HistoryDBConnect: filepath.Join(root, "history.db"),
	}
}

func resetManager() {
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &StoreManager{}
}

// TestInitStores tests global initialization and shutdown.
func TestInitStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		resetManager()
		cfg := testConfig(t, schema.SQLiteBackend)

		require.NoError(t, InitStores(cfg))
		require.NotNil(t, Manager.GetRecordStore())
		require.NotNil(t, Manager.GetProfileStore())
		require.NotNil(t, Manager.GetHistoryStore())
		CloseStores()

		_, err := os.Stat(cfg.HistoryDBConnect)
		assert.NoError(t, err, "database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetManager()
		cfg := testConfig(t, schema.SQLiteBackend)

		require.NoError(t, InitStores(cfg))
		first := Manager.GetHistoryStore()
		require.NoError(t, InitStores(cfg))
		assert.Same(t, first, Manager.GetHistoryStore())

		CloseStores()
		CloseStores()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager()
		cfg := testConfig(t, schema.NoneBackend)

		require.NoError(t, InitStores(cfg))
		status, err := Manager.GetHistoryStore().GetStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)
		CloseStores()

		_, err = os.Stat(cfg.HistoryDBConnect)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("concurrent access", func(t *testing.T) {
		resetManager()
		cfg := testConfig(t, schema.NoneBackend)

		var wg sync.WaitGroup
		for range 8 {
			wg.Go(func() {
				assert.NoError(t, InitStores(cfg))
				_ = Manager.GetRecordStore()
			})
		}
		wg.Wait()
		CloseStores()
	})
}

// TestClearHistory tests clearing per backend.
func TestClearHistory(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.db")
		store, err := NewHistoryStore(schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearHistory(schema.SQLiteBackend, GetHistoryDBFilePath(), path))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))

		// Missing files are fine
		assert.NoError(t, ClearHistory(schema.SQLiteBackend, path, ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.SQLiteBackend, "", ""))
	})

	t.Run("unknown backend", func(t *testing.T) {
		assert.Error(t, ClearHistory("oracle", "", ""))
	})
}

// TestPrintHistoryStatus tests the status report.
func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{Backend: "none"})
	assert.Equal(t, "History Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:       "sqlite",
		Connected:     true,
		TotalRuns:     2,
		LastRunID:     2,
		LastRunTime:   time.Now(),
		OldestRunTime: time.Now(),
		TotalDayRows:  6,
		TableSizes:    map[string]int64{dayScoresTable: 6, runsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2\n")
	assert.Contains(t, out, "Total Day Scores: 6\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(dayScoresTable)), bytes.Index(buf.Bytes(), []byte(runsTable+":")))
}

// TestExecuteHistoryExport tests exporting with a mocked history store.
func TestExecuteHistoryExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteHistoryExport(&bytes.Buffer{}, &MockStoreManager{}, "")
		assert.ErrorContains(t, err, "--output-file")
	})

	t.Run("nothing to export", func(t *testing.T) {
		history := &MockHistoryStore{}
		history.On("GetStatus").Return(schema.HistoryStatus{Backend: "none"}, nil)
		mgr := &MockStoreManager{}
		mgr.On("GetHistoryStore").Return(history)
		mgr.On("GetProfileStore").Return(NewProfileStore(t.TempDir()))

		err := ExecuteHistoryExport(&bytes.Buffer{}, mgr, filepath.Join(t.TempDir(), "out"))
		assert.ErrorContains(t, err, "no history or profile data")
	})

	t.Run("status failure", func(t *testing.T) {
		history := &MockHistoryStore{}
		history.On("GetStatus").Return(schema.HistoryStatus{}, errors.New("boom"))
		mgr := &MockStoreManager{}
		mgr.On("GetHistoryStore").Return(history)

		err := ExecuteHistoryExport(&bytes.Buffer{}, mgr, "out")
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("runs scores and logs", func(t *testing.T) {
		now := time.Now()
		history := &MockHistoryStore{}
		history.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true, TotalRuns: 1, TotalDayRows: 1}, nil)
		history.On("GetAllRuns").Return([]schema.RunRecord{{RunID: 1, StartTime: now, Command: "scan", TargetDate: "2026-02-11"}}, nil)
		history.On("GetAllDayScores").Return([]schema.DayScoreRecord{{RunID: 1, Date: "2026-02-11", EngineVersion: "v1", RecordedAt: now}}, nil)

		profiles := NewProfileStore(t.TempDir())
		require.NoError(t, profiles.Save(schema.EngineV1, schema.Profile{Meta: schema.ProfileMeta{
			ScoringLog: []schema.ScoringLogEntry{{DaySignals: schema.DaySignals{Date: "2026-02-11"}, XP: 40, Grade: "A"}},
		}}))

		mgr := &MockStoreManager{}
		mgr.On("GetHistoryStore").Return(history)
		mgr.On("GetProfileStore").Return(profiles)

		prefix := filepath.Join(t.TempDir(), "export")
		var buf bytes.Buffer
		require.NoError(t, ExecuteHistoryExport(&buf, mgr, prefix))

		for _, suffix := range []string{".runs.parquet", ".day_scores.parquet", ".scoring_log.parquet"} {
			_, err := os.Stat(prefix + suffix)
			assert.NoError(t, err, suffix)
		}
		assert.Contains(t, buf.String(), "Exported 1 runs")
		assert.Contains(t, buf.String(), "Exported 1 scoring log entries")
		history.AssertExpectations(t)
		mgr.AssertExpectations(t)
	})
}
