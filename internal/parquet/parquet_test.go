package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/dailyxp/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []Run {
	start := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"date":"2026-02-11"}`
	return []Run{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, Command: "scan", TargetDate: "2026-02-11", ConfigParams: &params},
		{RunID: 2, StartTime: start.Add(time.Hour), Command: "scan", TargetDate: "2026-02-12"},
	}
}

// TestStructTags tests that every struct produces the expected parquet columns.
func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"run", new(Run), []string{"run_id", "start_time", "end_time", "run_duration_ms", "command", "target_date", "config_params"}},
		{"day score", new(DayScore), []string{"run_id", "score_date", "engine_version", "raw_score", "xp", "grade", "xp_total", "level", "class", "recorded_at"}},
		{"scoring log", new(ScoringLogEntry), []string{"engine_version", "date", "raw_score", "builder_points", "ascending_chain", "momentum_chain", "xp", "grade"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "Column %s should exist in schema", col)
			}
		})
	}
}

// TestWriteRunsParquet tests writing runs and reading them back, including nullable fields.
func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()

	require.NoError(t, WriteRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Run](file)
	defer func() { _ = reader.Close() }()

	readData := make([]Run, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, int64(1), readData[0].RunID)
	assert.Equal(t, "scan", readData[0].Command)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *readData[0].EndTime, time.Nanosecond)
	require.NotNil(t, readData[0].RunDurationMs)
	assert.Equal(t, int32(1500), *readData[0].RunDurationMs)

	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Nil(t, readData[1].ConfigParams)
}

// TestWriteDayScoresParquet tests writing converted day score rows.
func TestWriteDayScoresParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "day_scores.parquet")
	rows := ConvertDayScoreRecords([]schema.DayScoreRecord{
		{RunID: 1, Date: "2026-02-11", EngineVersion: "v1", RawScore: 55, XP: 60.5, Grade: "A+", XPTotal: 100.5, Level: 2, Class: "Builder", RecordedAt: time.Now()},
		{RunID: 1, Date: "2026-02-11", EngineVersion: "v3", RawScore: 55, XP: 61, Grade: "B", XPTotal: 61, Level: 1, Class: "Scribe", RecordedAt: time.Now()},
	})

	require.NoError(t, WriteDayScoresParquet(rows, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[DayScore](file)
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(2), reader.NumRows())
}

// TestConvertRunRecords tests conversion from schema records.
func TestConvertRunRecords(t *testing.T) {
	params := `{"x":1}`
	runs := ConvertRunRecords([]schema.RunRecord{{RunID: 7, Command: "rescore", TargetDate: "2026-02-11", ConfigParams: &params}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].RunID)
	assert.Equal(t, "rescore", runs[0].Command)
	assert.Equal(t, &params, runs[0].ConfigParams)

	assert.Empty(t, ConvertRunRecords(nil))
}

// TestConvertScoringLog tests flattening category points and version-specific fields.
func TestConvertScoringLog(t *testing.T) {
	entries := []schema.ScoringLogEntry{{
		DaySignals: schema.DaySignals{
			Date:     "2026-02-11",
			RawScore: 55,
			CategoryPoints: map[schema.Category]int{
				schema.BuilderCategory: 30,
				schema.ScribeCategory:  25,
			},
		},
		AscendingChain:  2,
		ChainMultiplier: 1.1,
		XP:              60.5,
		Grade:           "A+",
	}}

	rows := ConvertScoringLog(schema.EngineV1, entries)
	require.Len(t, rows, 1)
	assert.Equal(t, "v1", rows[0].EngineVersion)
	assert.Equal(t, int32(30), rows[0].BuilderPoints)
	assert.Equal(t, int32(25), rows[0].ScribePoints)
	assert.Equal(t, int32(0), rows[0].StrategistPoints)
	assert.Equal(t, int32(2), rows[0].AscendingChain)
	assert.Equal(t, 60.5, rows[0].XP)

	path := filepath.Join(t.TempDir(), "log.parquet")
	require.NoError(t, WriteScoringLogParquet(rows, path))
}

// TestWriteParquetBadPath tests that an unwritable path is reported.
func TestWriteParquetBadPath(t *testing.T) {
	err := WriteRunsParquet(sampleRuns(), filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}
