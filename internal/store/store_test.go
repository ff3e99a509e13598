package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodesift/nodesift/internal/model"
	"github.com/nodesift/nodesift/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.db")
	st, err := store.Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func countRows(t *testing.T, st *store.Store, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func sampleEvents(sourceFile string) []model.MetricEvent {
	return []model.MetricEvent{
		{Timestamp: "2025-05-13 02:01", Category: "invalidation", Metric: "invalidation_nonce_low", Count: 2, SourceFile: sourceFile},
		{Timestamp: "2025-05-13 02:01", Category: "mempool", Metric: "mempool_underpriced", Count: 1, SourceFile: sourceFile},
		{Timestamp: "2025-05-13 02:02", Category: "invalidation", Metric: "invalidation_nonce_low", Count: 5, SourceFile: sourceFile},
	}
}

func TestOpen_RemovesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.db")

	st, err := store.Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	_, err = st.InsertMetrics(ctx, sampleEvents("a.log"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopen: the old file is deleted, so the table starts empty.
	st, err = store.Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer st.Close()
	assert.Zero(t, countRows(t, st, "geth_metrics"))
}

func TestOpen_FreshSchema(t *testing.T) {
	st := setupStore(t)
	for _, table := range []string{"geth_metrics", "memstats", "source_files"} {
		assert.Zero(t, countRows(t, st, table), table)
	}
}

func TestInsertMetrics_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	events := sampleEvents("geth_2025-05-13.log")

	n, err := st.InsertMetrics(ctx, events)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// Re-inserting the same file's events is a no-op, never an increment.
	n, err = st.InsertMetrics(ctx, events)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.EqualValues(t, 3, countRows(t, st, "geth_metrics"))

	var count int64
	require.NoError(t, st.DB().QueryRow(
		"SELECT count FROM geth_metrics WHERE timestamp = ? AND metric_name = ? AND source_file = ?",
		"2025-05-13 02:01", "invalidation_nonce_low", "geth_2025-05-13.log").Scan(&count))
	assert.EqualValues(t, 2, count, "stored count must not change on re-insert")
}

func TestInsertMetrics_PerFileKeys(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)

	_, err := st.InsertMetrics(ctx, sampleEvents("a.log"))
	require.NoError(t, err)
	_, err = st.InsertMetrics(ctx, sampleEvents("b.log"))
	require.NoError(t, err)

	// Same cells from a different source file are distinct rows.
	assert.EqualValues(t, 6, countRows(t, st, "geth_metrics"))
}

func TestBuildSummary(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)

	_, err := st.InsertMetrics(ctx, sampleEvents("a.log"))
	require.NoError(t, err)
	_, err = st.InsertMetrics(ctx, sampleEvents("b.log"))
	require.NoError(t, err)

	require.NoError(t, st.BuildSummary(ctx, zerolog.Nop()))

	// Summary groups across source files and sums counts.
	var total int64
	require.NoError(t, st.DB().QueryRow(
		"SELECT total_count FROM geth_metrics_summary WHERE timestamp = ? AND metric_name = ?",
		"2025-05-13 02:01", "invalidation_nonce_low").Scan(&total))
	assert.EqualValues(t, 4, total)

	var summaryRows int64
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM geth_metrics_summary").Scan(&summaryRows))
	assert.EqualValues(t, 3, summaryRows)

	// Rebuild must be safe (drop and recreate).
	require.NoError(t, st.BuildSummary(ctx, zerolog.Nop()))
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM geth_metrics_summary").Scan(&summaryRows))
	assert.EqualValues(t, 3, summaryRows)
}

func TestInsertMemstats_KeyedByTimestampAndFile(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)

	records := []model.MemstatsRecord{
		{Timestamp: "2025-05-13T02:01:00+00:00", AllocBytes: 100, SysBytes: 200, NumGC: 3, SourceFile: "memstats_a.log"},
		{Timestamp: "2025-05-13T02:01:10+00:00", AllocBytes: 110, SysBytes: 210, NumGC: 4, SourceFile: "memstats_a.log"},
	}
	n, err := st.InsertMemstats(ctx, records)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// Same timestamps in a second run of the same file: ignored.
	n, err = st.InsertMemstats(ctx, records)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Same timestamp from an overlapping rotation of a different file: kept.
	overlap := []model.MemstatsRecord{
		{Timestamp: "2025-05-13T02:01:00+00:00", AllocBytes: 100, SysBytes: 200, NumGC: 3, SourceFile: "memstats_b.log"},
	}
	n, err = st.InsertMemstats(ctx, overlap)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 3, countRows(t, st, "memstats"))
}

func TestSourceFileRegistry(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	batch := uuid.New()

	require.NoError(t, st.RegisterSourceFile(ctx, "geth_a.log", "deadbeef", 1024, batch, "geth"))
	require.NoError(t, st.FinishSourceFile(ctx, "geth_a.log", batch, "loaded", 42))

	var status string
	var rows int64
	require.NoError(t, st.DB().QueryRow(
		"SELECT status, rows_loaded FROM source_files WHERE file_name = ? AND batch_id = ?",
		"geth_a.log", batch.String()).Scan(&status, &rows))
	assert.Equal(t, "loaded", status)
	assert.EqualValues(t, 42, rows)
}

func TestOpen_BadPath(t *testing.T) {
	// Opening inside a nonexistent directory must fail cleanly.
	_, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "no", "such", "dir", "m.db"), zerolog.Nop())
	require.Error(t, err)
}
