package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodesift/nodesift/internal/model"
)

// InsertMetrics writes one file's aggregated events in a single transaction.
// Rows whose (timestamp, metric_name, source_file) key already exists are
// silently ignored, which is what makes re-runs over unchanged files no-ops.
func (s *Store) InsertMetrics(ctx context.Context, events []model.MetricEvent) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO geth_metrics (timestamp, metric_category, metric_name, count, source_file) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, ev := range events {
		res, err := stmt.ExecContext(ctx, ev.Timestamp, ev.Category, ev.Metric, ev.Count, ev.SourceFile)
		if err != nil {
			return 0, fmt.Errorf("insert metric %s@%s: %w", ev.Metric, ev.Timestamp, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

// InsertMemstats writes one file's gauge records in a single transaction,
// keyed on (timestamp, source_file) with the same ignore-on-conflict
// semantics as the metric table.
func (s *Store) InsertMemstats(ctx context.Context, records []model.MemstatsRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO memstats (timestamp, alloc_bytes, sys_bytes, num_gc, source_file) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, r.Timestamp, r.AllocBytes, r.SysBytes, r.NumGC, r.SourceFile)
		if err != nil {
			return 0, fmt.Errorf("insert memstats %s: %w", r.Timestamp, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

// BuildSummary drops and recreates the summary table from the raw metric
// rows, then indexes it for timestamp and metric-name queries.
func (s *Store) BuildSummary(ctx context.Context, log zerolog.Logger) error {
	start := time.Now()

	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS geth_metrics_summary"); err != nil {
		return fmt.Errorf("drop summary: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE geth_metrics_summary AS
		SELECT
			timestamp,
			metric_category,
			metric_name,
			SUM(count) AS total_count
		FROM geth_metrics
		GROUP BY 1, 2, 3`); err != nil {
		return fmt.Errorf("build summary: %w", err)
	}

	for _, idx := range []string{
		"CREATE INDEX IF NOT EXISTS idx_summary_timestamp ON geth_metrics_summary (timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_summary_metric_name ON geth_metrics_summary (metric_name)",
	} {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create summary index: %w", err)
		}
	}

	log.Info().Dur("duration", time.Since(start)).Msg("summary table rebuilt")
	return nil
}
