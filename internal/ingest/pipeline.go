// Package ingest orchestrates directory-level processing runs: discover
// input files, run the per-file transform, load the store, and finalize.
// One file failing is logged and skipped; the run carries on.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nodesift/nodesift/internal/aggregate"
	"github.com/nodesift/nodesift/internal/classify"
	"github.com/nodesift/nodesift/internal/config"
	"github.com/nodesift/nodesift/internal/memsplit"
	"github.com/nodesift/nodesift/internal/model"
	"github.com/nodesift/nodesift/internal/normalize"
	"github.com/nodesift/nodesift/internal/store"
)

// File name prefixes the collectors use for their daily dumps.
const (
	metricsFilePrefix  = "geth"
	memstatsFilePrefix = "memstats"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// RunMetrics executes the full trace-metrics run: discover geth log files,
// aggregate each one, load the metric table, then rebuild the summary.
func RunMetrics(ctx context.Context, st *store.Store, log zerolog.Logger, cfg *config.Config, rules []classify.Rule) (*model.RunSummary, error) {
	return run(ctx, st, log, cfg, metricsFilePrefix, func(ctx context.Context, path string) (int64, error) {
		year := normalize.YearFromFileName(filepath.Base(path), cfg.DefaultYear)
		events, err := aggregate.File(path, classify.New(rules, year), log)
		if err != nil {
			return 0, err
		}
		if len(events) == 0 {
			log.Info().Str("file", filepath.Base(path)).Msg("no relevant metrics found")
			return 0, nil
		}
		return st.InsertMetrics(ctx, events)
	}, func(ctx context.Context) error {
		return st.BuildSummary(ctx, log)
	})
}

// RunMemstats executes the gauge run: discover memstats files, split each
// one, and load the memstats table. No summary table is derived.
func RunMemstats(ctx context.Context, st *store.Store, log zerolog.Logger, cfg *config.Config) (*model.RunSummary, error) {
	return run(ctx, st, log, cfg, memstatsFilePrefix, func(ctx context.Context, path string) (int64, error) {
		records, err := memsplit.File(path, log)
		if err != nil {
			return 0, err
		}
		if len(records) == 0 {
			log.Info().Str("file", filepath.Base(path)).Msg("no valid memstats found")
			return 0, nil
		}
		return st.InsertMemstats(ctx, records)
	}, nil)
}

// run is the shared per-file loop. loadFile aggregates and inserts one
// file's rows, returning how many landed; finalize, when non-nil, runs once
// after all files (the metrics run derives its summary table there).
func run(ctx context.Context, st *store.Store, log zerolog.Logger, cfg *config.Config, prefix string, loadFile func(context.Context, string) (int64, error), finalize func(context.Context) error) (*model.RunSummary, error) {
	totalStart := time.Now()
	batchID := uuid.New()

	files, err := discoverFiles(cfg.LogsDir, prefix)
	if err != nil {
		return nil, &PipelineError{Phase: "discover", Err: err}
	}

	summary := &model.RunSummary{
		BatchID:    batchID.String(),
		FilesFound: len(files),
	}
	log.Info().Int("files", len(files)).Str("dir", cfg.LogsDir).Str("batch_id", summary.BatchID).
		Msg("starting run")

	loadStart := time.Now()
	for _, path := range files {
		base := filepath.Base(path)
		fileLog := log.With().Str("file", base).Logger()
		fileLog.Debug().Msg("processing file")

		pf, err := preflight(ctx, st, path, batchID, prefix)
		if err != nil {
			fileLog.Error().Err(err).Msg("preflight failed, skipping file")
			summary.FilesFailed++
			continue
		}

		rows, err := loadFile(ctx, path)
		if err != nil {
			fileLog.Error().Err(err).Msg("file failed, continuing run")
			summary.FilesFailed++
			if err := st.FinishSourceFile(ctx, base, batchID, "failed", 0); err != nil {
				fileLog.Warn().Err(err).Msg("registry update failed")
			}
			continue
		}

		if rows == 0 {
			summary.FilesSkipped++
			if err := st.FinishSourceFile(ctx, base, batchID, "empty", 0); err != nil {
				fileLog.Warn().Err(err).Msg("registry update failed")
			}
			continue
		}

		summary.FilesLoaded++
		summary.RowsInserted += rows
		fileLog.Info().Int64("rows", rows).Str("sha256", pf.SHA256).Msg("file loaded")
		if err := st.FinishSourceFile(ctx, base, batchID, "loaded", rows); err != nil {
			fileLog.Warn().Err(err).Msg("registry update failed")
		}
	}
	summary.DurationLoad = time.Since(loadStart)

	finalStart := time.Now()
	if finalize != nil {
		if err := finalize(ctx); err != nil {
			return summary, &PipelineError{Phase: "finalize", Err: err}
		}
	}
	summary.DurationFinal = time.Since(finalStart)
	summary.DurationTotal = time.Since(totalStart)

	log.Info().
		Int("files_loaded", summary.FilesLoaded).
		Int("files_skipped", summary.FilesSkipped).
		Int("files_failed", summary.FilesFailed).
		Int64("rows_inserted", summary.RowsInserted).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("run complete")
	return summary, nil
}

// discoverFiles lists regular files in dir whose names start with prefix,
// sorted by name so daily dumps load in date order.
func discoverFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
