package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RegisterSourceFile records a file in the per-run provenance registry
// before its rows are loaded.
func (s *Store) RegisterSourceFile(ctx context.Context, name, sha string, size int64, batchID uuid.UUID, kind string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO source_files (file_name, sha256, size_bytes, batch_id, kind) VALUES (?, ?, ?, ?, ?)",
		name, sha, size, batchID.String(), kind)
	if err != nil {
		return fmt.Errorf("register source file %s: %w", name, err)
	}
	return nil
}

// FinishSourceFile marks a registered file loaded (or failed) and records
// how many rows it contributed.
func (s *Store) FinishSourceFile(ctx context.Context, name string, batchID uuid.UUID, status string, rows int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE source_files SET status = ?, rows_loaded = ?, loaded_at = ? WHERE file_name = ? AND batch_id = ?",
		status, rows, time.Now().UTC().Format(time.RFC3339), name, batchID.String())
	if err != nil {
		return fmt.Errorf("update source file %s: %w", name, err)
	}
	return nil
}
