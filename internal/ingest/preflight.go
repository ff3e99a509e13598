package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nodesift/nodesift/internal/normalize"
	"github.com/nodesift/nodesift/internal/store"
)

// PreflightResult holds the provenance resolved for a file before loading.
type PreflightResult struct {
	FileName string
	SHA256   string
	Size     int64
}

// preflight stats and hashes the file, then registers it in the run's
// source_files table.
func preflight(ctx context.Context, st *store.Store, path string, batchID uuid.UUID, kind string) (*PreflightResult, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	name := filepath.Base(path)
	if err := st.RegisterSourceFile(ctx, name, sha, stat.Size(), batchID, kind); err != nil {
		return nil, fmt.Errorf("preflight register: %w", err)
	}

	return &PreflightResult{FileName: name, SHA256: sha, Size: stat.Size()}, nil
}
