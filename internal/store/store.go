// Package store is the SQLite sink for aggregated node metrics. A store is
// rebuilt from scratch on every run: Open deletes any existing database file
// before applying the schema, and inserts within a run are idempotent
// (INSERT OR IGNORE), so re-processing an unchanged file never changes counts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	embedsql "github.com/nodesift/nodesift/internal/sql"
)

// Store wraps the metrics database handle.
type Store struct {
	db *sql.DB
}

// Open removes any existing database file at path, creates a fresh one, and
// applies the embedded schema. The run-level contract is a full rebuild, not
// an incremental update.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove existing store: %w", err)
		}
		log.Info().Str("path", path).Msg("removed existing store file")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &Store{db: db}
	if err := s.applySchema(ctx, log); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// applySchema runs all embedded schema files in filename order. DDL uses
// IF NOT EXISTS throughout, so applying twice is harmless.
func (s *Store) applySchema(ctx context.Context, log zerolog.Logger) error {
	entries, err := fs.ReadDir(embedsql.Schema, "schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		name := entry.Name()
		data, err := fs.ReadFile(embedsql.Schema, "schema/"+name)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("execute schema %s: %w", name, err)
		}
	}

	log.Info().Int("count", len(entries)).Msg("schema applied")
	return nil
}

// DB exposes the underlying handle for queries in tests and callers that
// need ad hoc reads.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
