package config

import (
	"fmt"
	"os"
)

// DefaultYear fills in the year component of geth's short log timestamps
// when the source file name carries no date.
const DefaultYear = "2025"

// Config holds all runtime configuration for a nodesift run.
type Config struct {
	LogsDir     string // input directory for metrics/memstats runs
	DBPath      string // SQLite store path
	FilePath    string // single input file for shred/plan
	OutDir      string // shred output root
	RulesFile   string // optional YAML classification rules
	DefaultYear string
	LogFormat   string // "text" or "json"
}

// ValidateLogsRun checks the fields a directory-level store run needs.
func (c *Config) ValidateLogsRun() error {
	if c.LogsDir == "" {
		return fmt.Errorf("--logs is required")
	}
	stat, err := os.Stat(c.LogsDir)
	if err != nil {
		return fmt.Errorf("log directory not accessible: %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", c.LogsDir)
	}
	if c.DBPath == "" {
		return fmt.Errorf("--db or NODESIFT_DB is required")
	}
	return nil
}

// ValidateShred checks the fields the shredder needs.
func (c *Config) ValidateShred() error {
	if err := c.ValidateFile(); err != nil {
		return err
	}
	if c.OutDir == "" {
		return fmt.Errorf("--out is required")
	}
	return nil
}

// ValidateFile checks that the single-file input exists.
func (c *Config) ValidateFile() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}
