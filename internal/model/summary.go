package model

import "time"

// RunSummary captures metrics from a single directory-level processing run.
type RunSummary struct {
	BatchID       string
	FilesFound    int
	FilesLoaded   int
	FilesSkipped  int
	FilesFailed   int
	RowsInserted  int64
	DurationLoad  time.Duration
	DurationFinal time.Duration
	DurationTotal time.Duration
}

// ShredResult captures per-file metrics from a snapshot shredding run.
type ShredResult struct {
	LinesRead           int64
	LinesSkipped        int64
	SnapshotsWritten    int64
	TransactionsWritten int64
	PartitionDate       string
	TransactionsPath    string
	SnapshotsPath       string
	Duration            time.Duration
}
