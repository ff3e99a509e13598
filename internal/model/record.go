package model

// MetricEvent is one aggregated count cell produced by the log aggregator:
// the number of matching log lines for a metric within a single minute of a
// single source file.
type MetricEvent struct {
	Timestamp  string // minute bucket, "2006-01-02 15:04"
	Category   string // leading token of Metric up to the first underscore
	Metric     string
	Count      int64
	SourceFile string
}

// MemstatsRecord is one runtime gauge sample recovered from a memstats log.
type MemstatsRecord struct {
	Timestamp  string
	AllocBytes int64
	SysBytes   int64
	NumGC      int64
	SourceFile string
}

// SnapshotSummary is the per-envelope record written to the snapshots stream.
// Field names match the shredded output format consumed downstream.
type SnapshotSummary struct {
	SnapshotTimestamp  string `json:"snapshot_timestamp"`
	PendingCount       int64  `json:"pending_count"`
	QueuedCount        int64  `json:"queued_count"`
	OriginalSourceFile string `json:"original_source_file"`
}

// Provenance keys injected into every flattened transaction record.
const (
	TxKeySnapshotTimestamp  = "_snapshot_timestamp"
	TxKeyOriginalSourceFile = "_original_source_file"
	TxKeyPoolStatus         = "_pool_status"
)

// Pool status values for flattened transactions.
const (
	PoolStatusPending = "pending"
	PoolStatusQueued  = "queued"
)
