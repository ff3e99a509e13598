// Package shred flattens raw txpool snapshot logs into partitioned,
// per-transaction and per-snapshot gzip JSONL output.
package shred

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodesift/nodesift/internal/fileio"
	"github.com/nodesift/nodesift/internal/model"
	"github.com/nodesift/nodesift/internal/normalize"
)

var errOversized = errors.New("snapshot string over size limit")

// Default size guards, matching the collector's observed worst cases.
const (
	DefaultWarnLineBytes    = 50 * 1024 * 1024
	DefaultMaxSnapshotBytes = 200 * 1024 * 1024
)

// envelope is one line of a raw snapshot log. snapshot stays raw until
// resolveSnapshot decides whether it is an object or a double-encoded string.
type envelope struct {
	Timestamp    string          `json:"timestamp"`
	PendingCount json.RawMessage `json:"pending_count"`
	QueuedCount  json.RawMessage `json:"queued_count"`
	Snapshot     json.RawMessage `json:"snapshot"`
}

// Shredder holds the size guards for snapshot processing.
type Shredder struct {
	// WarnLineBytes is the line length above which a warning is logged.
	WarnLineBytes int
	// MaxSnapshotBytes bounds the double-encoded snapshot strings that will
	// be parsed; longer ones are skipped.
	MaxSnapshotBytes int
}

// New returns a Shredder with the default size guards.
func New() *Shredder {
	return &Shredder{
		WarnLineBytes:    DefaultWarnLineBytes,
		MaxSnapshotBytes: DefaultMaxSnapshotBytes,
	}
}

// File shreds one raw snapshot file into the transactions and snapshots
// output trees, partitioned by the date in the input file name. Malformed
// lines are logged and skipped; only I/O failures on the input or outputs
// abort the file.
func (sh *Shredder) File(inputPath, transactionsDir, snapshotsDir string, log zerolog.Logger) (*model.ShredResult, error) {
	start := time.Now()

	date := normalize.DateFromFileName(inputPath)
	if date == "" {
		date = UnknownPartition
		log.Warn().Str("file", inputPath).Str("partition", date).
			Msg("no YYYY-MM-DD date in file name, using fallback partition")
	}

	in, err := fileio.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	baseName := filepath.Base(inputPath)

	txOut, err := newOutputWriter(filepath.Join(transactionsDir, partitionDir(date)), baseName)
	if err != nil {
		return nil, err
	}
	defer txOut.Close()

	snapOut, err := newOutputWriter(filepath.Join(snapshotsDir, partitionDir(date)), baseName)
	if err != nil {
		return nil, err
	}
	defer snapOut.Close()

	res := &model.ShredResult{
		PartitionDate:    date,
		TransactionsPath: txOut.path(),
		SnapshotsPath:    snapOut.path(),
	}

	sc := in.Lines()
	var lineNo int64
	for sc.Scan() {
		lineNo++
		if sc.Truncated() {
			res.LinesRead++
			res.LinesSkipped++
			log.Warn().Int64("line", lineNo).Msg("skipping snapshot line over size cap")
			continue
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		res.LinesRead++

		if len(line) > sh.WarnLineBytes {
			log.Warn().Int64("line", lineNo).Int("bytes", len(line)).Msg("oversized snapshot line")
		}

		if err := sh.shredLine(line, lineNo, inputPath, txOut, snapOut, res, log); err != nil {
			return res, err
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("scan %s: %w", inputPath, err)
	}

	// Close explicitly so flush errors surface; the deferred closes become
	// no-ops on the already-closed writers' files and report nothing new.
	if err := txOut.Close(); err != nil {
		return res, fmt.Errorf("close transactions output: %w", err)
	}
	if err := snapOut.Close(); err != nil {
		return res, fmt.Errorf("close snapshots output: %w", err)
	}

	res.Duration = time.Since(start)
	log.Info().
		Str("file", baseName).
		Str("partition", date).
		Int64("snapshots", res.SnapshotsWritten).
		Int64("transactions", res.TransactionsWritten).
		Int64("skipped", res.LinesSkipped).
		Dur("duration", res.Duration).
		Msg("shred complete")
	return res, nil
}

// shredLine processes one envelope: the summary record is always emitted,
// transaction extraction is best-effort.
func (sh *Shredder) shredLine(line []byte, lineNo int64, inputPath string, txOut, snapOut *outputWriter, res *model.ShredResult, log zerolog.Logger) error {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		res.LinesSkipped++
		log.Warn().Int64("line", lineNo).Err(err).
			Str("content", truncate(line, 200)).
			Msg("skipping malformed snapshot line")
		return nil
	}

	summary := model.SnapshotSummary{
		SnapshotTimestamp:  env.Timestamp,
		PendingCount:       normalize.ParseCount(env.PendingCount),
		QueuedCount:        normalize.ParseCount(env.QueuedCount),
		OriginalSourceFile: inputPath,
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal snapshot summary: %w", err)
	}
	if err := snapOut.writeLine(data); err != nil {
		return fmt.Errorf("write snapshot summary: %w", err)
	}
	res.SnapshotsWritten++

	pool, ok, err := resolveSnapshot(env.Snapshot, sh.MaxSnapshotBytes)
	if err != nil {
		if errors.Is(err, errOversized) {
			log.Warn().Int64("line", lineNo).Int("bytes", len(env.Snapshot)).
				Msg("skipping oversized inner snapshot string")
		} else {
			log.Warn().Int64("line", lineNo).Err(err).
				Str("content", truncate(env.Snapshot, 200)).
				Msg("skipping malformed inner snapshot")
		}
		return nil
	}
	if !ok {
		return nil
	}

	emit := func(fields map[string]any) error {
		data, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return txOut.writeLine(data)
	}

	for _, p := range []struct {
		key    string
		status string
	}{
		{"pending", model.PoolStatusPending},
		{"queued", model.PoolStatusQueued},
	} {
		n, err := flattenPool(pool[p.key], p.status, env.Timestamp, inputPath, emit)
		res.TransactionsWritten += n
		if err != nil {
			return fmt.Errorf("write %s transactions: %w", p.status, err)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
