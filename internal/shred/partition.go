package shred

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/nodesift/nodesift/internal/normalize"
)

// UnknownPartition is the partition used when the input file name carries no
// parseable YYYY-MM-DD date.
const UnknownPartition = "unknown_date"

// partitionDir returns the dated sub-directory name for an input file.
func partitionDir(date string) string {
	return "snapshot_date=" + date
}

// outputWriter is a gzip JSONL sink for one partition file. Records are
// flushed line by line; a failure mid-file loses only unwritten lines.
type outputWriter struct {
	file *os.File
	gz   *gzip.Writer
}

// newOutputWriter creates <dir>/part-<safe>.jsonl.gz, making the partition
// directory as needed.
func newOutputWriter(dir, sourceName string) (*outputWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create partition dir: %w", err)
	}

	path := filepath.Join(dir, "part-"+normalize.SafeFileName(sourceName)+".jsonl.gz")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	return &outputWriter{file: f, gz: gzip.NewWriter(f)}, nil
}

func (w *outputWriter) path() string {
	return w.file.Name()
}

// writeLine appends one record plus newline.
func (w *outputWriter) writeLine(data []byte) error {
	if _, err := w.gz.Write(data); err != nil {
		return err
	}
	_, err := w.gz.Write([]byte{'\n'})
	return err
}

// Close flushes the gzip stream and closes the file. Safe to call on every
// exit path; the first error wins but the file is always closed.
func (w *outputWriter) Close() error {
	gzErr := w.gz.Close()
	fileErr := w.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
