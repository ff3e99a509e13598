// Package memsplit recovers runtime gauge samples from geth memstats dumps.
// The input format is not line-oriented: ISO-8601 timestamps with a zone
// offset are interleaved with pretty-printed JSON blobs, so the file is
// split on the timestamp pattern and walked as (timestamp, blob) pairs.
package memsplit

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nodesift/nodesift/internal/fileio"
	"github.com/nodesift/nodesift/internal/model"
)

var timestampPattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2})`)

// gaugeBlob is the subset of a runtime.MemStats JSON dump the store keeps.
// Pointers distinguish absent fields from zero values: a blob missing any of
// the three is dropped, not defaulted.
type gaugeBlob struct {
	Alloc *float64 `json:"Alloc"`
	Sys   *float64 `json:"Sys"`
	NumGC *float64 `json:"NumGC"`
}

// File reads one memstats file (plain or gzip) and returns its gauge
// records. Malformed or incomplete blobs are skipped with a warning, and a
// truncated final fragment with no following blob is discarded.
func File(path string, log zerolog.Logger) ([]model.MemstatsRecord, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	return Split(string(content), filepath.Base(path), log), nil
}

// Split parses raw memstats content into gauge records.
func Split(content, sourceFile string, log zerolog.Logger) []model.MemstatsRecord {
	parts := splitKeepingTimestamps(content)
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	var records []model.MemstatsRecord
	for i := 0; i+1 < len(parts); i += 2 {
		ts := parts[i]
		blob := strings.TrimSpace(parts[i+1])

		var g gaugeBlob
		if err := json.Unmarshal([]byte(blob), &g); err != nil {
			log.Warn().Str("file", sourceFile).Str("timestamp", ts).Err(err).Msg("skipping malformed memstats blob")
			continue
		}
		if g.Alloc == nil || g.Sys == nil || g.NumGC == nil {
			log.Warn().Str("file", sourceFile).Str("timestamp", ts).Msg("skipping memstats blob with missing fields")
			continue
		}

		records = append(records, model.MemstatsRecord{
			Timestamp:  ts,
			AllocBytes: int64(*g.Alloc),
			SysBytes:   int64(*g.Sys),
			NumGC:      int64(*g.NumGC),
			SourceFile: sourceFile,
		})
	}
	return records
}

// splitKeepingTimestamps splits content on the timestamp pattern while
// keeping the matched timestamps as their own fragments, so the result
// alternates timestamp, blob, timestamp, blob.
func splitKeepingTimestamps(content string) []string {
	locs := timestampPattern.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	parts := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		parts = append(parts, content[prev:loc[0]])
		parts = append(parts, content[loc[0]:loc[1]])
		prev = loc[1]
	}
	parts = append(parts, content[prev:])
	// An empty segment before the first timestamp is dropped here; Split
	// additionally drops a whitespace-only one.
	if parts[0] == "" {
		return parts[1:]
	}
	return parts
}
