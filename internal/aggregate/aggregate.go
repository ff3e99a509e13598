// Package aggregate runs the per-file pass of the metrics pipeline: scan a
// log file, classify every line, and fold the hits into minute-level counts.
package aggregate

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nodesift/nodesift/internal/classify"
	"github.com/nodesift/nodesift/internal/fileio"
	"github.com/nodesift/nodesift/internal/model"
)

// File reads one log file (plain or gzip) and returns its aggregated metric
// events, tagged with the file's base name. The count map lives and dies
// inside this call; nothing is shared across files, so callers may process
// files in any order and re-run over the same file safely.
func File(path string, c *classify.Classifier, log zerolog.Logger) ([]model.MetricEvent, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	counts := make(map[string]map[string]int64)

	var lineNo int64
	sc := r.Lines()
	for sc.Scan() {
		lineNo++
		if sc.Truncated() {
			log.Warn().Str("file", filepath.Base(path)).Int64("line", lineNo).
				Msg("skipping oversized log line")
			continue
		}
		line := strings.ToValidUTF8(sc.Text(), "�")
		ev, ok := c.Classify(line)
		if !ok {
			continue
		}
		byMetric := counts[ev.Bucket]
		if byMetric == nil {
			byMetric = make(map[string]int64)
			counts[ev.Bucket] = byMetric
		}
		byMetric[ev.Metric]++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return flatten(counts, filepath.Base(path)), nil
}

// flatten converts the nested count map into a stable, sorted event slice.
func flatten(counts map[string]map[string]int64, sourceFile string) []model.MetricEvent {
	events := make([]model.MetricEvent, 0, len(counts))
	for bucket, byMetric := range counts {
		for metric, n := range byMetric {
			events = append(events, model.MetricEvent{
				Timestamp:  bucket,
				Category:   classify.Category(metric),
				Metric:     metric,
				Count:      n,
				SourceFile: sourceFile,
			})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp < events[j].Timestamp
		}
		return events[i].Metric < events[j].Metric
	})
	return events
}
