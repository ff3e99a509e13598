package shred

import (
	"encoding/json"
	"fmt"

	"github.com/nodesift/nodesift/internal/fileio"
	"github.com/nodesift/nodesift/internal/normalize"
)

// PlanResult is the dry-run report for a snapshot file: what a shred of it
// would produce, without writing anything.
type PlanResult struct {
	PartitionDate  string
	LinesRead      int64
	ValidEnvelopes int64
	MalformedLines int64
	PendingTotal   int64
	QueuedTotal    int64
}

// Plan scans a snapshot file and tallies envelope validity and the reported
// pool counts.
func (sh *Shredder) Plan(inputPath string) (*PlanResult, error) {
	date := normalize.DateFromFileName(inputPath)
	if date == "" {
		date = UnknownPartition
	}
	res := &PlanResult{PartitionDate: date}

	in, err := fileio.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	sc := in.Lines()
	for sc.Scan() {
		if sc.Truncated() {
			res.LinesRead++
			res.MalformedLines++
			continue
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		res.LinesRead++

		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			res.MalformedLines++
			continue
		}
		res.ValidEnvelopes++
		res.PendingTotal += normalize.ParseCount(env.PendingCount)
		res.QueuedTotal += normalize.ParseCount(env.QueuedCount)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", inputPath, err)
	}
	return res, nil
}
