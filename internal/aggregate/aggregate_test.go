package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/nodesift/nodesift/internal/classify"
)

const sampleLog = `[05-13|02:01:07.123] Discarding invalid transaction: nonce too low hash=0x01
[05-13|02:01:08.456] Discarding invalid transaction: nonce too low hash=0x02
[05-13|02:01:09.789] Discarding freshly underpriced transaction hash=0x03
[05-13|02:02:00.000] Discarding invalid transaction: insufficient funds hash=0x04
garbage line with no timestamp
[05-13|02:02:30.500] Imported new chain segment number=42
`

func writeLog(t *testing.T, name, content string, compress bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if !compress {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write log: %v", err)
		}
		return path
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(content))
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	f.Close()
	return path
}

func TestFile_Counts(t *testing.T) {
	path := writeLog(t, "geth_2025-05-13.log", sampleLog, false)
	events, err := File(path, classify.New(classify.DefaultRules, "2025"), zerolog.Nop())
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	// Three distinct (bucket, metric) cells; non-matching lines are dropped.
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}

	// flatten sorts by bucket then metric.
	want := []struct {
		ts     string
		metric string
		count  int64
	}{
		{"2025-05-13 02:01", "invalidation_nonce_low", 2},
		{"2025-05-13 02:01", "mempool_underpriced", 1},
		{"2025-05-13 02:02", "invalidation_insufficient_funds", 1},
	}
	for i, w := range want {
		ev := events[i]
		if ev.Timestamp != w.ts || ev.Metric != w.metric || ev.Count != w.count {
			t.Errorf("event[%d] = %+v, want %v", i, ev, w)
		}
		if ev.SourceFile != "geth_2025-05-13.log" {
			t.Errorf("event[%d] source file = %q", i, ev.SourceFile)
		}
		if ev.Category != "invalidation" && ev.Category != "mempool" {
			t.Errorf("event[%d] category = %q", i, ev.Category)
		}
	}
}

func TestFile_Gzip(t *testing.T) {
	path := writeLog(t, "geth_2025-05-13.log.gz", sampleLog, true)
	events, err := File(path, classify.New(classify.DefaultRules, "2025"), zerolog.Nop())
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events from gzip input, got %d", len(events))
	}
}

func TestFile_NoEvents(t *testing.T) {
	path := writeLog(t, "geth_quiet.log", "[05-13|02:01:07.123] Looking for peers\n", false)
	events, err := File(path, classify.New(classify.DefaultRules, "2025"), zerolog.Nop())
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %+v", events)
	}
}

func TestFile_InvalidUTF8Tolerated(t *testing.T) {
	content := "[05-13|02:01:07.123] Discarding invalid transaction: nonce too low \xff\xfe\n"
	path := writeLog(t, "geth_bin.log", content, false)
	events, err := File(path, classify.New(classify.DefaultRules, "2025"), zerolog.Nop())
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(events) != 1 || events[0].Metric != "invalidation_nonce_low" {
		t.Errorf("events = %+v, want one nonce_low event", events)
	}
}

func TestFile_MissingFile(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.log"), classify.New(classify.DefaultRules, "2025"), zerolog.Nop())
	if err == nil {
		t.Error("expected error for missing file")
	}
}
