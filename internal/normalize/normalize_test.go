package normalize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestYearFromFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"geth_2025-05-13.log", "2025"},
		{"geth_2024-01-01.log.gz", "2024"},
		{"geth.log", "1999"},
		{"geth_05-13.log", "1999"},
	}
	for _, tt := range tests {
		if got := YearFromFileName(tt.name, "1999"); got != tt.want {
			t.Errorf("YearFromFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDateFromFileName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/dumps/2025-05-13.log", "2025-05-13"},
		{"/dumps/2025-05-13.log.gz", "2025-05-13"},
		{"2025-05-13", "2025-05-13"},
		{"/dumps/mempool-2025-12-31.jsonl", "2025-12-31"},
		{"/dumps/latest.log", ""},
		{"/dumps/2025-13-45.log", ""}, // not a calendar date
	}
	for _, tt := range tests {
		if got := DateFromFileName(tt.path); got != tt.want {
			t.Errorf("DateFromFileName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-05-13.log.gz", "2025-05-13_log_gz"},
		{"plain_name-1", "plain_name-1"},
		{"we ird/näme", "we_ird_n_me"},
	}
	for _, tt := range tests {
		if got := SafeFileName(tt.in); got != tt.want {
			t.Errorf("SafeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"number", "42", 42},
		{"float", "42.9", 42},
		{"hex string", `"0x1a"`, 26},
		{"upper hex string", `"0X10"`, 16},
		{"decimal string", `"107"`, 107},
		{"garbage string", `"not a number"`, 0},
		{"bad hex", `"0xzz"`, 0},
		{"object", `{"a":1}`, 0},
		{"null", "null", 0},
		{"absent", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCount(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("ParseCount(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	os.WriteFile(path, []byte("abc"), 0644)

	got, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	// Well-known SHA-256 of "abc".
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("FileHash = %s, want %s", got, want)
	}

	if _, err := FileHash(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
