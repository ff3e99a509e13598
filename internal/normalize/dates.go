package normalize

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var fileDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// YearFromFileName returns the year of the first YYYY-MM-DD substring in the
// file name, or def when no date is present.
func YearFromFileName(name, def string) string {
	m := fileDatePattern.FindStringSubmatch(name)
	if m == nil {
		return def
	}
	return m[1]
}

// DateFromFileName extracts a YYYY-MM-DD date from the base file name, used
// for partitioning shredded output. Compression and format extensions are
// stripped before matching, so "2025-05-13.log.gz" parses as 2025-05-13.
// Returns "" if the name does not carry a valid calendar date.
func DateFromFileName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".gz")
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	m := fileDatePattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	if _, err := time.Parse("2006-01-02", m[0]); err != nil {
		return ""
	}
	return m[0]
}
