// Package fileio opens raw node log files for line-oriented reading,
// handling gzip transparently and bounding per-line memory.
package fileio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DefaultMaxLineBytes caps how much of a single line is held in memory.
// Log lines are normally short, but a txpool snapshot envelope can run to
// tens of megabytes on a busy node; anything past the cap is consumed and
// reported as truncated rather than buffered.
const DefaultMaxLineBytes = 64 * 1024 * 1024

// Reader is a line source over a plain or gzip-compressed file.
type Reader struct {
	file *os.File
	gz   *gzip.Reader
	r    io.Reader
}

// Open opens path for reading, wrapping it in a gzip reader when the name
// ends in ".gz".
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	r := &Reader{file: f, r: f}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip input: %w", err)
		}
		r.gz = gz
		r.r = gz
	}
	return r, nil
}

// Lines returns a Scanner over the input with the default line cap.
func (r *Reader) Lines() *Scanner {
	return NewScanner(r.r, DefaultMaxLineBytes)
}

// ReadAll slurps the whole input, used by the memstats splitter which
// operates on full-file content rather than lines.
func (r *Reader) ReadAll() ([]byte, error) {
	data, err := io.ReadAll(r.r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// Close releases the underlying file and any gzip state.
func (r *Reader) Close() error {
	if r.gz != nil {
		if err := r.gz.Close(); err != nil {
			r.file.Close()
			return err
		}
	}
	return r.file.Close()
}

// Scanner iterates lines like bufio.Scanner, but a line exceeding the byte
// cap is consumed through a fixed buffer and surfaced as a truncated line
// instead of an error, so one pathological line cannot sink its file or
// exhaust memory.
type Scanner struct {
	br        *bufio.Reader
	max       int
	line      []byte
	truncated bool
	err       error
	done      bool
}

// NewScanner returns a Scanner over r holding at most maxBytes of any
// single line.
func NewScanner(r io.Reader, maxBytes int) *Scanner {
	return &Scanner{br: bufio.NewReaderSize(r, 1024*1024), max: maxBytes}
}

// Scan advances to the next line. It returns false at end of input or on a
// read error; truncated lines still return true so callers can count and
// skip them.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	s.line = s.line[:0]
	s.truncated = false

	for {
		chunk, err := s.br.ReadSlice('\n')
		if len(chunk) > 0 {
			if len(s.line)+len(chunk) > s.max {
				s.truncated = true
				s.line = s.line[:0]
			} else if !s.truncated {
				s.line = append(s.line, chunk...)
			}
		}

		switch err {
		case nil:
			s.line = trimEOL(s.line)
			return true
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			s.done = true
			s.line = trimEOL(s.line)
			return len(s.line) > 0 || s.truncated
		default:
			s.err = err
			s.done = true
			return false
		}
	}
}

// Bytes returns the current line without its trailing newline. Empty for
// truncated lines.
func (s *Scanner) Bytes() []byte {
	return s.line
}

// Text returns the current line as a string.
func (s *Scanner) Text() string {
	return string(s.line)
}

// Truncated reports whether the current line exceeded the byte cap.
func (s *Scanner) Truncated() bool {
	return s.truncated
}

// Err returns the first read error other than end of input.
func (s *Scanner) Err() error {
	return s.err
}

func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
