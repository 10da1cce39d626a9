// Package trace reads memory access traces. A trace is a text file with one
// access per line, `<op> <address>`, where op is R or W (or read/write) and
// the address is decimal or 0x-prefixed hexadecimal.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachetrace/cache"
)

// A ParseError describes a malformed trace record. The simulator treats it
// as fatal: the run aborts at the offending line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A Source is an ordered, finite sequence of accesses. Next returns io.EOF
// after the last record.
type Source interface {
	Next() (cache.Access, error)
}

// A Reader parses accesses from an io.Reader, skipping blank lines and
// #-comments.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next access in the trace.
func (r *Reader) Next() (cache.Access, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		access, err := ParseLine(text)
		if err != nil {
			return cache.Access{}, &ParseError{
				Line: r.line,
				Text: text,
				Err:  err,
			}
		}

		return access, nil
	}

	if err := r.scanner.Err(); err != nil {
		return cache.Access{}, err
	}

	return cache.Access{}, io.EOF
}

// ParseLine parses one trace record of the form `<op> <address>`.
func ParseLine(text string) (cache.Access, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return cache.Access{}, fmt.Errorf(
			"expected `<op> <address>`, got %d fields", len(fields))
	}

	var op cache.Op
	switch strings.ToUpper(fields[0]) {
	case "R", "READ":
		op = cache.OpRead
	case "W", "WRITE":
		op = cache.OpWrite
	default:
		return cache.Access{}, fmt.Errorf("unknown operation %q", fields[0])
	}

	addr, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return cache.Access{}, fmt.Errorf("bad address %q: %w", fields[1], err)
	}

	return cache.Access{Op: op, Addr: addr}, nil
}

// A FileSource reads a trace file. It can be restarted from the beginning
// with Reset, which makes replaying the same trace cheap.
type FileSource struct {
	file   *os.File
	reader *Reader
}

// OpenFile opens the trace file at path.
func OpenFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &FileSource{
		file:   file,
		reader: NewReader(file),
	}, nil
}

// Next returns the next access in the trace.
func (s *FileSource) Next() (cache.Access, error) {
	return s.reader.Next()
}

// Reset rewinds the source to the first record.
func (s *FileSource) Reset() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	s.reader = NewReader(s.file)

	return nil
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}
