// Package config loads cache hierarchy configurations. A configuration file
// describes one cache level per line, innermost first:
//
//	<total_bytes> <block_bytes> <associativity> <FIFO|LRU|MRU> <WB> <L1|L2>
//
// Blank lines and #-comments are ignored. Loading fails on the first invalid
// line; a simulation never starts with a partially valid configuration.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachetrace/cache"
)

// An Error reports an invalid cache configuration.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config line %d: %s", e.Line, e.Msg)
	}
	return "config: " + e.Msg
}

func errorf(line int, format string, args ...any) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Load reads and validates the configuration file at path.
func Load(path string) ([]cache.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and validates a configuration from r.
func Parse(r io.Reader) ([]cache.Config, error) {
	var configs []cache.Config

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		c, err := parseLevel(line, text)
		if err != nil {
			return nil, err
		}

		configs = append(configs, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := validateHierarchy(configs); err != nil {
		return nil, err
	}

	return configs, nil
}

func parseLevel(line int, text string) (cache.Config, error) {
	fields := strings.Fields(text)
	if len(fields) != 6 {
		return cache.Config{}, errorf(line,
			"expected `<size> <block> <assoc> <policy> <write> <label>`, "+
				"got %d fields", len(fields))
	}

	totalBytes, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return cache.Config{}, errorf(line, "bad total size %q", fields[0])
	}

	blockSize, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return cache.Config{}, errorf(line, "bad block size %q", fields[1])
	}

	associativity, err := strconv.Atoi(fields[2])
	if err != nil {
		return cache.Config{}, errorf(line, "bad associativity %q", fields[2])
	}

	policy := strings.ToUpper(fields[3])
	if !cache.IsValidPolicy(policy) {
		return cache.Config{}, errorf(line, "unsupported policy %q", fields[3])
	}

	writePolicy := strings.ToUpper(fields[4])
	if writePolicy != "WB" {
		return cache.Config{}, errorf(line,
			"unsupported write policy %q, only WB (write-back) is supported",
			fields[4])
	}

	label := strings.ToUpper(fields[5])

	geometry := cache.Geometry{
		TotalBytes:    totalBytes,
		BlockSize:     blockSize,
		Associativity: associativity,
	}
	if err := geometry.Validate(); err != nil {
		return cache.Config{}, errorf(line, "%v", err)
	}

	return cache.Config{
		Name:          label,
		TotalBytes:    totalBytes,
		BlockSize:     blockSize,
		Associativity: associativity,
		Policy:        policy,
		WritePolicy:   writePolicy,
	}, nil
}

func validateHierarchy(configs []cache.Config) error {
	switch len(configs) {
	case 1:
		if configs[0].Name != "L1" {
			return errorf(0, "a single level must be labeled L1, got %q",
				configs[0].Name)
		}
	case 2:
		if configs[0].Name != "L1" || configs[1].Name != "L2" {
			return errorf(0, "two levels must be labeled L1 then L2")
		}
		if configs[1].TotalBytes < configs[0].TotalBytes {
			return errorf(0,
				"L2 (%d bytes) must be at least as large as L1 (%d bytes)",
				configs[1].TotalBytes, configs[0].TotalBytes)
		}
	default:
		return errorf(0, "expected 1 or 2 cache levels, got %d", len(configs))
	}

	return nil
}
