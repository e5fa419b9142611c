package linesource

import (
	"bufio"
	"fmt"
	"os"
)

// FileSource reads lines from a file on disk, one at a time, via a
// buffered scanner.
type FileSource struct {
	f       *os.File
	scanner *bufio.Scanner
}

// OpenFile opens path for a single-pass read. Existence is checked here;
// emptiness is left to the caller, since an empty stream simply yields no
// events.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("linesource: open %q: %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &FileSource{f: f, scanner: scanner}, nil
}

func (s *FileSource) Next() (string, bool, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), true, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", false, fmt.Errorf("linesource: scan: %w", err)
	}
	return "", false, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.f.Close()
}
