package synchronizer

import (
	"bufio"
	"io"
	"strings"
)

// LineSource supplies interactive input one line at a time.
// ReadLine returns io.EOF once the input is exhausted.
type LineSource interface {
	ReadLine() (string, error)
}

// ReaderLineSource reads lines from an io.Reader such as standard input.
type ReaderLineSource struct {
	scanner *bufio.Scanner
}

// NewReaderLineSource creates a LineSource reading from r.
func NewReaderLineSource(r io.Reader) *ReaderLineSource {
	return &ReaderLineSource{
		scanner: bufio.NewScanner(r),
	}
}

// ReadLine returns the next line without its terminator.
func (s *ReaderLineSource) ReadLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return strings.TrimSuffix(s.scanner.Text(), "\r"), nil
}
