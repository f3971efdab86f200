package textfile

import (
	"bufio"
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

// Repository defines the file operations the synchronizer depends on.
type Repository interface {
	FindFirstLine(ctx context.Context, path string, pattern *regexp.Regexp) (string, error)
	Rewrite(ctx context.Context, path string, pattern *regexp.Regexp, replacement string) (int, error)
}

// FileRepository works on files of the local filesystem.
type FileRepository struct {
	// hash verifies that the file swapped in is the one that was written.
	hash crypto.Hash
}

// DefaultChecksumFunction is used to verify rewritten content before it replaces the original.
const DefaultChecksumFunction crypto.Hash = crypto.SHA512

var (
	// ErrLineNotFound is returned when no line matches or the file cannot be read.
	ErrLineNotFound = errors.New("line not found")

	errHashUnavailable = errors.New("hash function unavailable")
)

// NewFileRepository creates a repository verifying rewrites with DefaultChecksumFunction.
func NewFileRepository() *FileRepository {
	return &FileRepository{
		hash: DefaultChecksumFunction,
	}
}

// FindFirstLine returns the first line of the file matching pattern, without its
// line terminator. Scanning stops at the first match.
func (r *FileRepository) FindFirstLine(_ context.Context, path string, pattern *regexp.Regexp) (string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLineNotFound, err)
	}

	defer func() {
		_ = file.Close()
	}()

	reader := bufio.NewReader(file)

	for {
		raw, readErr := reader.ReadString('\n')
		if raw != "" {
			content, _ := splitTerminator(raw)
			if pattern.MatchString(content) {
				return content, nil
			}
		}

		if errors.Is(readErr, io.EOF) {
			return "", fmt.Errorf("%s: %w", path, ErrLineNotFound)
		}

		if readErr != nil {
			return "", fmt.Errorf("%w: read %s: %w", ErrLineNotFound, path, readErr)
		}
	}
}

// Rewrite replaces every match of pattern with replacement, line by line, and
// returns how many lines changed. Other lines are copied byte for byte.
// The new content is written to a temporary file next to the original which
// then replaces it; on any failure the original stays as it was.
func (r *FileRepository) Rewrite(
	_ context.Context,
	path string,
	pattern *regexp.Regexp,
	replacement string,
) (int, error) {
	if !r.hash.Available() {
		return 0, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	source, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = source.Close()
	}()

	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}

	// The temporary file never outlives the call.
	defer func() {
		_ = temporary.Close()
		_ = os.Remove(temporary.Name())
	}()

	hasher := r.hash.New()
	writer := bufio.NewWriter(io.MultiWriter(temporary, hasher))

	replaced, err := rewriteLines(source, writer, pattern, replacement)
	if err != nil {
		return 0, fmt.Errorf("rewrite %s: %w", path, err)
	}

	if err = writer.Flush(); err != nil {
		return 0, fmt.Errorf("write temporary file: %w", err)
	}

	if _, err = temporary.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind temporary file: %w", err)
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: info.Mode().Perm(),
		Checksum:   hasher.Sum(nil),
		Hash:       r.hash,
	}

	if err = goupdate.Apply(temporary, options); err != nil {
		return 0, fmt.Errorf("replace %s: %w", path, err)
	}

	return replaced, nil
}

// rewriteLines copies src to dst, applying the replacement to matching lines.
func rewriteLines(src io.Reader, dst io.Writer, pattern *regexp.Regexp, replacement string) (int, error) {
	var (
		reader   = bufio.NewReader(src)
		replaced int
	)

	for {
		raw, readErr := reader.ReadString('\n')
		if raw != "" {
			content, terminator := splitTerminator(raw)
			if pattern.MatchString(content) {
				content = pattern.ReplaceAllLiteralString(content, replacement)
				raw = content + terminator
				replaced++
			}

			if _, err := io.WriteString(dst, raw); err != nil {
				return 0, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			return replaced, nil
		}

		if readErr != nil {
			return 0, readErr
		}
	}
}

// splitTerminator separates a line from its "\n" or "\r\n" ending.
func splitTerminator(raw string) (content, terminator string) {
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		return raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"):
		return raw[:len(raw)-1], "\n"
	default:
		return raw, ""
	}
}
