//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/version-sync/internal/logger"
)

// ErrAlreadyRunning indicates that another live process holds the marker.
var ErrAlreadyRunning = errors.New("another synchronization is running")

// markerFileMode is the permission of the marker file.
const markerFileMode = 0o600

// Marker is a file recording the PID of the process working on a directory.
type Marker struct {
	// path is the marker file location.
	path string
}

// AcquireMarker creates the marker at path. A marker left by a process that is
// no longer running is considered stale and replaced.
func AcquireMarker(ctx context.Context, path string) (*Marker, error) {
	path = filepath.Clean(path)

	logger.Debug(ctx, "Checking for the presence of a run marker")

	for range 2 {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, markerFileMode)
		if err == nil {
			_, writeErr := file.WriteString(strconv.Itoa(os.Getpid()))
			closeErr := file.Close()

			if err = errors.Join(writeErr, closeErr); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write run marker: %w", err)
			}

			return &Marker{path: path}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create run marker: %w", err)
		}

		if IsMarkerHeld(ctx, path) {
			return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
		}

		logger.InfoKV(ctx, "Removing stale run marker", "path", path)

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale run marker: %w", err)
		}
	}

	return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
}

// IsMarkerHeld reports whether the marker at path belongs to a running process.
// Unreadable or malformed markers are treated as stale.
func IsMarkerHeld(ctx context.Context, path string) bool {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return false
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		logger.WarnKV(ctx, "Unable to inspect marker owner", "pid", pid, "error", err)
		return true
	}

	return process != nil
}

// Release removes the marker.
func (m *Marker) Release() error {
	if m == nil {
		return nil
	}

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove run marker: %w", err)
	}

	return nil
}
