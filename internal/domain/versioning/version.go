package versioning

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"
)

// Pattern is the textual grammar of a version number.
const Pattern = `\d+\.\d+\.\d+`

var (
	// ErrInvalidFormat is returned when text does not hold a version number.
	ErrInvalidFormat = errors.New("invalid version number syntax")

	searchRegexp = regexp.MustCompile(Pattern)
	exactRegexp  = regexp.MustCompile(`^` + Pattern + `$`)
)

// Version is a major.minor.patch version number as it appears in a file.
type Version string

// Extract returns the leftmost version number found in line.
func Extract(line string) (Version, error) {
	found := searchRegexp.FindString(line)
	if found == "" {
		return "", fmt.Errorf("%q: %w", line, ErrInvalidFormat)
	}

	return Version(found), nil
}

// Parse accepts candidate only when the whole string is a version number.
func Parse(candidate string) (Version, error) {
	if !exactRegexp.MatchString(candidate) {
		return "", fmt.Errorf("%q: %w", candidate, ErrInvalidFormat)
	}

	return Version(candidate), nil
}

// String returns the version exactly as written.
func (v Version) String() string {
	return string(v)
}

// Compare orders v and other: -1, 0 or +1.
// Versions that are not canonical semver (leading zeros) are equal only when
// they are written identically, and ok is false when they cannot be ordered.
func (v Version) Compare(other Version) (result int, ok bool) {
	left, right := "v"+string(v), "v"+string(other)
	if !semver.IsValid(left) || !semver.IsValid(right) {
		return 0, v == other
	}

	return semver.Compare(left, right), true
}
