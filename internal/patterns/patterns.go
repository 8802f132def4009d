package patterns

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrMissing is returned when a pattern or target file does not exist.
var ErrMissing = errors.New("file not found")

// DefaultFallback is used when the dictionary file is missing.
var DefaultFallback = []string{".html"}

// Load reads bypass patterns from path, one per line. Blank lines and
// lines starting with '#' are skipped and duplicates are dropped, keeping
// the first occurrence.
//
// If path does not exist, Load returns a copy of fallback together with an
// error wrapping ErrMissing so the caller can warn and continue. Any other
// read error is returned with a nil list.
func Load(path string, fallback []string) ([]string, error) {
	list, err := readList(path)
	if errors.Is(err, ErrMissing) {
		return append([]string(nil), fallback...), err
	}
	return list, err
}

// LoadTargets reads base URLs from path, one per line, with the same
// comment and blank-line rules as Load. A missing file is an error
// wrapping ErrMissing.
func LoadTargets(path string) ([]string, error) {
	return readList(path)
}

// Parse splits raw text into a clean, de-duplicated list.
func Parse(raw string) []string {
	lines := strings.Split(raw, "\n")
	seen := make(map[string]struct{}, len(lines))
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		result = append(result, line)
	}
	return result
}

func readList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}
