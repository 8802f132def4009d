package variant

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a base URL cannot be used to build
// candidates (unparseable, or missing scheme or host).
var ErrInvalidURL = errors.New("invalid URL")

// Generate returns every candidate URL obtained by inserting each pattern as
// a standalone path segment at every position of baseURL's path. Positions
// run from before the first segment to after the last one. Identical
// candidates collapse into a single set entry.
func Generate(baseURL string, patterns []string) (Set, error) {
	origin, segments, err := split(baseURL)
	if err != nil {
		return nil, err
	}

	set := make(Set, len(patterns)*(len(segments)+1))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		pattern = escapeStrayPercent(pattern)
		for i := 0; i <= len(segments); i++ {
			parts := make([]string, 0, len(segments)+1)
			parts = append(parts, segments[:i]...)
			parts = append(parts, pattern)
			parts = append(parts, segments[i:]...)
			set.Add(origin + "/" + strings.Join(parts, "/"))
		}
	}
	return set, nil
}

// MaxCandidates returns the number of candidates Generate would produce if
// no two insertions collided. It is the upper bound on the set size.
func MaxCandidates(baseURL string, patterns []string) (int, error) {
	_, segments, err := split(baseURL)
	if err != nil {
		return 0, err
	}
	return len(patterns) * (len(segments) + 1), nil
}

// escapeStrayPercent rewrites every '%' not starting a valid %XX escape as
// "%25", so "%%32e" becomes "%25%32e". Valid escapes are kept as written.
func escapeStrayPercent(pattern string) string {
	if !strings.Contains(pattern, "%") {
		return pattern
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '%' && !(i+2 < len(pattern) && isHex(pattern[i+1]) && isHex(pattern[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// split parses baseURL into its "scheme://host" origin and the non-empty
// segments of its escaped path. Query, fragment and userinfo are dropped.
func split(baseURL string) (string, []string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, fmt.Errorf("%w %q: scheme and host are required", ErrInvalidURL, baseURL)
	}

	var segments []string
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return u.Scheme + "://" + u.Host, segments, nil
}
