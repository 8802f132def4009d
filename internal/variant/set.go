package variant

import "sort"

// Set is an unordered collection of distinct candidate URLs.
type Set map[string]struct{}

// NewSet builds a set from urls, dropping duplicates.
func NewSet(urls ...string) Set {
	s := make(Set, len(urls))
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

func (s Set) Add(u string) { s[u] = struct{}{} }

func (s Set) Contains(u string) bool {
	_, ok := s[u]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in lexicographic order, which gives callers a
// deterministic submission order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same URLs.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for u := range s {
		if !other.Contains(u) {
			return false
		}
	}
	return true
}
