package filter

import "github.com/maxvaer/urlbypass/internal/probe"

// StatusFilter includes or excludes results based on HTTP status codes.
// Failed results have no status: an include list drops them, an exclude
// list lets them through.
type StatusFilter struct {
	include map[int]struct{}
	exclude map[int]struct{}
}

// NewStatusFilter creates a status code filter. If include is non-empty, only
// those codes pass through. If exclude is non-empty, those codes are filtered.
func NewStatusFilter(include, exclude []int) *StatusFilter {
	f := &StatusFilter{
		include: make(map[int]struct{}, len(include)),
		exclude: make(map[int]struct{}, len(exclude)),
	}
	for _, code := range include {
		f.include[code] = struct{}{}
	}
	for _, code := range exclude {
		f.exclude[code] = struct{}{}
	}
	return f
}

func (f *StatusFilter) Name() string { return "status" }

func (f *StatusFilter) ShouldFilter(result probe.Result) bool {
	status, ok := result.StatusCode()
	if len(f.include) > 0 {
		if !ok {
			return true
		}
		_, in := f.include[status]
		return !in
	}
	if len(f.exclude) > 0 && ok {
		_, out := f.exclude[status]
		return out
	}
	return false
}
