// Package filter selects which probe results trigger the result hook.
package filter

import "github.com/maxvaer/urlbypass/internal/probe"

// Filter decides whether a result should be skipped.
type Filter interface {
	Name() string
	ShouldFilter(result probe.Result) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Len returns the number of filters in the chain. A nil chain is empty.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.filters)
}

// Apply runs every filter against the result. Returns true and the filter
// name if the result should be skipped. A nil chain passes everything.
func (c *Chain) Apply(result probe.Result) (bool, string) {
	if c == nil {
		return false, ""
	}
	for _, f := range c.filters {
		if f.ShouldFilter(result) {
			return true, f.Name()
		}
	}
	return false, ""
}
