package filter

import (
	"errors"
	"testing"

	"github.com/maxvaer/urlbypass/internal/probe"
)

func TestStatusFilter(t *testing.T) {
	t.Parallel()

	failed := probe.Failed("http://example.com/x", errors.New("connection refused"))
	tests := []struct {
		name     string
		include  []int
		exclude  []int
		result   probe.Result
		filtered bool
	}{
		{name: "include keeps listed", include: []int{200, 302}, result: probe.Succeeded("u", 200, 1)},
		{name: "include drops unlisted", include: []int{200}, result: probe.Succeeded("u", 403, 1), filtered: true},
		{name: "include drops failures", include: []int{200}, result: failed, filtered: true},
		{name: "exclude drops listed", exclude: []int{403, 404}, result: probe.Succeeded("u", 404, 1), filtered: true},
		{name: "exclude keeps unlisted", exclude: []int{403}, result: probe.Succeeded("u", 200, 1)},
		{name: "exclude keeps failures", exclude: []int{403}, result: failed},
		{name: "empty keeps all", result: probe.Succeeded("u", 500, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewStatusFilter(tt.include, tt.exclude)
			if got := f.ShouldFilter(tt.result); got != tt.filtered {
				t.Errorf("ShouldFilter = %v, want %v", got, tt.filtered)
			}
		})
	}
}

func TestSizeFilter(t *testing.T) {
	t.Parallel()
	f := NewSizeFilter([]int{0, 1234})

	if !f.ShouldFilter(probe.Succeeded("u", 200, 1234)) {
		t.Error("size 1234 should be filtered")
	}
	if f.ShouldFilter(probe.Succeeded("u", 200, 5678)) {
		t.Error("size 5678 should pass")
	}
	if f.ShouldFilter(probe.Failed("u", errors.New("timeout"))) {
		t.Error("failed result has no size and should pass")
	}
}

func TestChain_ShortCircuits(t *testing.T) {
	t.Parallel()
	chain := NewChain()
	chain.Add(NewStatusFilter(nil, []int{404}))
	chain.Add(NewSizeFilter([]int{0}))

	filtered, reason := chain.Apply(probe.Succeeded("u", 404, 0))
	if !filtered || reason != "status" {
		t.Errorf("got (%v, %q), want (true, \"status\")", filtered, reason)
	}

	filtered, reason = chain.Apply(probe.Succeeded("u", 200, 0))
	if !filtered || reason != "size" {
		t.Errorf("got (%v, %q), want (true, \"size\")", filtered, reason)
	}

	if filtered, _ := chain.Apply(probe.Succeeded("u", 200, 10)); filtered {
		t.Error("200 with body should pass")
	}
}

func TestNilChain(t *testing.T) {
	t.Parallel()
	var c *Chain
	if filtered, _ := c.Apply(probe.Succeeded("u", 404, 0)); filtered || c.Len() != 0 {
		t.Error("nil chain should pass everything")
	}
}
