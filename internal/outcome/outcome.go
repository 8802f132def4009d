// Package outcome groups probe results by HTTP status.
package outcome

import (
	"sort"
	"strconv"

	"github.com/maxvaer/urlbypass/internal/probe"
)

// Key identifies a bucket: an HTTP status code, or ErrorKey for results
// whose request failed.
type Key int

// ErrorKey sorts before every real status code.
const ErrorKey Key = -1

func (k Key) String() string {
	if k == ErrorKey {
		return "ERROR"
	}
	return strconv.Itoa(int(k))
}

// IsError reports whether k is the failure bucket.
func (k Key) IsError() bool { return k == ErrorKey }

// KeyOf returns the bucket key for r.
func KeyOf(r probe.Result) Key {
	if status, ok := r.StatusCode(); ok {
		return Key(status)
	}
	return ErrorKey
}

// Bucket holds the results that share a Key.
type Bucket struct {
	Key     Key
	Results []probe.Result
}

// GroupByOutcome partitions results into buckets: ERROR first, then status
// codes ascending. Results inside a bucket keep their input order.
func GroupByOutcome(results []probe.Result) []Bucket {
	index := make(map[Key]int)
	var buckets []Bucket
	for _, r := range results {
		k := KeyOf(r)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{Key: k})
		}
		buckets[i].Results = append(buckets[i].Results, r)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// Summary counts results per outcome class.
type Summary struct {
	Total  int
	Errors int
	Class2 int // 2xx
	Class3 int // 3xx
	Class4 int // 4xx
	Class5 int // 5xx
	Other  int // 1xx and non-standard codes
}

// Summarize tallies buckets into a Summary.
func Summarize(buckets []Bucket) Summary {
	var s Summary
	for _, b := range buckets {
		n := len(b.Results)
		s.Total += n
		switch {
		case b.Key.IsError():
			s.Errors += n
		case b.Key >= 200 && b.Key < 300:
			s.Class2 += n
		case b.Key >= 300 && b.Key < 400:
			s.Class3 += n
		case b.Key >= 400 && b.Key < 500:
			s.Class4 += n
		case b.Key >= 500 && b.Key < 600:
			s.Class5 += n
		default:
			s.Other += n
		}
	}
	return s
}
