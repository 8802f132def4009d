package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/maxvaer/urlbypass/internal/outcome"
)

type jsonResult struct {
	URL      string `json:"url"`
	Message  string `json:"message"`
	Status   *int   `json:"status,omitempty"`
	Size     *int64 `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration_ms"`
}

type jsonBucket struct {
	Status  string       `json:"status"`
	Count   int          `json:"count"`
	Results []jsonResult `json:"results"`
}

type jsonReport struct {
	Targets    []string     `json:"targets"`
	Started    time.Time    `json:"started"`
	Finished   time.Time    `json:"finished"`
	Seconds    float64      `json:"duration_seconds"`
	Total      int          `json:"total"`
	Incomplete bool         `json:"incomplete"`
	Shared     int          `json:"shared_candidates"`
	Buckets    []jsonBucket `json:"buckets"`
}

// JSONWriter collects buckets and encodes the whole report on footer.
type JSONWriter struct {
	w       io.Writer
	buckets []jsonBucket
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

func (j *JSONWriter) WriteHeader(*Report) error { return nil }

func (j *JSONWriter) WriteBucket(b outcome.Bucket) error {
	jb := jsonBucket{Status: b.Key.String(), Count: len(b.Results)}
	for _, res := range b.Results {
		entry := jsonResult{
			URL:      res.URL,
			Message:  res.Message,
			Duration: res.Duration.Milliseconds(),
		}
		if status, ok := res.StatusCode(); ok {
			size, _ := res.ContentLength()
			entry.Status = &status
			entry.Size = &size
		} else {
			entry.Error = res.Message
		}
		jb.Results = append(jb.Results, entry)
	}
	j.buckets = append(j.buckets, jb)
	return nil
}

func (j *JSONWriter) WriteFooter(r *Report) error {
	targets := r.Targets
	if targets == nil {
		targets = []string{}
	}
	buckets := j.buckets
	if buckets == nil {
		buckets = []jsonBucket{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Targets:    targets,
		Started:    r.Start,
		Finished:   r.Finished,
		Seconds:    r.Duration.Seconds(),
		Total:      r.Total,
		Incomplete: r.Incomplete,
		Shared:     r.Shared,
		Buckets:    buckets,
	})
}

func (j *JSONWriter) Close() error { return nil }
