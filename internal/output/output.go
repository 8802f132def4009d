package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maxvaer/urlbypass/internal/outcome"
	"github.com/maxvaer/urlbypass/internal/probe"
)

// ErrReportWrite wraps any failure to produce a report file.
var ErrReportWrite = errors.New("writing report")

// TimeLayout is used for the "Checked at" timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// Report is everything a writer needs to render one run.
type Report struct {
	Targets    []string
	Buckets    []outcome.Bucket
	Total      int
	Start      time.Time
	Finished   time.Time
	Duration   time.Duration
	Incomplete bool // the run was cancelled before every URL was probed
	Shared     int  // candidates produced by more than one target, probed once
}

// NewReport groups results and fills in the totals.
func NewReport(targets []string, results []probe.Result, start, finished time.Time, incomplete bool) *Report {
	return &Report{
		Targets:    targets,
		Buckets:    outcome.GroupByOutcome(results),
		Total:      len(results),
		Start:      start,
		Finished:   finished,
		Duration:   finished.Sub(start),
		Incomplete: incomplete,
	}
}

// Summary tallies the report's buckets.
func (r *Report) Summary() outcome.Summary {
	return outcome.Summarize(r.Buckets)
}

// Writer is implemented by each report format.
type Writer interface {
	WriteHeader(r *Report) error
	WriteBucket(b outcome.Bucket) error
	WriteFooter(r *Report) error
	Close() error
}

// New returns the writer for format, writing to w.
func New(format string, w io.Writer) (Writer, error) {
	switch format {
	case "json":
		return NewJSONWriter(w), nil
	case "csv":
		return NewCSVWriter(w), nil
	case "markdown":
		return NewMarkdownWriter(w), nil
	case "text", "":
		return NewTextWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Write renders r through w and closes it.
func Write(w Writer, r *Report) error {
	err := w.WriteHeader(r)
	for _, b := range r.Buckets {
		if err != nil {
			break
		}
		err = w.WriteBucket(b)
	}
	if err == nil {
		err = w.WriteFooter(r)
	}
	return errors.Join(err, w.Close())
}

// WriteFile writes r to path in the given format. Every failure is
// wrapped with ErrReportWrite.
func WriteFile(path, format string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	w, err := New(format, f)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	if err := errors.Join(Write(w, r), f.Close()); err != nil {
		return fmt.Errorf("%w %s: %w", ErrReportWrite, path, err)
	}
	return nil
}
