package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/maxvaer/urlbypass/internal/outcome"
)

// TextWriter writes the plain report layout:
//
//	URL Bypass report
//	=================...
//
//	[Status: 200]
//	200 [Size: 512] - http://host/.html/admin
//
//	Total URLs checked: 1
//	Checked at: 2006-01-02 15:04:05
type TextWriter struct {
	w io.Writer
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

func (t *TextWriter) WriteHeader(r *Report) error {
	_, err := fmt.Fprintf(t.w, "URL Bypass report\n%s\n", strings.Repeat("=", 50))
	if err == nil && len(r.Targets) > 0 {
		_, err = fmt.Fprintf(t.w, "Targets: %s\n", strings.Join(r.Targets, ", "))
	}
	return err
}

func (t *TextWriter) WriteBucket(b outcome.Bucket) error {
	if _, err := fmt.Fprintf(t.w, "\n[Status: %s]\n", b.Key); err != nil {
		return err
	}
	for _, res := range b.Results {
		if _, err := fmt.Fprintf(t.w, "%s - %s\n", res.Message, res.URL); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextWriter) WriteFooter(r *Report) error {
	if r.Incomplete {
		if _, err := fmt.Fprint(t.w, "\nRun interrupted: results are partial\n"); err != nil {
			return err
		}
	}
	if r.Shared > 0 {
		if _, err := fmt.Fprintf(t.w, "\nShared by several targets and checked once: %d\n", r.Shared); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(t.w, "\nTotal URLs checked: %d\nChecked at: %s\n",
		r.Total, r.Finished.Format(TimeLayout))
	return err
}

func (t *TextWriter) Close() error { return nil }
