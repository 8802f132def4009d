package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/urlbypass/internal/outcome"
)

// CSVWriter writes one row per result. Failed results carry ERROR in the
// status column and an empty size.
type CSVWriter struct {
	w *csv.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) WriteHeader(*Report) error {
	return c.w.Write([]string{"url", "status", "size", "message"})
}

func (c *CSVWriter) WriteBucket(b outcome.Bucket) error {
	for _, res := range b.Results {
		size := ""
		if n, ok := res.ContentLength(); ok {
			size = strconv.FormatInt(n, 10)
		}
		if err := c.w.Write([]string{res.URL, b.Key.String(), size, res.Message}); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVWriter) WriteFooter(*Report) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error { return nil }
