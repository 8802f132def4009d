package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/maxvaer/urlbypass/internal/outcome"
	"github.com/maxvaer/urlbypass/internal/probe"
	"github.com/maxvaer/urlbypass/pkg/version"
)

// Console renders the banner, the grouped results and the run summary
// for a terminal.
type Console struct {
	w     io.Writer
	ok    *color.Color
	warn  *color.Color
	bad   *color.Color
	info  *color.Color
	title *color.Color
	dim   *color.Color
}

// NewConsole returns a console writing to w. noColor strips all escapes.
func NewConsole(w io.Writer, noColor bool) *Console {
	c := &Console{
		w:     w,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
		info:  color.New(color.FgBlue),
		title: color.New(color.FgCyan, color.Bold),
		dim:   color.New(color.Faint),
	}
	if noColor {
		for _, col := range []*color.Color{c.ok, c.warn, c.bad, c.info, c.title, c.dim} {
			col.DisableColor()
		}
	}
	return c
}

// Banner describes the run configuration shown before probing starts.
type Banner struct {
	Targets  []string
	Timeout  time.Duration
	Workers  int
	Proxy    string // already redacted
	Dict     string
	Output   string
	Patterns int
}

func (c *Console) Banner(b Banner) {
	rule := strings.Repeat("=", 50)
	proxy := b.Proxy
	if proxy == "" {
		proxy = "none"
	}
	output := b.Output
	if output == "" {
		output = "console only"
	}

	fmt.Fprintf(c.w, "\n%s %s\n", c.title.Sprint("urlbypass"), c.dim.Sprint(version.String()))
	fmt.Fprintln(c.w, rule)
	if len(b.Targets) == 1 {
		fmt.Fprintf(c.w, "- Target:     %s\n", b.Targets[0])
	} else {
		fmt.Fprintf(c.w, "- Targets:    %d\n", len(b.Targets))
	}
	fmt.Fprintf(c.w, "- Timeout:    %ds\n", int(b.Timeout.Seconds()))
	fmt.Fprintf(c.w, "- Workers:    %d\n", b.Workers)
	fmt.Fprintf(c.w, "- Proxy:      %s\n", proxy)
	fmt.Fprintf(c.w, "- Dictionary: %s\n", b.Dict)
	fmt.Fprintf(c.w, "- Output:     %s\n", output)
	fmt.Fprintf(c.w, "- Patterns:   %d loaded\n", b.Patterns)
	fmt.Fprintf(c.w, "%s\n\n", rule)
}

// Buckets prints every result grouped by outcome, ERROR first.
func (c *Console) Buckets(buckets []outcome.Bucket) {
	fmt.Fprintln(c.w, "\nResults:")
	for _, b := range buckets {
		fmt.Fprintf(c.w, "\n[Status: %s]\n", b.Key)
		for _, res := range b.Results {
			fmt.Fprintln(c.w, c.colorFor(res).Sprintf("%s - %s", res.Message, res.URL))
		}
	}
}

// Finish prints the elapsed time and the number of URLs checked.
func (c *Console) Finish(elapsed time.Duration, total int, incomplete bool) {
	if incomplete {
		fmt.Fprintln(c.w, c.warn.Sprint("\n[!] Run interrupted: results are partial"))
	}
	fmt.Fprintf(c.w, "\nTotal time: %.2f seconds\n", elapsed.Seconds())
	fmt.Fprintf(c.w, "URLs checked: %d\n", total)
}

// colorFor picks green for 200, yellow for 4xx, red for 5xx and failures,
// blue for everything else.
func (c *Console) colorFor(res probe.Result) *color.Color {
	status, ok := res.StatusCode()
	switch {
	case !ok:
		return c.bad
	case status == 200:
		return c.ok
	case status >= 400 && status < 500:
		return c.warn
	case status >= 500:
		return c.bad
	default:
		return c.info
	}
}
