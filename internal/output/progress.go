package output

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/maxvaer/urlbypass/internal/probe"
)

// Progress shows a bar advancing once per finished probe. A nil *Progress
// is valid and does nothing, which is what quiet runs use.
type Progress struct {
	bar     *progressbar.ProgressBar
	noColor bool
}

// NewProgress creates a bar for total probes drawn on w.
func NewProgress(w io.Writer, total int, noColor bool) *Progress {
	theme := progressbar.Theme{
		Saucer:        "[green]=[reset]",
		SaucerHead:    "[green]>[reset]",
		SaucerPadding: " ",
		BarStart:      "[",
		BarEnd:        "]",
	}
	if noColor {
		theme.Saucer, theme.SaucerHead = "=", ">"
	}
	return &Progress{noColor: noColor, bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(!noColor),
		progressbar.OptionSetDescription(label("Probing...", noColor)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(theme),
	)}
}

// Observe advances the bar by one. It is meant to be used as, or called
// from, probe.Config.Observer.
func (p *Progress) Observe(probe.Result) {
	if p == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Describe replaces the text shown next to the bar.
func (p *Progress) Describe(s string) {
	if p == nil {
		return
	}
	p.bar.Describe(s)
}

// Hits shows the number of 2xx responses seen so far.
func (p *Progress) Hits(n int) {
	if p == nil {
		return
	}
	p.bar.Describe(label(fmt.Sprintf("Probing... %d hits", n), p.noColor))
}

func label(s string, noColor bool) string {
	if noColor {
		return s
	}
	return "[cyan]" + s + "[reset]"
}

// Finish completes and clears the bar.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
