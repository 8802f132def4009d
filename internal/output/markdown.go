package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/maxvaer/urlbypass/internal/outcome"
)

// MarkdownWriter renders the report as GitHub-flavored markdown: a run
// table, an outcome summary with a mermaid pie chart, and one table per
// status bucket. Nothing is written until WriteFooter.
type MarkdownWriter struct {
	md *markdown.Markdown
}

func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{md: markdown.NewMarkdown(w)}
}

func (m *MarkdownWriter) WriteHeader(r *Report) error {
	md := m.md
	md.H1("URL Bypass Report")
	md.PlainText("")

	status := "Complete"
	if r.Incomplete {
		status = "Interrupted (partial results)"
	}
	targets := make([]string, len(r.Targets))
	for i, t := range r.Targets {
		targets[i] = "`" + t + "`"
	}
	rows := [][]string{
		{"Targets", strings.Join(targets, "<br>")},
		{"Checked at", r.Finished.Format(TimeLayout)},
		{"Duration", fmt.Sprintf("%.2fs", r.Duration.Seconds())},
		{"URLs checked", strconv.Itoa(r.Total)},
		{"Status", status},
	}
	if r.Shared > 0 {
		rows = append(rows, []string{"Shared by several targets", strconv.Itoa(r.Shared)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	m.writeSummary(r.Summary())
	return nil
}

func (m *MarkdownWriter) writeSummary(s outcome.Summary) {
	md := m.md
	md.H2("Outcome Summary")
	md.PlainText("")

	classes := []struct {
		label string
		count int
	}{
		{"2xx", s.Class2},
		{"3xx", s.Class3},
		{"4xx", s.Class4},
		{"5xx", s.Class5},
		{"Other", s.Other},
		{"ERROR", s.Errors},
	}
	rows := make([][]string, 0, len(classes)+1)
	for _, c := range classes {
		rows = append(rows, []string{c.label, strconv.Itoa(c.count)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(s.Total) + "**"})
	md.Table(markdown.TableSet{Header: []string{"Outcome", "Count"}, Rows: rows})
	md.PlainText("")

	if s.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Outcome Distribution"),
			piechart.WithShowData(true),
		)
		for _, c := range classes {
			if c.count > 0 {
				chart.LabelAndIntValue(c.label, uint64(c.count))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	if s.Class2 > 0 {
		md.Warningf("%d candidate URL(s) answered with 2xx. Review them for access-control bypasses.", s.Class2)
		md.PlainText("")
	}
}

func (m *MarkdownWriter) WriteBucket(b outcome.Bucket) error {
	md := m.md
	md.H2("Status " + b.Key.String())
	md.PlainText("")

	rows := make([][]string, 0, len(b.Results))
	for _, res := range b.Results {
		rows = append(rows, []string{"`" + res.URL + "`", escapeCell(res.Message)})
	}
	md.Table(markdown.TableSet{Header: []string{"URL", "Result"}, Rows: rows})
	md.PlainText("")
	return nil
}

func (m *MarkdownWriter) WriteFooter(*Report) error {
	m.md.HorizontalRule()
	m.md.PlainText("")
	m.md.PlainText("*Report generated by urlbypass*")
	return m.md.Build()
}

func (m *MarkdownWriter) Close() error { return nil }

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
