package runner

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/maxvaer/urlbypass/internal/config"
	"github.com/maxvaer/urlbypass/internal/patterns"
	"github.com/maxvaer/urlbypass/internal/probe"
	"github.com/maxvaer/urlbypass/internal/store"
	"github.com/maxvaer/urlbypass/internal/variant"
)

func TestRunSingleURL(t *testing.T) {
	srv := bypassServer(t)
	dict := writeLines(t, "dict.txt", "# patterns", ".html", "..;", ".html")
	opts := testOpts(t, srv.URL+"/admin", dict)

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}

	report := readOutput(t, opts.OutputFile)
	for _, want := range []string{
		"URL Bypass report",
		"[Status: 200]",
		"200 [Size: 8] - " + srv.URL + "/.html/admin",
		"200 [Size: 8] - " + srv.URL + "/admin/.html",
		"[Status: 403]",
		"403 [Size: 9] - " + srv.URL + "/..;/admin",
		"403 [Size: 9] - " + srv.URL + "/admin/..;",
		"Total URLs checked: 4",
		"Checked at: ",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Index(report, "[Status: 200]") > strings.Index(report, "[Status: 403]") {
		t.Error("buckets out of order")
	}

	stdout := c.stdout.String()
	for _, want := range []string{"- Patterns:   2 loaded", "[Status: 403]", "URLs checked: 4", "Total time: "} {
		if !strings.Contains(stdout, want) {
			t.Errorf("console missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunMissingDictionaryFallsBack(t *testing.T) {
	srv := bypassServer(t)
	opts := testOpts(t, srv.URL+"/admin", filepath.Join(t.TempDir(), "url-bypass.txt"))

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(c.logs.String(), "dictionary not found") {
		t.Errorf("expected fallback warning, logs:\n%s", c.logs.String())
	}
	report := readOutput(t, opts.OutputFile)
	if !strings.Contains(report, "Total URLs checked: 2") || !strings.Contains(report, "/admin/.html") {
		t.Errorf("fallback .html not used:\n%s", report)
	}
}

func TestRunInvalidURLAbortsSingleMode(t *testing.T) {
	opts := testOpts(t, "example.com/admin", writeLines(t, "dict.txt", ".html"))
	var c capture
	err := run(context.Background(), opts, c.env())
	if !errors.Is(err, variant.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestRunListMode(t *testing.T) {
	srv := bypassServer(t)
	list := writeLines(t, "urls.txt",
		srv.URL+"/admin",
		"# comment",
		"not a url",
		srv.URL+"/api/v1",
	)
	opts := testOpts(t, "", writeLines(t, "dict.txt", ".html"))
	opts.ListFile = list

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(c.logs.String(), "skipping target") {
		t.Errorf("invalid entry not reported:\n%s", c.logs.String())
	}

	report := readOutput(t, opts.OutputFile)
	// 2 candidates for /admin plus 3 for /api/v1, all in one report.
	if !strings.Contains(report, "Total URLs checked: 5") {
		t.Errorf("expected aggregated report:\n%s", report)
	}
	if !strings.Contains(report, srv.URL+"/api/v1/.html") || !strings.Contains(report, srv.URL+"/admin/.html") {
		t.Errorf("targets missing from report:\n%s", report)
	}
}

func TestRunListModeSharedCandidates(t *testing.T) {
	srv := bypassServer(t)
	// Both entries have the same path segments, so every candidate is shared.
	list := writeLines(t, "urls.txt", srv.URL+"/admin", srv.URL+"/admin/")
	opts := testOpts(t, "", writeLines(t, "dict.txt", ".html"))
	opts.ListFile = list

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}
	report := readOutput(t, opts.OutputFile)
	for _, want := range []string{"Shared by several targets and checked once: 2", "Total URLs checked: 2"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRunMissingListFile(t *testing.T) {
	opts := testOpts(t, "", writeLines(t, "dict.txt", ".html"))
	opts.ListFile = filepath.Join(t.TempDir(), "urls.txt")

	var c capture
	if err := run(context.Background(), opts, c.env()); !errors.Is(err, patterns.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestRunReportWriteFailureIsNotFatal(t *testing.T) {
	srv := bypassServer(t)
	opts := testOpts(t, srv.URL+"/admin", writeLines(t, "dict.txt", ".html"))
	opts.OutputFile = filepath.Join(t.TempDir(), "no-such-dir", "report.txt")

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatalf("report failure must not fail the run: %v", err)
	}
	if !strings.Contains(c.logs.String(), "report not written") {
		t.Errorf("expected logged report failure:\n%s", c.logs.String())
	}
	if !strings.Contains(c.stdout.String(), "[Status: 200]") {
		t.Error("console results missing")
	}
}

func TestRunUnreachableTarget(t *testing.T) {
	srv := bypassServer(t)
	addr := srv.URL
	srv.Close()

	opts := testOpts(t, addr+"/admin", writeLines(t, "dict.txt", ".html"))
	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}
	report := readOutput(t, opts.OutputFile)
	if !strings.Contains(report, "[Status: ERROR]") || !strings.Contains(report, "Total URLs checked: 2") {
		t.Errorf("expected error bucket:\n%s", report)
	}
}

func TestRunJSONFormatAndHistory(t *testing.T) {
	srv := bypassServer(t)
	opts := testOpts(t, srv.URL+"/admin", writeLines(t, "dict.txt", ".html", "%2e"))
	opts.OutputFormat = "json"
	opts.OutputFile = filepath.Join(t.TempDir(), "report.json")
	opts.Save = true
	opts.Quiet = true

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Total   int `json:"total"`
		Buckets []struct {
			Status string `json:"status"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal([]byte(readOutput(t, opts.OutputFile)), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Total != 4 || len(doc.Buckets) != 2 {
		t.Errorf("json report = %+v", doc)
	}
	if strings.Contains(c.stdout.String(), "- Workers:") {
		t.Error("banner printed in quiet mode")
	}

	db, err := store.Open(opts.DBDir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	runs, err := db.ListRuns(context.Background(), 0)
	if err != nil || len(runs) != 1 || runs[0].Total != 4 {
		t.Fatalf("history = %+v, %v", runs, err)
	}
}

func TestRunCancelled(t *testing.T) {
	srv := bypassServer(t)
	opts := testOpts(t, srv.URL+"/admin", writeLines(t, "dict.txt", ".html"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var c capture
	err := run(ctx, opts, c.env())
	if !errors.Is(err, probe.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if !strings.Contains(readOutput(t, opts.OutputFile), "Run interrupted") {
		t.Error("report not marked incomplete")
	}
}

func TestResolveTargets(t *testing.T) {
	if _, err := resolveTargets(&config.Options{}); !errors.Is(err, config.ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
	empty := writeLines(t, "urls.txt", "# nothing", "")
	if _, err := resolveTargets(&config.Options{ListFile: empty}); err == nil {
		t.Error("expected error for an empty URL list")
	}
}

func TestRedactProxy(t *testing.T) {
	if got := redactProxy("http://u:p@10.0.0.1:8080"); strings.Contains(got, "u:p") {
		t.Errorf("redactProxy leaked credentials: %s", got)
	}
	if got := redactProxy("127.0.0.1:8080"); got != "127.0.0.1:8080" {
		t.Errorf("redactProxy changed plain proxy: %s", got)
	}
}

func TestRunHookFiltered(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook commands use sh")
	}
	srv := bypassServer(t)
	opts := testOpts(t, srv.URL+"/admin", writeLines(t, "dict.txt", ".html", "..;"))
	hits := filepath.Join(t.TempDir(), "hits.txt")
	opts.OnResult = "echo '{status} {url}' >> " + hits
	opts.IncludeStatus = []int{200}

	var c capture
	if err := run(context.Background(), opts, c.env()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(readOutput(t, hits)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 hook runs, got %q", lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "200 ") || !strings.Contains(l, ".html") {
			t.Errorf("unexpected hook line %q", l)
		}
	}
}

func TestHookFilters(t *testing.T) {
	if hookFilters(&config.Options{}) != nil {
		t.Error("expected nil chain without filters")
	}
	chain := hookFilters(&config.Options{ExcludeStatus: []int{403}, ExcludeSize: []int{0}})
	if chain.Len() != 2 {
		t.Errorf("chain has %d filters, want 2", chain.Len())
	}
	if skip, _ := chain.Apply(probe.Succeeded("u", 403, 10)); !skip {
		t.Error("403 should be skipped")
	}
}
