package runner

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maxvaer/urlbypass/internal/config"
)

// bypassServer answers 200 for any path carrying ".html" and 403
// otherwise.
func bypassServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, ".html") {
			fmt.Fprint(w, "bypassed")
			return
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "forbidden")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeLines(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOpts(t *testing.T, url, dict string) *config.Options {
	t.Helper()
	opts := config.NewOptions()
	opts.URL = url
	opts.PatternFile = dict
	opts.Workers = 4
	opts.Timeout = 5 * time.Second
	opts.NoColor = true
	opts.OutputFile = filepath.Join(t.TempDir(), "report.txt")
	opts.DBDir = t.TempDir()
	return opts
}

type capture struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	logs   bytes.Buffer
}

func (c *capture) env() env {
	return env{
		stdout: &c.stdout,
		stderr: &c.stderr,
		logger: slog.New(slog.NewTextHandler(&c.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
