package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"testing"

	"github.com/maxvaer/urlbypass/internal/probe"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook tests use sh")
	}
}

func TestRunnerPlaceholders(t *testing.T) {
	skipOnWindows(t)
	var out bytes.Buffer
	r := NewRunner("echo {status} {size} {url}", &out, nil)
	r.Run(context.Background(), probe.Succeeded("http://example.com/.html/admin", 200, 512))

	if got := strings.TrimSpace(out.String()); got != "200 512 http://example.com/.html/admin" {
		t.Errorf("hook output = %q", got)
	}
}

func TestRunnerFailedPlaceholders(t *testing.T) {
	skipOnWindows(t)
	var out bytes.Buffer
	r := NewRunner(`echo "[{status}]" "[{size}]"`, &out, nil)
	r.Run(context.Background(), probe.Failed("http://example.com/x", errors.New("refused")))

	if got := strings.TrimSpace(out.String()); got != "[ERROR] []" {
		t.Errorf("hook output = %q", got)
	}
}

func TestRunnerStdinPayload(t *testing.T) {
	skipOnWindows(t)
	var out bytes.Buffer
	r := NewRunner("cat", &out, nil)
	r.Run(context.Background(), probe.Succeeded("http://example.com/admin/..;", 403, 7))

	var p payload
	if err := json.Unmarshal(out.Bytes(), &p); err != nil {
		t.Fatalf("stdin is not JSON: %v: %q", err, out.String())
	}
	if p.URL != "http://example.com/admin/..;" || !p.Success || p.Status == nil || *p.Status != 403 || *p.Size != 7 {
		t.Errorf("payload = %+v", p)
	}
}

func TestRunnerFailureIsLogged(t *testing.T) {
	skipOnWindows(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r := NewRunner("echo boom >&2; exit 3", nil, logger)
	r.Run(context.Background(), probe.Succeeded("http://example.com/", 200, 0))

	if !strings.Contains(logs.String(), "hook failed") || !strings.Contains(logs.String(), "boom") {
		t.Errorf("expected logged failure, got %q", logs.String())
	}
}
