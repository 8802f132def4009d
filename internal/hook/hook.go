package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/maxvaer/urlbypass/internal/probe"
)

// DefaultTimeout bounds a single hook invocation.
const DefaultTimeout = 30 * time.Second

// payload is the JSON document sent to the hook command on stdin.
type payload struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Status  *int   `json:"status,omitempty"`
	Size    *int64 `json:"size,omitempty"`
	Message string `json:"message"`
}

// Runner executes a shell command for each probe result.
type Runner struct {
	cmd     string
	out     io.Writer
	logger  *slog.Logger
	timeout time.Duration
}

// NewRunner creates a hook runner for the shell command cmd. Whatever the
// command prints goes to out.
func NewRunner(cmd string, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cmd: cmd, out: out, logger: logger, timeout: DefaultTimeout}
}

// Run executes the hook with res as JSON on stdin. {url}, {status}, {size}
// and {message} in the command are replaced first; a failed probe expands
// {status} to ERROR and {size} to nothing. Hook failures are logged and
// never stop the run.
func (r *Runner) Run(ctx context.Context, res probe.Result) {
	p := payload{URL: res.URL, Success: res.Success(), Message: res.Message}
	status, size := "ERROR", ""
	if code, ok := res.StatusCode(); ok {
		n, _ := res.ContentLength()
		p.Status, p.Size = &code, &n
		status, size = strconv.Itoa(code), strconv.FormatInt(n, 10)
	}

	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Warn("hook payload", slog.Any("err", err))
		return
	}

	expanded := strings.NewReplacer(
		"{url}", res.URL,
		"{status}", status,
		"{size}", size,
		"{message}", res.Message,
	).Replace(r.cmd)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		r.logger.Warn("hook failed",
			slog.String("url", res.URL),
			slog.Any("err", err),
			slog.String("stderr", strings.TrimSpace(stderr.String())))
		return
	}
	if len(output) > 0 && r.out != nil {
		_, _ = r.out.Write(output)
	}
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
