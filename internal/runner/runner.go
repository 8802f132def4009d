package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/maxvaer/urlbypass/internal/config"
	"github.com/maxvaer/urlbypass/internal/filter"
	"github.com/maxvaer/urlbypass/internal/hook"
	applog "github.com/maxvaer/urlbypass/internal/log"
	"github.com/maxvaer/urlbypass/internal/output"
	"github.com/maxvaer/urlbypass/internal/patterns"
	"github.com/maxvaer/urlbypass/internal/probe"
	"github.com/maxvaer/urlbypass/internal/store"
	"github.com/maxvaer/urlbypass/internal/variant"
)

// env carries the process-level dependencies of a run so tests can swap
// them out.
type env struct {
	stdout      io.Writer
	stderr      io.Writer
	logger      *slog.Logger
	interactive bool // stderr and stdin are terminals
}

// Run executes the full pipeline: resolve targets, load patterns,
// generate candidates, probe them, then report.
func Run(ctx context.Context, opts *config.Options) error {
	return run(ctx, opts, env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: applog.NewLogger(os.Stderr, opts.Verbose, opts.LogJSON),
		interactive: term.IsTerminal(int(os.Stderr.Fd())) &&
			term.IsTerminal(int(os.Stdin.Fd())),
	})
}

func run(ctx context.Context, opts *config.Options, e env) error {
	logger := e.logger
	start := time.Now()

	targets, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	list, err := patterns.Load(opts.PatternFile, patterns.DefaultFallback)
	switch {
	case errors.Is(err, patterns.ErrMissing):
		logger.Warn("dictionary not found, using fallback patterns",
			slog.String("path", opts.PatternFile), slog.Any("patterns", list))
	case err != nil:
		return fmt.Errorf("loading patterns: %w", err)
	}

	valid, candidates, shared, err := generate(targets, list, opts.ListFile != "", logger)
	if err != nil {
		return err
	}

	console := output.NewConsole(e.stdout, opts.NoColor)
	if !opts.Quiet {
		console.Banner(output.Banner{
			Targets:  targets,
			Timeout:  opts.Timeout,
			Workers:  opts.Workers,
			Proxy:    redactProxy(opts.Proxy),
			Dict:     opts.PatternFile,
			Output:   opts.OutputFile,
			Patterns: len(list),
		})
	}

	results, incomplete, err := probeAll(ctx, opts, e, candidates)
	if err != nil {
		return err
	}

	report := output.NewReport(valid, results, start, time.Now(), incomplete)
	report.Shared = shared
	console.Buckets(report.Buckets)

	if opts.OutputFile != "" {
		if err := output.WriteFile(opts.OutputFile, opts.OutputFormat, report); err != nil {
			logger.Error("report not written", slog.Any("err", err))
		} else {
			logger.Info("report written", slog.String("path", opts.OutputFile), slog.String("format", opts.OutputFormat))
		}
	}

	if opts.Save {
		saveRun(opts.DBDir, report, results, logger)
	}

	console.Finish(time.Since(start), len(results), incomplete)

	if incomplete {
		return fmt.Errorf("%w: %d of %d URLs checked", probe.ErrIncomplete, len(results), len(candidates))
	}
	return nil
}

// resolveTargets returns the base URLs to probe from -u or -l.
func resolveTargets(opts *config.Options) ([]string, error) {
	if opts.URL != "" {
		return []string{opts.URL}, nil
	}
	if opts.ListFile == "" {
		return nil, config.ErrNoTarget
	}
	targets, err := patterns.LoadTargets(opts.ListFile)
	if err != nil {
		return nil, fmt.Errorf("loading URL list: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no URLs in %s", opts.ListFile)
	}
	return targets, nil
}

// generate builds the candidate URLs for every target. In list mode an
// invalid target is logged and skipped; otherwise it aborts the run.
// Candidates keep per-target sorted order and are de-duplicated across
// targets; shared counts the candidates another target already produced.
func generate(targets, list []string, listMode bool, logger *slog.Logger) (valid, candidates []string, shared int, err error) {
	seen := make(map[string]struct{})
	for i, target := range targets {
		set, err := variant.Generate(target, list)
		if err != nil {
			if listMode && errors.Is(err, variant.ErrInvalidURL) {
				logger.Warn("skipping target", slog.String("target", target), slog.Any("err", err))
				continue
			}
			return nil, nil, 0, err
		}
		bound, _ := variant.MaxCandidates(target, list)
		logger.Debug("generated candidates",
			slog.Int("target", i+1), slog.Int("of", len(targets)),
			slog.String("url", target), slog.Int("candidates", set.Len()),
			slog.Int("collapsed", bound-set.Len()))

		valid = append(valid, target)
		for _, u := range set.Sorted() {
			if _, dup := seen[u]; dup {
				shared++
				continue
			}
			seen[u] = struct{}{}
			candidates = append(candidates, u)
		}
	}
	if shared > 0 {
		logger.Info("candidates shared between targets are probed once", slog.Int("shared", shared))
	}
	return valid, candidates, shared, nil
}

// probeAll wires the optional limiter, throttle, hook, progress bar and
// pause toggle around a single probe.Collect call.
func probeAll(ctx context.Context, opts *config.Options, e env, candidates []string) ([]probe.Result, bool, error) {
	cfg := opts.ProbeConfig()
	if opts.RPS > 0 {
		cfg.Limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	if opts.AdaptiveThrottle {
		cfg.Throttler = probe.NewThrottler(0, true, e.logger)
	}

	req, err := probe.NewRequester(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("creating requester: %w", err)
	}

	var progress *output.Progress
	if e.interactive && !opts.Quiet && !opts.NoProgress && len(candidates) > 0 {
		progress = output.NewProgress(e.stderr, len(candidates), opts.NoColor)
		pauser, cleanup := startStdinToggle(e.stderr)
		defer cleanup()
		cfg.Pauser = pauser
	}

	var hooks *hook.Runner
	if opts.OnResult != "" {
		hooks = hook.NewRunner(opts.OnResult, e.stderr, e.logger)
	}
	chain := hookFilters(opts)

	hits := 0
	cfg.Observer = func(r probe.Result) {
		progress.Observe(r)
		if status, ok := r.StatusCode(); ok && status >= 200 && status < 300 {
			hits++
			progress.Hits(hits)
		}
		if hooks == nil {
			return
		}
		if skip, reason := chain.Apply(r); skip {
			e.logger.Debug("hook skipped", slog.String("url", r.URL), slog.String("filter", reason))
			return
		}
		hooks.Run(ctx, r)
	}

	e.logger.Info("probing", slog.Int("urls", len(candidates)), slog.Int("workers", opts.Workers))
	results, err := probe.Collect(ctx, req, candidates, cfg)
	progress.Finish()
	if cfg.Pauser != nil {
		if d := cfg.Pauser.PausedDuration(); d > 0 {
			e.logger.Info("time spent paused", slog.Duration("paused", d))
		}
	}

	if errors.Is(err, probe.ErrIncomplete) {
		e.logger.Warn("run interrupted", slog.Any("err", err))
		return results, true, nil
	}
	return results, false, err
}

// hookFilters builds the chain deciding which results reach --on-result.
// It returns nil when no filter is configured.
func hookFilters(opts *config.Options) *filter.Chain {
	if len(opts.IncludeStatus) == 0 && len(opts.ExcludeStatus) == 0 && len(opts.ExcludeSize) == 0 {
		return nil
	}
	chain := filter.NewChain()
	if len(opts.IncludeStatus) > 0 || len(opts.ExcludeStatus) > 0 {
		chain.Add(filter.NewStatusFilter(opts.IncludeStatus, opts.ExcludeStatus))
	}
	if len(opts.ExcludeSize) > 0 {
		chain.Add(filter.NewSizeFilter(opts.ExcludeSize))
	}
	return chain
}

func saveRun(dir string, report *output.Report, results []probe.Result, logger *slog.Logger) {
	db, err := store.Open(dir)
	if err != nil {
		logger.Error("history not saved", slog.Any("err", err))
		return
	}
	defer db.Close()

	id, err := db.SaveRun(context.Background(), store.Run{
		Targets:    report.Targets,
		Started:    report.Start,
		Duration:   report.Duration,
		Incomplete: report.Incomplete,
	}, results)
	if err != nil {
		logger.Error("history not saved", slog.Any("err", err))
		return
	}
	logger.Info("run saved", slog.Int64("id", id), slog.String("db", db.Path()))
}

func redactProxy(proxy string) string {
	if s, ok := applog.StripUserinfo(proxy); ok {
		return s
	}
	return proxy
}
