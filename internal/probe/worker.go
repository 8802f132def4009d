package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrIncomplete is returned alongside partial results when a run was
// cancelled before every URL was probed.
var ErrIncomplete = errors.New("probe run incomplete")

// Probe builds a Requester from cfg and probes every distinct URL in urls.
func Probe(ctx context.Context, urls []string, cfg Config) ([]Result, error) {
	req, err := NewRequester(cfg)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, req, urls, cfg)
}

// Collect probes every distinct URL with req and returns one result per
// URL, in completion order. It returns only once every dispatched request
// has finished. If ctx is cancelled first, the results gathered so far are
// returned with an error wrapping ErrIncomplete.
func Collect(ctx context.Context, req *Requester, urls []string, cfg Config) ([]Result, error) {
	unique := dedupe(urls)
	results := make([]Result, 0, len(unique))
	for res := range RunWorkerPool(ctx, req, unique, cfg) {
		results = append(results, res)
		if cfg.Observer != nil {
			cfg.Observer(res)
		}
	}

	if len(results) < len(unique) {
		return results, fmt.Errorf("%w: %d of %d URLs probed: %v",
			ErrIncomplete, len(results), len(unique), context.Cause(ctx))
	}
	return results, nil
}

// RunWorkerPool fans urls out across cfg.Workers goroutines and returns a
// channel of results. The channel is closed once every worker has exited.
//
// After ctx is cancelled no new request is started. Requests already in
// flight are allowed to finish under their own timeout so their results
// are still delivered.
func RunWorkerPool(ctx context.Context, req *Requester, urls []string, cfg Config) <-chan Result {
	workers := cfg.workers(len(urls))
	urlsCh := make(chan string, workers*2)
	resultsCh := make(chan Result, workers*2)

	if len(urls) == 0 {
		close(resultsCh)
		return resultsCh
	}

	// A paused run must still be able to wind down on cancellation.
	stopResume := func() bool { return false }
	if cfg.Pauser != nil {
		stopResume = context.AfterFunc(ctx, cfg.Pauser.Resume)
	}

	go func() {
		defer close(urlsCh)
		for _, u := range urls {
			select {
			case urlsCh <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for u := range urlsCh {
				if !waitTurn(ctx, cfg) {
					continue
				}
				res := req.Probe(context.WithoutCancel(ctx), u)
				cfg.Throttler.Record(res)
				resultsCh <- res
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		stopResume()
		close(resultsCh)
	}()

	return resultsCh
}

// waitTurn blocks until the worker may start its next request. It reports
// false when ctx was cancelled in the meantime.
func waitTurn(ctx context.Context, cfg Config) bool {
	if ctx.Err() != nil {
		return false
	}
	if cfg.Pauser != nil {
		cfg.Pauser.Wait()
		if ctx.Err() != nil {
			return false
		}
	}
	if d := cfg.Throttler.Delay(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return false
		}
	}
	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return false
		}
	}
	return true
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
