package probe

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second

	// consecutive transport failures before they count as a throttle signal
	errorThreshold = 3
)

// Throttler adds an adaptive delay before each request. A 429 or 503
// answer, or a run of transport failures, doubles the delay up to
// maxBackoff; the first healthy answer afterwards halves it back toward
// the base delay. A nil *Throttler adds no delay.
type Throttler struct {
	mu          sync.Mutex
	base        time.Duration
	current     time.Duration
	consecutive int
	adaptive    bool
	logger      *slog.Logger
}

// NewThrottler returns a throttler starting at base. When adaptive is
// false the delay stays fixed at base.
func NewThrottler(base time.Duration, adaptive bool, logger *slog.Logger) *Throttler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Throttler{
		base:     base,
		current:  base,
		adaptive: adaptive,
		logger:   logger,
	}
}

// Delay returns the wait to apply before the next request.
func (t *Throttler) Delay() time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Record feeds a finished result back into the throttler.
func (t *Throttler) Record(res Result) {
	if t == nil || !t.adaptive {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := res.StatusCode()
	switch {
	case !ok:
		t.consecutive++
		if t.consecutive >= errorThreshold {
			t.backoffLocked("repeated transport errors", slog.Int("errors", t.consecutive))
		}
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		t.consecutive++
		t.backoffLocked("rate limited", slog.Int("status", status))
	case t.consecutive > 0:
		t.consecutive = 0
		next := max(t.current/2, t.base)
		if next != t.current {
			t.current = next
			t.logger.Info("throttle recovering", slog.Duration("delay", t.current))
		}
	}
}

func (t *Throttler) backoffLocked(reason string, attr slog.Attr) {
	next := min(max(t.current*2, minBackoff), maxBackoff)
	if next == t.current {
		return
	}
	t.current = next
	t.logger.Warn("backing off: "+reason, attr, slog.Duration("delay", t.current))
}
