package probe

import (
	"time"

	"golang.org/x/time/rate"
)

// Config controls a probe run.
type Config struct {
	Workers   int           // max in-flight requests; <=0 means DefaultWorkers
	Timeout   time.Duration // per request; <=0 means DefaultTimeout
	Proxy     string        // host:port or full URL, applied to http and https
	UserAgent string
	Insecure  bool // skip TLS certificate verification

	// Observer is called once per finished result from the collecting
	// goroutine, never concurrently.
	Observer func(Result)

	Limiter   *rate.Limiter // nil = unlimited
	Pauser    *Pauser       // nil = no pause support
	Throttler *Throttler    // nil = no adaptive back-off
}

func (c Config) workers(n int) int {
	w := c.Workers
	if w <= 0 {
		w = DefaultWorkers
	}
	if w > n {
		w = n
	}
	return w
}
