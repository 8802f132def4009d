package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maxvaer/urlbypass/pkg/version"
)

// Defaults applied when a Config leaves the corresponding field zero.
const (
	DefaultWorkers = 10
	DefaultTimeout = 5 * time.Second
)

// Response holds what a probe keeps from an HTTP response.
type Response struct {
	StatusCode    int
	ContentLength int64
	FinalURL      string // URL after following redirects
	Duration      time.Duration
}

// Requester wraps an HTTP client configured for probing.
type Requester struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewRequester creates a Requester from cfg. Redirects are followed and
// every request is bounded by cfg.Timeout.
func NewRequester(cfg Config) (*Requester, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}, //nolint:gosec // opt-in via --insecure
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSHandshakeTimeout: timeout,
		MaxIdleConnsPerHost: workers,
		MaxIdleConns:        workers,
	}

	if cfg.Proxy != "" {
		proxyURL, err := NormalizeProxy(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "urlbypass/" + version.Version
	}

	return &Requester{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		userAgent: ua,
		timeout:   timeout,
	}, nil
}

// NormalizeProxy parses a proxy address, prefixing http:// when the caller
// gave a bare host:port.
func NormalizeProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing host", raw)
	}
	return u, nil
}

// Do issues a GET against target and reads the whole final body.
func (r *Requester) Do(ctx context.Context, target string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", target, err)
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		ContentLength: int64(len(body)),
		FinalURL:      resp.Request.URL.String(),
		Duration:      time.Since(start),
	}, nil
}

// Probe fetches target and turns the outcome into a Result. Transport
// errors are recorded in the result, never returned.
func (r *Requester) Probe(ctx context.Context, target string) Result {
	start := time.Now()
	resp, err := r.Do(ctx, target)
	if err != nil {
		res := Failed(target, err)
		res.Duration = time.Since(start)
		return res
	}
	res := Succeeded(target, resp.StatusCode, resp.ContentLength)
	res.Duration = resp.Duration
	return res
}
