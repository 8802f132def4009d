// Package log builds the slog logger used across urlbypass. Every record
// passes through RedactingHandler so proxy credentials and header secrets
// never reach stderr.
package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// Mask replaces redacted values.
const Mask = "***REDACTED***"

// keywords that mark an attribute key as secret, matched as substrings of
// the lower-cased key
var sensitiveKeywords = []string{
	"authorization", "cookie", "password", "passwd", "secret",
	"token", "api_key", "apikey", "api-key", "credential", "session",
}

// RedactingHandler wraps another slog.Handler. Attributes whose key looks
// secret are masked, and URL-valued strings lose their userinfo.
type RedactingHandler struct {
	next slog.Handler
}

func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redact(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redact(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redact(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, g := range group {
			clean[i] = redact(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, Mask)
	}
	if a.Value.Kind() == slog.KindString {
		if s, ok := StripUserinfo(a.Value.String()); ok {
			return slog.String(a.Key, s)
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// StripUserinfo removes credentials from a URL string. It reports false
// when s is not an absolute URL carrying userinfo.
func StripUserinfo(s string) (string, bool) {
	if !strings.Contains(s, "://") || !strings.Contains(s, "@") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s, false
	}
	u.User = url.User(Mask)
	return u.String(), true
}

// NewLogger returns a redacting logger writing to w. The level is Warn, or
// Debug when verbose is set. asJSON switches to the JSON handler.
func NewLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if asJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactingHandler(h))
}
