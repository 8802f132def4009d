package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"

	"github.com/maxvaer/urlbypass/internal/probe"
)

// AppName names the XDG subdirectories used by urlbypass.
const AppName = "urlbypass"

const (
	DefaultTimeout     = probe.DefaultTimeout
	DefaultWorkers     = probe.DefaultWorkers
	DefaultFormat      = "text"
	DefaultPatternFile = "url-bypass.txt"
)

// Formats lists the report file formats accepted by --format.
var Formats = []string{"text", "json", "csv", "markdown"}

// Options holds all configuration for a urlbypass run.
type Options struct {
	// Target
	URL         string
	ListFile    string
	PatternFile string

	// Performance
	Workers          int
	Timeout          time.Duration
	RPS              float64 // 0 = unlimited
	AdaptiveThrottle bool

	// HTTP
	Proxy     string
	UserAgent string
	Insecure  bool

	// Output
	OutputFile   string
	OutputFormat string
	Quiet        bool
	NoColor      bool
	NoProgress   bool
	Verbose      bool
	LogJSON      bool

	// History
	Save  bool
	DBDir string

	// Hook
	OnResult      string // shell command run per result
	IncludeStatus []int  // only these statuses trigger the hook
	ExcludeStatus []int
	ExcludeSize   []int

	ConfigFile string
}

// NewOptions returns Options populated with defaults.
func NewOptions() *Options {
	return &Options{
		PatternFile:  filepath.Join(XDGConfigDir(), DefaultPatternFile),
		Workers:      DefaultWorkers,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultFormat,
		DBDir:        XDGDataDir(),
	}
}

// XDGConfigDir is where the default dictionary and config.yaml live,
// e.g. ~/.config/urlbypass on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir is the default location of the run history database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ProbeConfig maps the HTTP and performance options onto a probe.Config.
// Observer, limiter, pauser and throttler are left for the caller.
func (o *Options) ProbeConfig() probe.Config {
	return probe.Config{
		Workers:   o.Workers,
		Timeout:   o.Timeout,
		Proxy:     o.Proxy,
		UserAgent: o.UserAgent,
		Insecure:  o.Insecure,
	}
}

// Validate checks the options and returns the first problem found.
func (o *Options) Validate() error {
	if o.URL == "" && o.ListFile == "" {
		return ErrNoTarget
	}
	if o.URL != "" && o.ListFile != "" {
		return ErrConflictingTargets
	}
	if o.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if o.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if !slices.Contains(Formats, o.OutputFormat) {
		return fmtErr(ErrUnknownFormat, o.OutputFormat)
	}
	if o.RPS < 0 {
		return ErrInvalidRate
	}
	if len(o.IncludeStatus) > 0 && len(o.ExcludeStatus) > 0 {
		return ErrConflictingStatus
	}
	return nil
}
