package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LocalConfigFile is looked up in the working directory.
const LocalConfigFile = ".urlbypass.yaml"

// File is the YAML configuration file. Every field is optional; unset
// fields leave the corresponding option alone.
type File struct {
	Timeout   *int     `yaml:"timeout,omitempty"` // seconds
	Workers   *int     `yaml:"workers,omitempty"`
	Proxy     *string  `yaml:"proxy,omitempty"`
	Dict      *string  `yaml:"dict,omitempty"`
	Format    *string  `yaml:"format,omitempty"`
	RPS       *float64 `yaml:"rps,omitempty"`
	UserAgent *string  `yaml:"user_agent,omitempty"`
	Insecure  *bool    `yaml:"insecure,omitempty"`
	DBDir     *string  `yaml:"db_dir,omitempty"`
}

// LoadFile parses the YAML file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile returns the configuration file to use:
//  1. explicit, when non-empty (even if missing, so LoadFile can report it)
//  2. .urlbypass.yaml in the working directory
//  3. config.yaml under the XDG config directory
//
// It returns "" when nothing is found.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{
		LocalConfigFile,
		filepath.Join(XDGConfigDir(), "config.yaml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Apply copies file values into o. Options whose flag was set explicitly
// on the command line, as reported by changed, keep the flag value.
func (f *File) Apply(o *Options, changed func(flag string) bool) {
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if f.Timeout != nil && !changed("timeout") {
		o.Timeout = time.Duration(*f.Timeout) * time.Second
	}
	if f.Workers != nil && !changed("workers") {
		o.Workers = *f.Workers
	}
	if f.Proxy != nil && !changed("proxy") {
		o.Proxy = *f.Proxy
	}
	if f.Dict != nil && !changed("dict") {
		o.PatternFile = *f.Dict
	}
	if f.Format != nil && !changed("format") {
		o.OutputFormat = *f.Format
	}
	if f.RPS != nil && !changed("rps") {
		o.RPS = *f.RPS
	}
	if f.UserAgent != nil && !changed("user-agent") {
		o.UserAgent = *f.UserAgent
	}
	if f.Insecure != nil && !changed("insecure") {
		o.Insecure = *f.Insecure
	}
	if f.DBDir != nil && !changed("db-dir") {
		o.DBDir = *f.DBDir
	}
}
