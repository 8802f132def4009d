package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors returned by Options.Validate.
var (
	ErrNoTarget           = errors.New("no target specified: use --url or --list")
	ErrConflictingTargets = errors.New("--url and --list cannot be used together")
	ErrInvalidTimeout     = errors.New("invalid timeout: must be positive")
	ErrInvalidWorkers     = errors.New("invalid worker count: must be positive")
	ErrUnknownFormat      = errors.New("unknown output format")
	ErrInvalidRate        = errors.New("invalid rate: must be non-negative")
	ErrConflictingStatus  = errors.New("--include-status and --exclude-status are mutually exclusive")
)

// ErrConfigNotFound is returned by LoadFile when the file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

func fmtErr(err error, format string) error {
	return fmt.Errorf("%w %q (want one of %s)", err, format, strings.Join(Formats, ", "))
}
