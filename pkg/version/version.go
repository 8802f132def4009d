// Package version reports build metadata. Release builds set the variables
// with -ldflags "-X github.com/maxvaer/urlbypass/pkg/version.Version=...".
package version

import "runtime/debug"

var (
	Version = "dev"
	commit  = ""
	date    = ""
)

// Commit returns the short VCS revision, from ldflags or build info.
func Commit() string {
	if commit != "" {
		return commit
	}
	if rev := setting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// Date returns the build or commit date.
func Date() string {
	if date != "" {
		return date
	}
	if t := setting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// String returns Version, falling back to the module version recorded by
// "go install" when no ldflags were given.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func setting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
