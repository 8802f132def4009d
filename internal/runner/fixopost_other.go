//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package runner

// Output processing survives raw mode on these platforms.
func fixOutputProcessing(int) {}
