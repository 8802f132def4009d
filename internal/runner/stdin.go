package runner

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/maxvaer/urlbypass/internal/probe"
)

// startStdinToggle reads single keypresses from stdin and toggles the
// returned pauser on Enter or Space. cleanup restores the terminal. If
// stdin is not a terminal the pauser is nil and cleanup does nothing.
func startStdinToggle(status io.Writer) (pauser *probe.Pauser, cleanup func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, func() {}
	}

	// MakeRaw also disables OPOST, which breaks \n -> \r\n translation
	// for everything printed while the run is active.
	fixOutputProcessing(fd)

	pauser = probe.NewPauser()
	cleanup = func() {
		_ = term.Restore(fd, oldState)
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}

			switch key := buf[0]; key {
			case 0x03: // Ctrl+C: hand the interrupt back to the signal handler
				_ = term.Restore(fd, oldState)
				sendInterrupt()
				return
			case '\r', '\n', ' ':
				if pauser.Toggle() {
					fmt.Fprint(status, "\r\033[K[*] Paused, press Enter or Space to resume\n")
				} else {
					fmt.Fprint(status, "\r\033[K[*] Resumed\n")
				}
			}
		}
	}()

	return pauser, cleanup
}
