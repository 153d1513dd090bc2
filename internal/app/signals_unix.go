//go:build linux

package app

import (
	"os"

	"golang.org/x/sys/unix"
)

func contSignals() []os.Signal {
	return []os.Signal{unix.SIGCONT}
}

func resizeSignals() []os.Signal {
	return []os.Signal{unix.SIGWINCH}
}

// faultSignals are delivered asynchronously, e.g. by another process. A fault
// raised by our own reads surfaces as a panic instead.
func faultSignals() []os.Signal {
	return []os.Signal{unix.SIGSEGV, unix.SIGBUS}
}
