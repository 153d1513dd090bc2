package app

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/kk-code-lab/pagemon/internal/logflags"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
)

// faultGuard turns memory faults during a tick into a Fault error. Faults are
// either synchronous (a bad read panics with SetPanicOnFault enabled) or
// asynchronous (SIGSEGV/SIGBUS delivered to signals). A fault arriving while a
// previous one is still being unwound exits the process at once.
type faultGuard struct {
	signals  chan os.Signal
	faulting atomic.Bool
	exit     func(code int)
}

func newFaultGuard() *faultGuard {
	return &faultGuard{
		signals: make(chan os.Signal, 2),
		exit:    os.Exit,
	}
}

// run calls fn with panic-on-fault enabled and converts any panic it raises,
// or a fault signal received since the last call, into an error.
func (g *faultGuard) run(fn func() error) (err error) {
	if err := g.poll(); err != nil {
		return err
	}

	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		if r := recover(); r != nil {
			err = g.fault(fmt.Sprint(r))
		}
	}()
	return fn()
}

// poll reports a pending asynchronous fault signal.
func (g *faultGuard) poll() error {
	select {
	case sig := <-g.signals:
		return g.fault(sig.String())
	default:
		return nil
	}
}

// fault records a fault. The first one returns an error for the caller to
// unwind with; any later one exits immediately.
func (g *faultGuard) fault(cause string) error {
	if !g.faulting.CompareAndSwap(false, true) {
		g.exit(pmerr.Fault.ExitCode())
	}
	logflags.AppLogger().Errorf("fault: %s", cause)
	return pmerr.New(pmerr.Fault, "memory fault: %s", cause)
}

// unwinding reports whether a fault is being handled.
func (g *faultGuard) unwinding() bool {
	return g.faulting.Load()
}
