//go:build linux

package app

import (
	"golang.org/x/sys/unix"
)

func (app *Application) suspendToShell() {
	// Return terminal control to the shell before stopping the process.
	_ = app.screen.Suspend()
	// Stop only this process, not the whole process group.
	_ = unix.Kill(unix.Getpid(), unix.SIGTSTP)
}

func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		return false
	}
	app.screen.Sync()
	// The terminal may have changed size while we were stopped.
	app.resized.Store(true)
	return true
}
