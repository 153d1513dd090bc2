package app

import (
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

// Run drives the refresh loop until the user quits or the target goes away.
// The returned error carries the pmerr kind the process should exit with; a
// plain quit returns nil.
func (app *Application) Run() error {
	defer func() {
		_ = app.Close()
	}()

	done := make(chan struct{})
	defer close(done)
	eventChan := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	app.signals = make(chan os.Signal, 1)
	signal.Notify(app.signals, contSignals()...)
	app.winch = make(chan os.Signal, 1)
	signal.Notify(app.winch, resizeSignals()...)
	signal.Notify(app.guard.signals, faultSignals()...)

	timer := time.NewTimer(app.delay)
	defer timer.Stop()

	for !app.shouldQuit {
		if err := app.guard.run(app.step); err != nil {
			return err
		}
		if app.shouldQuit {
			break
		}

		resetTimer(timer, app.delay)
		app.waitFrame(timer, eventChan)
	}
	return nil
}

// waitFrame sleeps until timer fires, handling input and signals that arrive
// meanwhile. Input never shortens the frame, so the tick rate stays fixed.
func (app *Application) waitFrame(timer *time.Timer, eventChan <-chan tcell.Event) {
	for !app.shouldQuit {
		select {
		case ev := <-eventChan:
			app.handleInput(ev)
			app.drainEvents(eventChan)
		case <-timer.C:
			return
		case <-app.signals:
			app.resumeAfterStop()
		case <-app.winch:
			app.resized.Store(true)
		}
	}
}

// step runs one refresh: pending resize, scheduler tick and a redraw.
func (app *Application) step() error {
	if app.resized.Swap(false) {
		w, h := app.screen.Size()
		app.dispatch(statepkg.ResizeAction{Width: w, Height: h})
	}

	if err := app.scheduler.Tick(app.state); err != nil {
		return err
	}

	frame := app.renderer.Render(app.state, app.source)
	if app.state.Mode == statepkg.ViewMemory && !frame.TooSmall && frame.MemUnreadable() {
		app.memFailures++
		if app.memFailures >= memFailureLimit {
			return pmerr.New(pmerr.NoMemInfo, "memory of pid %d is unreadable", app.state.PID)
		}
	} else {
		app.memFailures = 0
	}
	return nil
}

func (app *Application) handleEvent(ev tcell.Event) {
	switch ev.(type) {
	case *tcell.EventKey:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventResize:
		app.resized.Store(true)
	}
}

// handleInput applies one event and the actions it queued, so the action
// channel never holds more than one event's worth.
func (app *Application) handleInput(ev tcell.Event) {
	app.handleEvent(ev)
	app.processActions()
}

func (app *Application) drainEvents(eventChan <-chan tcell.Event) {
	for !app.shouldQuit {
		select {
		case ev := <-eventChan:
			app.handleInput(ev)
		default:
			return
		}
	}
}

func (app *Application) processActions() {
	for {
		select {
		case action := <-app.actionCh:
			app.handleAction(action)
		default:
			return
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) {
	if action == nil {
		return
	}

	switch action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return
	}

	app.dispatch(action)
}

func (app *Application) dispatch(action statepkg.Action) {
	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
		app.log.Debugf("action %T: %v", action, err)
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
