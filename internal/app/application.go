package app

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/pagemon/internal/config"
	"github.com/kk-code-lab/pagemon/internal/logflags"
	"github.com/kk-code-lab/pagemon/internal/pageindex"
	"github.com/kk-code-lab/pagemon/internal/pagemap"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	"github.com/kk-code-lab/pagemon/internal/procfs"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
	inputui "github.com/kk-code-lab/pagemon/internal/ui/input"
	renderui "github.com/kk-code-lab/pagemon/internal/ui/render"
	"github.com/sirupsen/logrus"
)

// memFailureLimit is the number of consecutive memory-view frames whose reads
// all failed before the loop gives up with NoMemInfo.
const memFailureLimit = 100

// Application represents the running app.
type Application struct {
	screen    tcell.Screen
	state     *statepkg.AppState
	reducer   *statepkg.StateReducer
	renderer  *renderui.Renderer
	input     *inputui.InputHandler
	scheduler *Scheduler
	source    renderui.Source
	actionCh  chan statepkg.Action
	delay     time.Duration

	shouldQuit  bool
	resized     atomic.Bool
	memFailures int
	guard       *faultGuard
	signals     chan os.Signal
	winch       chan os.Signal
	closers     []io.Closer
	closeOnce   sync.Once
	log         *logrus.Entry
}

// NewApplication attaches to the process named by opts and starts the
// terminal screen.
func NewApplication(opts config.Options) (*Application, error) {
	proc := procfs.Proc{Root: opts.ProcRoot, PID: opts.PID}
	if err := proc.Alive(); err != nil {
		return nil, err
	}
	pageSize := uint64(os.Getpagesize())

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	pm, err := proc.OpenPagemap()
	if err != nil {
		return nil, pmerr.Wrap(pmerr.NoMapInfo, err, "cannot open pagemap of pid %d", opts.PID)
	}
	closers = append(closers, pm)
	source := renderui.Source{Pagemap: pagemap.NewReader(pm, pageSize)}

	// The memory file is optional; unreadable bytes render as ?? and only a
	// persistent failure ends the session.
	log := logflags.AppLogger()
	if mem, err := proc.OpenMem(); err != nil {
		log.Warnf("memory of pid %d not readable: %v", opts.PID, err)
	} else {
		closers = append(closers, mem)
		source.Mem = mem
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		closeAll()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		closeAll()
		return nil, err
	}

	app, err := newApplication(screen, proc, source, pageSize, opts)
	if err != nil {
		screen.Fini()
		closeAll()
		return nil, err
	}
	app.closers = closers
	return app, nil
}

// newApplication wires an application around an initialized screen.
func newApplication(screen tcell.Screen, target Target, source renderui.Source, pageSize uint64, opts config.Options) (*Application, error) {
	w, h := screen.Size()
	if statepkg.WindowTooSmall(w, h) {
		return nil, pmerr.New(pmerr.SmallWindow, "terminal is %dx%d, need at least %dx%d",
			w, h, statepkg.MinScreenWidth, statepkg.MinScreenHeight)
	}

	state := statepkg.NewAppState(opts.PID, pageSize, w, h)
	state.Zoom = statepkg.ClampZoom(opts.Zoom)
	state.AutoZoom = opts.AutoZoom
	state.ResetTicks = opts.ResetTicks
	if state.ResetTicks < config.MinResetTicks {
		state.ResetTicks = config.DefaultResetTicks
	}
	state.ShowVMStats = opts.VMStats

	builder := pageindex.NewBuilder(pageSize)
	if opts.MaxPages > 0 {
		builder.MaxPages = opts.MaxPages
	}
	reducer := statepkg.NewStateReducer()

	ix, _, err := builder.Rebuild(target)
	if err != nil {
		return nil, err
	}
	if _, err := reducer.Reduce(state, statepkg.IndexChangedAction{Index: ix}); err != nil {
		return nil, err
	}
	if _, err := reducer.Reduce(state, statepkg.AutoZoomAction{}); err != nil {
		return nil, err
	}

	log := logflags.AppLogger()
	if opts.ReadAll && source.Mem != nil {
		touched, failed := procfs.TouchPages(source.Mem, ix.Addresses())
		log.Infof("read-all: %d pages touched, %d unreadable", touched, failed)
	}

	actionCh := make(chan statepkg.Action, 64)
	input := inputui.NewInputHandler(actionCh)
	input.SetState(state)

	delay := opts.Delay()
	if delay <= 0 {
		delay = time.Duration(config.DefaultDelayMicro) * time.Microsecond
	}

	return &Application{
		screen:    screen,
		state:     state,
		reducer:   reducer,
		renderer:  renderui.NewRenderer(screen),
		input:     input,
		scheduler: NewScheduler(target, builder, reducer),
		source:    source,
		actionCh:  actionCh,
		delay:     delay,
		guard:     newFaultGuard(),
		log:       log,
	}, nil
}

// State exposes the application state for inspection.
func (app *Application) State() *statepkg.AppState {
	return app.state
}

// Close restores the terminal and releases the target's files. It is safe to
// call more than once.
func (app *Application) Close() error {
	app.closeOnce.Do(func() {
		if app.signals != nil {
			signal.Stop(app.signals)
			signal.Stop(app.winch)
		}
		signal.Stop(app.guard.signals)
		app.screen.Fini()
		for _, c := range app.closers {
			_ = c.Close()
		}
	})
	return nil
}
