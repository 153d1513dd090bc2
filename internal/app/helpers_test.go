package app

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/pagemon/internal/config"
	"github.com/kk-code-lab/pagemon/internal/pagemap"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	"github.com/kk-code-lab/pagemon/internal/procfs"
	renderui "github.com/kk-code-lab/pagemon/internal/ui/render"
)

const testPageSize = 0x1000

const targetMaps = "00400000-00403000 r-xp 00000000 08:01 1234 /usr/bin/target\n"

const grownMaps = targetMaps + "7f0000000000-7f0000004000 rw-p 00000000 00:00 0\n"

// fakeTarget is an in-memory traced process.
type fakeTarget struct {
	mu         sync.Mutex
	maps       string
	liveTicks  int // Alive fails after this many calls when positive
	aliveCalls int
	resets     int
	resetErr   error
	statsCalls int
}

func (f *fakeTarget) ReadMaps() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []byte(f.maps), nil
}

func (f *fakeTarget) setMaps(maps string) {
	f.mu.Lock()
	f.maps = maps
	f.mu.Unlock()
}

func (f *fakeTarget) Alive() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliveCalls++
	if f.liveTicks > 0 && f.aliveCalls > f.liveTicks {
		return pmerr.New(pmerr.NoProcess, "process 42 exited")
	}
	return nil
}

func (f *fakeTarget) ResetSoftDirty() error {
	f.resets++
	return f.resetErr
}

func (f *fakeTarget) ReadVMStats() (procfs.VMStats, error) {
	f.statsCalls++
	return procfs.VMStats{VmSize: 1024, VmRSS: 512}, nil
}

type presentDecoder struct{}

func (presentDecoder) DecodeRange(addr uint64, count int) ([]pagemap.Flags, error) {
	out := make([]pagemap.Flags, count)
	for i := range out {
		out[i].Present = true
	}
	return out, nil
}

// countingMem serves zero bytes and counts reads.
type countingMem struct {
	mu    sync.Mutex
	reads int
}

func (m *countingMem) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	clear(p)
	return len(p), nil
}

type failingMem struct{}

func (failingMem) ReadAt(p []byte, off int64) (int, error) {
	return 0, errors.New("input/output error")
}

var _ io.ReaderAt = failingMem{}

func testOptions() config.Options {
	opts := config.Defaults()
	opts.PID = 42
	opts.DelayMicro = 1000
	return opts
}

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(w, h)
	return screen
}

func newTestApplication(t *testing.T, target *fakeTarget, source renderui.Source, opts config.Options) (*Application, tcell.SimulationScreen) {
	t.Helper()
	screen := newSimScreen(t, 80, 24)
	app, err := newApplication(screen, target, source, testPageSize, opts)
	if err != nil {
		screen.Fini()
		t.Fatalf("newApplication failed: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close()
	})
	return app, screen
}
