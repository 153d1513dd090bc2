package app

import (
	"errors"
	"testing"

	"github.com/kk-code-lab/pagemon/internal/pageindex"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

func newSchedulerFixture(target *fakeTarget) (*Scheduler, *statepkg.AppState) {
	state := statepkg.NewAppState(42, testPageSize, 80, 24)
	state.ResetTicks = 3
	sched := NewScheduler(target, pageindex.NewBuilder(testPageSize), statepkg.NewStateReducer())
	return sched, state
}

func tickN(t *testing.T, s *Scheduler, state *statepkg.AppState, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Tick(state); err != nil {
			t.Fatalf("tick %d failed: %v", i+1, err)
		}
	}
}

func TestSchedulerStopsWhenTargetExits(t *testing.T) {
	target := &fakeTarget{maps: targetMaps, liveTicks: 2}
	sched, state := newSchedulerFixture(target)

	tickN(t, sched, state, 2)
	err := sched.Tick(state)
	if !pmerr.Is(err, pmerr.NoProcess) {
		t.Fatalf("expected NoProcess, got %v", err)
	}
	if state.Tick != 2 {
		t.Errorf("failed tick should not advance counters, tick=%d", state.Tick)
	}
	if pmerr.ExitCode(err) != 0 {
		t.Errorf("target exit should map to status 0, got %d", pmerr.ExitCode(err))
	}
}

func TestSchedulerResetCadence(t *testing.T) {
	target := &fakeTarget{maps: targetMaps}
	sched, state := newSchedulerFixture(target)

	tickN(t, sched, state, 7)

	if target.resets != 2 {
		t.Fatalf("expected 2 soft-dirty resets in 7 ticks, got %d", target.resets)
	}
	if state.ResetTick != 1 {
		t.Errorf("expected reset counter 1, got %d", state.ResetTick)
	}
}

func TestSchedulerResetFailureIsNotFatal(t *testing.T) {
	target := &fakeTarget{maps: targetMaps, resetErr: errors.New("permission denied")}
	sched, state := newSchedulerFixture(target)

	tickN(t, sched, state, 6)
	if target.resets != 2 {
		t.Fatalf("expected resets to keep being attempted, got %d", target.resets)
	}
}

func TestSchedulerRescansInPageView(t *testing.T) {
	target := &fakeTarget{maps: targetMaps}
	sched, state := newSchedulerFixture(target)

	tickN(t, sched, state, 1)
	if state.TotalPages() != 3 {
		t.Fatalf("expected 3 pages after first tick, got %d", state.TotalPages())
	}
	first := state.Index

	tickN(t, sched, state, 1)
	if state.Index != first {
		t.Errorf("unchanged listing should keep the same index")
	}

	target.setMaps(grownMaps)
	tickN(t, sched, state, 1)
	if state.TotalPages() != 7 {
		t.Fatalf("expected 7 pages after growth, got %d", state.TotalPages())
	}
}

func TestSchedulerSkipsRescanInMemoryView(t *testing.T) {
	target := &fakeTarget{maps: targetMaps}
	sched, state := newSchedulerFixture(target)
	tickN(t, sched, state, 1)

	if _, err := sched.reducer.Reduce(state, statepkg.ToggleViewAction{}); err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	target.setMaps(grownMaps)
	tickN(t, sched, state, 3)

	if state.TotalPages() != 3 {
		t.Fatalf("memory view should not rescan, have %d pages", state.TotalPages())
	}
}

func TestSchedulerAutoZoomFollowsGrowth(t *testing.T) {
	target := &fakeTarget{maps: "00400000-00800000 r-xp 00000000 08:01 1234 /usr/bin/big\n"}
	sched, state := newSchedulerFixture(target)
	state.AutoZoom = true

	tickN(t, sched, state, 1)

	// 1024 pages on a 63x22 grid.
	if state.Zoom != 1 {
		t.Fatalf("expected zoom 1, got %d", state.Zoom)
	}
	target.setMaps("00400000-00c00000 r-xp 00000000 08:01 1234 /usr/bin/big\n")
	tickN(t, sched, state, 1)
	if state.Zoom != 2 {
		t.Fatalf("expected zoom 2 for 2048 pages, got %d", state.Zoom)
	}
}

func TestSchedulerVMStatsCadence(t *testing.T) {
	target := &fakeTarget{maps: targetMaps}
	sched, state := newSchedulerFixture(target)

	tickN(t, sched, state, 4)
	if target.statsCalls != 0 {
		t.Fatalf("stats read while overlay hidden: %d", target.statsCalls)
	}

	state.ShowVMStats = true
	tickN(t, sched, state, 1)
	if target.statsCalls != 1 || state.VMStats == nil || state.VMStats.VmRSS != 512 {
		t.Fatalf("expected first stats read, calls=%d stats=%v", target.statsCalls, state.VMStats)
	}

	// Ticks 6..31 reuse the snapshot, tick 32 refreshes it.
	tickN(t, sched, state, 26)
	if target.statsCalls != 1 {
		t.Fatalf("unexpected refresh before tick %d: %d calls", vmStatsEvery, target.statsCalls)
	}
	tickN(t, sched, state, 1)
	if target.statsCalls != 2 {
		t.Fatalf("expected refresh at tick %d, got %d calls", state.Tick, target.statsCalls)
	}
}
