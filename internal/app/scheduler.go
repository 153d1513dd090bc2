package app

import (
	"github.com/kk-code-lab/pagemon/internal/logflags"
	"github.com/kk-code-lab/pagemon/internal/pageindex"
	"github.com/kk-code-lab/pagemon/internal/procfs"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
	"github.com/sirupsen/logrus"
)

// vmStatsEvery is the number of ticks between VM statistics refreshes.
const vmStatsEvery = 32

// Target is the traced process as seen by the scheduler. procfs.Proc
// implements it.
type Target interface {
	pageindex.MapSource
	Alive() error
	ResetSoftDirty() error
	ReadVMStats() (procfs.VMStats, error)
}

// Scheduler performs the per-tick refresh work: liveness probe, soft-dirty
// reset cadence, map re-scan and auto zoom.
type Scheduler struct {
	target  Target
	builder *pageindex.Builder
	reducer *statepkg.StateReducer
	log     *logrus.Entry
}

// NewScheduler creates a scheduler refreshing state from target.
func NewScheduler(target Target, builder *pageindex.Builder, reducer *statepkg.StateReducer) *Scheduler {
	return &Scheduler{
		target:  target,
		builder: builder,
		reducer: reducer,
		log:     logflags.AppLogger(),
	}
}

// Tick advances the tick counters and refreshes state. Errors end the loop.
func (s *Scheduler) Tick(state *statepkg.AppState) error {
	if err := s.target.Alive(); err != nil {
		return err
	}
	state.AdvanceTick()

	state.ResetTick++
	if state.ResetTick >= state.ResetTicks {
		state.ResetTick = 0
		if err := s.target.ResetSoftDirty(); err != nil {
			s.log.Warnf("soft-dirty reset failed: %v", err)
		}
	}

	if state.Mode == statepkg.ViewPage || state.Index == nil {
		if err := s.rescan(state); err != nil {
			return err
		}
	}

	if _, err := s.reducer.Reduce(state, statepkg.AutoZoomAction{}); err != nil {
		return err
	}

	if state.ShowVMStats && (state.VMStats == nil || state.Tick%vmStatsEvery == 0) {
		stats, err := s.target.ReadVMStats()
		if err != nil {
			s.log.Debugf("vm stats: %v", err)
		} else {
			state.VMStats = &stats
		}
	}
	return nil
}

func (s *Scheduler) rescan(state *statepkg.AppState) error {
	ix, changed, err := s.builder.Rebuild(s.target)
	if err != nil {
		return err
	}
	if !changed && state.Index == ix {
		return nil
	}
	_, err = s.reducer.Reduce(state, statepkg.IndexChangedAction{Index: ix})
	return err
}
