package state

import "fmt"

// StateReducer applies actions to an AppState.
type StateReducer struct{}

// NewStateReducer creates a reducer.
func NewStateReducer() *StateReducer {
	return &StateReducer{}
}

// Reduce applies action to state. State is mutated in place; the returned
// pointer is the same state for call chaining.
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== NAVIGATION =====

	case MoveCursorAction:
		state.moveCursor(a.DX, a.DY)
		return state, nil

	case PageDownAction:
		state.scrollPage(1)
		return state, nil

	case PageUpAction:
		state.scrollPage(-1)
		return state, nil

	case JumpStartAction:
		state.home()
		return state, nil

	case JumpEndAction:
		if !state.TooSmall {
			state.jumpEnd()
		}
		return state, nil

	case ToggleViewAction:
		state.toggleView()
		return state, nil

	// ===== ZOOM =====

	case ZoomInAction:
		if state.Mode == ViewPage {
			state.AutoZoom = false
		}
		state.setZoom(state.Zoom + 1)
		return state, nil

	case ZoomOutAction:
		if state.Mode == ViewPage {
			state.AutoZoom = false
		}
		state.setZoom(state.Zoom - 1)
		return state, nil

	case ToggleAutoZoomAction:
		state.AutoZoom = !state.AutoZoom
		state.recomputeAutoZoom()
		return state, nil

	case AutoZoomAction:
		state.recomputeAutoZoom()
		return state, nil

	// ===== REFRESH =====

	case IndexChangedAction:
		state.Index = a.Index
		if !state.TooSmall {
			state.revalidate()
		}
		return state, nil

	// ===== VIEW =====

	case ResizeAction:
		if a.Width < 0 || a.Height < 0 {
			return state, fmt.Errorf("invalid screen size %dx%d", a.Width, a.Height)
		}
		state.resize(a.Width, a.Height)
		return state, nil

	case ToggleVMStatsAction:
		state.ShowVMStats = !state.ShowVMStats
		return state, nil

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case HelpHideAction:
		state.HelpVisible = false
		return state, nil

	case QuitAction, SuspendAction:
		// Handled by the application loop.
		return state, nil
	}

	return state, fmt.Errorf("unhandled action %T", action)
}
