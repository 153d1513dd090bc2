package state

import "github.com/kk-code-lab/pagemon/internal/pageindex"

// Action is the base interface for all state mutations
type Action interface{}

// ===== NAVIGATION ACTIONS =====

type MoveCursorAction struct {
	DX int
	DY int
}
type PageUpAction struct{}
type PageDownAction struct{}
type JumpStartAction struct{}
type JumpEndAction struct{}
type ToggleViewAction struct{}

// ===== ZOOM ACTIONS =====

type ZoomInAction struct{}
type ZoomOutAction struct{}
type ToggleAutoZoomAction struct{}
type AutoZoomAction struct{} // recompute after a refresh

// ===== REFRESH ACTIONS =====

type IndexChangedAction struct {
	Index *pageindex.Index
}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type ToggleVMStatsAction struct{}
type HelpToggleAction struct{}
type HelpHideAction struct{}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}
type SuspendAction struct{} // Ctrl+Z
