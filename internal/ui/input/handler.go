package input

import (
	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for overlay checks
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
	}
}

// SetState sets the state reference for overlay checks
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. It returns false once
// the event asked the application to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	default:
		return true
	}
}

// processKeyEvent handles keyboard input
func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	helpVisible := ih.state != nil && ih.state.HelpVisible

	if helpVisible {
		switch ev.Key() {
		case tcell.KeyCtrlC:
			ih.actionChan <- statepkg.QuitAction{}
			return false
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.HelpHideAction{}
			return true
		case tcell.KeyRune:
			r := ev.Rune()
			if r == '?' || r == 'q' || r == 'Q' {
				ih.actionChan <- statepkg.HelpHideAction{}
			}
			return true
		default:
			return true
		}
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		ih.actionChan <- statepkg.QuitAction{}
		return false

	case tcell.KeyCtrlZ:
		ih.actionChan <- statepkg.SuspendAction{}
		return true

	case tcell.KeyEnter, tcell.KeyTab:
		ih.actionChan <- statepkg.ToggleViewAction{}
		return true

	case tcell.KeyUp:
		ih.actionChan <- statepkg.MoveCursorAction{DY: -1}
		return true

	case tcell.KeyDown:
		ih.actionChan <- statepkg.MoveCursorAction{DY: 1}
		return true

	case tcell.KeyLeft:
		ih.actionChan <- statepkg.MoveCursorAction{DX: -1}
		return true

	case tcell.KeyRight:
		ih.actionChan <- statepkg.MoveCursorAction{DX: 1}
		return true

	case tcell.KeyPgUp:
		ih.actionChan <- statepkg.PageUpAction{}
		return true

	case tcell.KeyPgDn:
		ih.actionChan <- statepkg.PageDownAction{}
		return true

	case tcell.KeyHome:
		ih.actionChan <- statepkg.JumpStartAction{}
		return true

	case tcell.KeyEnd:
		ih.actionChan <- statepkg.JumpEndAction{}
		return true

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			ih.actionChan <- statepkg.QuitAction{}
			return false

		case '?':
			ih.actionChan <- statepkg.HelpToggleAction{}

		case '+', '=':
			ih.actionChan <- statepkg.ZoomInAction{}

		case '-', '_':
			ih.actionChan <- statepkg.ZoomOutAction{}

		case 'z', 'Z':
			ih.actionChan <- statepkg.ToggleAutoZoomAction{}

		case 'v', 'V':
			ih.actionChan <- statepkg.ToggleVMStatsAction{}

		case ' ':
			ih.actionChan <- statepkg.PageDownAction{}

		// vi-style movement
		case 'h':
			ih.actionChan <- statepkg.MoveCursorAction{DX: -1}
		case 'j':
			ih.actionChan <- statepkg.MoveCursorAction{DY: 1}
		case 'k':
			ih.actionChan <- statepkg.MoveCursorAction{DY: -1}
		case 'l':
			ih.actionChan <- statepkg.MoveCursorAction{DX: 1}
		case 'g':
			ih.actionChan <- statepkg.JumpStartAction{}
		case 'G':
			ih.actionChan <- statepkg.JumpEndAction{}
		}
		return true

	default:
		return true
	}
}
