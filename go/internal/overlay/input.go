package overlay

import "github.com/gdamore/tcell/v2"

// Action is what a key press asks the host to do.
type Action int

const (
	ActionNone Action = iota
	ActionToggleOverlay
	ActionToggleModal
	ActionStartGate
	ActionCheckpointGate
	ActionFinishGate
	ActionRespawn
	ActionBikeSwitch
	ActionBoundaryEnter
	ActionBoundaryExit
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionToggleOverlay:
		return "toggle_overlay"
	case ActionToggleModal:
		return "toggle_modal"
	case ActionStartGate:
		return "start_gate"
	case ActionCheckpointGate:
		return "checkpoint_gate"
	case ActionFinishGate:
		return "finish_gate"
	case ActionRespawn:
		return "respawn"
	case ActionBikeSwitch:
		return "bike_switch"
	case ActionBoundaryEnter:
		return "boundary_enter"
	case ActionBoundaryExit:
		return "boundary_exit"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// ActionForEvent maps a tcell event to an Action. Terminals report Shift+1
// as the '!' rune, which is the overlay hotkey.
func ActionForEvent(ev tcell.Event) Action {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return ActionNone
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyRune:
	default:
		return ActionNone
	}

	switch key.Rune() {
	case '!':
		return ActionToggleOverlay
	case 'm':
		return ActionToggleModal
	case 's':
		return ActionStartGate
	case 'c':
		return ActionCheckpointGate
	case 'f':
		return ActionFinishGate
	case 'r':
		return ActionRespawn
	case 'b':
		return ActionBikeSwitch
	case 'e':
		return ActionBoundaryEnter
	case 'x':
		return ActionBoundaryExit
	case 'q':
		return ActionQuit
	default:
		return ActionNone
	}
}
