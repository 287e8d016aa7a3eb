package overlay

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/splittimer/go/internal/scheduler"
	"github.com/mcdev12/splittimer/go/internal/splittimer"
	"github.com/mcdev12/splittimer/go/internal/trail"
	"github.com/rs/zerolog/log"
)

// demoBoundary is the single trail boundary the keyboard drives.
const demoBoundary = "demo"

// Bikes cycled by the bike switch key.
var demoBikes = []string{"enduro", "downhill", "hardtail"}

// Host owns the terminal session: it turns key presses into tracker and
// widget calls and drives the frame loop.
type Host struct {
	screen      tcell.Screen
	sched       *scheduler.Scheduler
	widget      *splittimer.Widget
	tracker     *trail.Tracker
	modal       *splittimer.ModalFlag
	checkpoints int
	nextBike    int
}

// NewHost wires a host. checkpoints is the total gate count of the trail,
// start and finish included; zero skips the split count check on finish.
func NewHost(screen tcell.Screen, sched *scheduler.Scheduler, widget *splittimer.Widget, tracker *trail.Tracker, modal *splittimer.ModalFlag, checkpoints int) *Host {
	return &Host{
		screen:      screen,
		sched:       sched,
		widget:      widget,
		tracker:     tracker,
		modal:       modal,
		checkpoints: checkpoints,
	}
}

// Handle applies one action. It must run on the scheduler goroutine.
func (h *Host) Handle(a Action) {
	var err error
	switch a {
	case ActionToggleOverlay:
		h.widget.ToggleVisibility()
	case ActionToggleModal:
		showing := h.modal.Toggle()
		log.Debug().Bool("showing", showing).Msg("modal toggled")
	case ActionStartGate:
		err = h.tracker.EnterCheckpoint(trail.CheckpointStart, h.checkpoints)
	case ActionCheckpointGate:
		err = h.tracker.EnterCheckpoint(trail.CheckpointIntermediate, h.checkpoints)
	case ActionFinishGate:
		err = h.tracker.EnterCheckpoint(trail.CheckpointFinish, h.checkpoints)
	case ActionRespawn:
		h.tracker.Respawn()
	case ActionBikeSwitch:
		h.tracker.BikeSwitch(demoBikes[h.nextBike])
		h.nextBike = (h.nextBike + 1) % len(demoBikes)
	case ActionBoundaryEnter:
		h.tracker.BoundaryEnter(demoBoundary)
	case ActionBoundaryExit:
		h.tracker.BoundaryExit(demoBoundary)
	default:
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, trail.ErrNoActiveRun):
		log.Debug().Str("action", a.String()).Msg("gate ignored, no active run")
	default:
		log.Warn().Err(err).Str("action", a.String()).Msg("gate failed")
	}
}

// Frame advances the scheduler and then the widget by dt.
func (h *Host) Frame(dt time.Duration) {
	h.sched.Tick(dt)
	h.widget.Tick(dt)
}

// Run polls input and drives frames until ctx ends or the quit key is pressed.
func (h *Host) Run(ctx context.Context, clock clockwork.Clock, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go h.pollEvents(cancel)

	return scheduler.Loop(ctx, clock, interval, h.Frame)
}

// pollEvents returns when the screen is finalized or quit is pressed.
func (h *Host) pollEvents(quit context.CancelFunc) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			h.screen.Sync()
			continue
		}

		action := ActionForEvent(ev)
		switch action {
		case ActionNone:
		case ActionQuit:
			log.Info().Msg("quit requested")
			quit()
			return
		default:
			h.sched.Post(func() { h.Handle(action) })
		}
	}
}
