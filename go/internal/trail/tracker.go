package trail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/rs/zerolog/log"
)

// CheckpointKind is the type of gate a player rode through.
type CheckpointKind string

const (
	CheckpointStart        CheckpointKind = "Start"
	CheckpointIntermediate CheckpointKind = "Intermediate"
	CheckpointFinish       CheckpointKind = "Finish"
)

// ParseCheckpointKind maps a wire name onto a CheckpointKind.
func ParseCheckpointKind(s string) (CheckpointKind, error) {
	switch CheckpointKind(s) {
	case CheckpointStart, CheckpointIntermediate, CheckpointFinish:
		return CheckpointKind(s), nil
	default:
		return "", fmt.Errorf("unknown checkpoint kind %q", s)
	}
}

var (
	// ErrNoActiveRun is returned for intermediate or finish gates without a start.
	ErrNoActiveRun = errors.New("no active run")
	// ErrCheckpointCount is returned when a finished run has the wrong number of splits.
	ErrCheckpointCount = errors.New("checkpoint count mismatch")
)

// Timer is what the tracker drives on each gate.
type Timer interface {
	RestartTimer()
	StopTimer()
	EnterCheckpoint() error
	Elapsed() float64
}

// RunSink receives completed runs.
type RunSink interface {
	SubmitRun(ctx context.Context, run models.Run) error
}

// Tracker owns the checkpoint index and trail name for one player and turns
// gate events into widget calls. Not safe for concurrent use; call it from
// the scheduler goroutine.
type Tracker struct {
	trailName string
	playerID  string
	bike      string
	timer     Timer
	sink      RunSink
	ctx       context.Context

	active     bool
	current    int
	total      int
	splits     []float64
	boundaries map[string]struct{}

	submitTimeout time.Duration
}

// NewTracker creates a tracker for trailName. sink may be nil.
func NewTracker(trailName, playerID string, sink RunSink) *Tracker {
	return &Tracker{
		trailName:     trailName,
		playerID:      playerID,
		sink:          sink,
		ctx:           context.Background(),
		boundaries:    make(map[string]struct{}),
		submitTimeout: 10 * time.Second,
	}
}

// Bind attaches the timer widget. The widget reads CurrentCheckpoint back from
// the tracker, so the two are built separately and joined here.
func (t *Tracker) Bind(timer Timer) {
	t.timer = timer
}

// WithContext sets the parent context for run submissions.
func (t *Tracker) WithContext(ctx context.Context) *Tracker {
	t.ctx = ctx
	return t
}

func (t *Tracker) CurrentCheckpoint() int { return t.current }
func (t *Tracker) TrailName() string      { return t.trailName }
func (t *Tracker) Active() bool           { return t.active }
func (t *Tracker) Bike() string           { return t.bike }

// Splits returns a copy of the splits recorded in the current run.
func (t *Tracker) Splits() []float64 {
	return append([]float64(nil), t.splits...)
}

// EnterCheckpoint handles a gate. totalCheckpoints counts every gate on the
// trail including start and finish; zero means unknown.
func (t *Tracker) EnterCheckpoint(kind CheckpointKind, totalCheckpoints int) error {
	if t.timer == nil {
		return errors.New("tracker has no timer bound")
	}
	if totalCheckpoints > 0 {
		t.total = totalCheckpoints
	}

	switch kind {
	case CheckpointStart:
		t.active = true
		t.current = 0
		t.splits = t.splits[:0]
		t.timer.RestartTimer()
		log.Info().Str("trail", t.trailName).Int("total_checkpoints", t.total).Msg("run started")
		return t.timer.EnterCheckpoint()

	case CheckpointIntermediate:
		if !t.active {
			return ErrNoActiveRun
		}
		t.current++
		t.splits = append(t.splits, t.timer.Elapsed())
		return t.timer.EnterCheckpoint()

	case CheckpointFinish:
		if !t.active {
			return ErrNoActiveRun
		}
		t.current++
		t.splits = append(t.splits, t.timer.Elapsed())
		err := t.timer.EnterCheckpoint()
		t.timer.StopTimer()
		t.active = false

		if finishErr := t.finish(); finishErr != nil {
			return errors.Join(err, finishErr)
		}
		return err

	default:
		return fmt.Errorf("unknown checkpoint kind %q", kind)
	}
}

func (t *Tracker) finish() error {
	if t.total > 0 && len(t.splits) != t.total-1 {
		log.Warn().
			Str("trail", t.trailName).
			Int("splits", len(t.splits)).
			Int("total_checkpoints", t.total).
			Msg("run finished with missed checkpoints, not submitting")
		return fmt.Errorf("%w: %d splits for %d checkpoints", ErrCheckpointCount, len(t.splits), t.total)
	}

	run := models.Run{
		ID:         uuid.New(),
		TrailName:  t.trailName,
		PlayerID:   t.playerID,
		Bike:       t.bike,
		SplitTimes: t.Splits(),
		FinalTime:  t.splits[len(t.splits)-1],
		CreatedAt:  time.Now().UTC(),
	}
	log.Info().
		Str("trail", run.TrailName).
		Str("run_id", run.ID.String()).
		Float64("final_time", run.FinalTime).
		Msg("run finished")

	if t.sink == nil {
		return nil
	}
	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, t.submitTimeout)
		defer cancel()
		if err := t.sink.SubmitRun(ctx, run); err != nil {
			log.Error().Err(err).Str("run_id", run.ID.String()).Msg("failed to submit run")
		}
	}(t.ctx)
	return nil
}

// Invalidate abandons the current run: the timer stops and nothing is submitted.
func (t *Tracker) Invalidate(reason string) {
	if !t.active {
		return
	}
	t.active = false
	t.splits = t.splits[:0]
	if t.timer != nil {
		t.timer.StopTimer()
	}
	log.Info().Str("trail", t.trailName).Str("reason", reason).Msg("run invalidated")
}

// Respawn invalidates the run; a respawn means the rider left the line.
func (t *Tracker) Respawn() {
	t.Invalidate("respawn detected")
}

// BikeSwitch records the bike the rider is on and invalidates any run in
// progress. The game reports a switch even when the same bike is picked.
func (t *Tracker) BikeSwitch(bike string) {
	log.Debug().Str("from", t.bike).Str("to", bike).Msg("bike switched")
	t.bike = bike
	t.Invalidate("bike switch")
}

// BoundaryEnter records that the rider is inside a trail boundary volume.
func (t *Tracker) BoundaryEnter(id string) {
	t.boundaries[id] = struct{}{}
}

// BoundaryExit removes a boundary; leaving the last one invalidates the run.
func (t *Tracker) BoundaryExit(id string) {
	if _, ok := t.boundaries[id]; !ok {
		return
	}
	delete(t.boundaries, id)
	if len(t.boundaries) == 0 {
		t.Invalidate("left trail boundary")
	}
}
