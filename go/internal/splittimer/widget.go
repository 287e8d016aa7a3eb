package splittimer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mcdev12/splittimer/go/clients/records_client"
	"github.com/mcdev12/splittimer/go/internal/scheduler"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRefreshInterval = 10 * time.Second
	DefaultLabelTimeout    = 5 * time.Second
	DefaultHideDelay       = 15 * time.Second
	DefaultFadeInterval    = 10 * time.Millisecond
	DefaultFadeStep        = 0.01

	yoursPrefix   = "Yours: "
	fastestPrefix = "Fastest: "

	// UnavailableSplit is shown when no fastest split exists for a checkpoint.
	UnavailableSplit = "--:--:---"
)

// ErrSplitUnavailable is returned by EnterCheckpoint when the cached fastest
// times have no entry for the checkpoint just crossed.
var ErrSplitUnavailable = errors.New("fastest split unavailable for checkpoint")

// TrailTracker supplies the checkpoint the player just crossed and the trail being ridden.
type TrailTracker interface {
	CurrentCheckpoint() int
	TrailName() string
}

// ModalState reports whether a modal UI currently covers the screen.
type ModalState interface {
	IsShowing() bool
}

// TimesFetcher fetches fastest split times without blocking the caller.
type TimesFetcher interface {
	FetchAsync(ctx context.Context, trailName string) <-chan records_client.FetchResult
}

// Renderer draws a widget snapshot. Called once per frame.
type Renderer interface {
	Render(v View)
}

// Scheduler is the subset of scheduler.Scheduler the widget needs.
type Scheduler interface {
	After(d time.Duration, fn func()) scheduler.TaskID
	Every(interval time.Duration, fn func()) scheduler.TaskID
	Cancel(id scheduler.TaskID) bool
	Post(fn func())
}

// Config holds the widget timings.
type Config struct {
	RefreshInterval time.Duration
	LabelTimeout    time.Duration
	HideDelay       time.Duration
	FadeInterval    time.Duration
	FadeStep        float64
}

// DefaultConfig returns the stock overlay timings.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: DefaultRefreshInterval,
		LabelTimeout:    DefaultLabelTimeout,
		HideDelay:       DefaultHideDelay,
		FadeInterval:    DefaultFadeInterval,
		FadeStep:        DefaultFadeStep,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	if c.LabelTimeout <= 0 {
		c.LabelTimeout = d.LabelTimeout
	}
	if c.HideDelay <= 0 {
		c.HideDelay = d.HideDelay
	}
	if c.FadeInterval <= 0 {
		c.FadeInterval = d.FadeInterval
	}
	if c.FadeStep <= 0 {
		c.FadeStep = d.FadeStep
	}
	return c
}

// Widget is the checkpoint split-timer overlay.
//
// Every method except ToggleVisibility must be called on the goroutine that
// drives the scheduler. Fetch results are handed back through Scheduler.Post.
type Widget struct {
	cfg      Config
	sched    Scheduler
	trail    TrailTracker
	modal    ModalState
	fetcher  TimesFetcher
	renderer Renderer

	ctx       context.Context
	cancel    context.CancelFunc
	refreshID scheduler.TaskID

	elapsed      float64
	running      bool
	fastestTimes []float64
	fetchSeq     uint64
	appliedSeq   uint64

	enabled      bool
	overlayAlpha float64
	flashAlpha   float64
	flashColor   Color

	primaryText       string
	primaryVisible    bool
	checkpointText    string
	checkpointVisible bool
	comparisonText    string
	comparisonVisible bool

	togglePresses atomic.Int32
}

// NewWidget wires the widget to its collaborators. renderer may be nil.
func NewWidget(cfg Config, sched Scheduler, trail TrailTracker, modal ModalState, fetcher TimesFetcher, renderer Renderer) *Widget {
	return &Widget{
		cfg:         cfg.withDefaults(),
		sched:       sched,
		trail:       trail,
		modal:       modal,
		fetcher:     fetcher,
		renderer:    renderer,
		enabled:     true,
		primaryText: FormatTime(0),
	}
}

// Start hides the overlay, fetches fastest times now and keeps refreshing
// them every RefreshInterval until Close.
func (w *Widget) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.overlayAlpha = 0
	w.GetFastestTimes()
	w.refreshID = w.sched.Every(w.cfg.RefreshInterval, w.GetFastestTimes)

	log.Info().
		Str("trail", w.trail.TrailName()).
		Dur("refresh_interval", w.cfg.RefreshInterval).
		Msg("split timer started")
}

// Close stops the periodic refresh and abandons in-flight fetches.
func (w *Widget) Close() {
	if w.refreshID != 0 {
		w.sched.Cancel(w.refreshID)
		w.refreshID = 0
	}
	if w.cancel != nil {
		w.cancel()
	}
}

// Tick advances the timer by one frame and renders.
func (w *Widget) Tick(dt time.Duration) {
	if w.running {
		w.elapsed += dt.Seconds()
	}
	w.primaryText = FormatTime(w.elapsed)

	for n := w.togglePresses.Swap(0); n > 0; n-- {
		w.enabled = !w.enabled
		if w.overlayAlpha == 0 {
			w.overlayAlpha = 1
		} else {
			w.overlayAlpha = 0
		}
	}

	// The modal hides the overlay but leaves the toggle alone, so nothing
	// brings the overlay back when the modal closes.
	if w.modal != nil && w.modal.IsShowing() {
		w.overlayAlpha = 0
	}

	w.render()
}

// ToggleVisibility records a press of the overlay hotkey; it is applied on
// the next Tick. Safe for concurrent use.
func (w *Widget) ToggleVisibility() {
	w.togglePresses.Add(1)
}

// EnterCheckpoint shows the split for the checkpoint the tracker reports and
// flashes the comparison against the cached fastest split.
func (w *Widget) EnterCheckpoint() error {
	index := w.trail.CurrentCheckpoint()

	w.checkpointVisible = true
	w.comparisonVisible = true
	w.checkpointText = yoursPrefix + w.primaryText

	var err error
	if index == 0 {
		w.comparisonText = fastestPrefix + FormatTime(0)
	} else if fastest, ok := w.fastestSplit(index); ok {
		w.comparisonText = fastestPrefix + FormatTime(fastest)
		verdict := Compare(fastest, w.elapsed)
		w.flash(verdict.Color())

		log.Debug().
			Int("checkpoint", index).
			Float64("elapsed", w.elapsed).
			Float64("fastest", fastest).
			Str("verdict", verdict.String()).
			Msg("checkpoint split")
	} else {
		w.comparisonText = fastestPrefix + UnavailableSplit
		err = fmt.Errorf("%w: checkpoint %d, %d cached splits", ErrSplitUnavailable, index, len(w.fastestTimes))
		log.Warn().
			Int("checkpoint", index).
			Int("cached_splits", len(w.fastestTimes)).
			Msg("no fastest split for checkpoint")
	}

	if w.enabled {
		w.overlayAlpha = 1
	}

	w.sched.After(w.cfg.LabelTimeout, func() { w.checkpointVisible = false })
	w.sched.After(w.cfg.LabelTimeout, func() { w.comparisonVisible = false })

	return err
}

func (w *Widget) fastestSplit(index int) (float64, bool) {
	i := index - 1
	if i < 0 || i >= len(w.fastestTimes) {
		return 0, false
	}
	return w.fastestTimes[i], true
}

// flash sets the flash fully visible and starts a fade that removes FadeStep
// every FadeInterval of scheduler time. The fade is step-based, so its length
// depends on frame granularity. Overlapping fades all decrement the same alpha.
func (w *Widget) flash(c Color) {
	w.flashColor = c
	w.flashAlpha = 1

	var step func()
	step = func() {
		if w.flashAlpha <= 0 {
			return
		}
		w.flashAlpha -= w.cfg.FadeStep
		if w.flashAlpha < 0 {
			w.flashAlpha = 0
		}
		if w.flashAlpha > 0 {
			w.sched.After(w.cfg.FadeInterval, step)
		}
	}
	w.sched.After(w.cfg.FadeInterval, step)
}

// RestartTimer zeroes the elapsed time and starts counting.
func (w *Widget) RestartTimer() {
	w.elapsed = 0
	w.primaryText = FormatTime(w.elapsed)
	w.primaryVisible = true
	w.checkpointVisible = true
	w.running = true
	w.render()
}

// StopTimer freezes the elapsed time and hides the overlay after HideDelay.
func (w *Widget) StopTimer() {
	w.running = false
	w.sched.After(w.cfg.HideDelay, func() { w.overlayAlpha = 0 })
}

// GetFastestTimes starts an asynchronous refresh of the fastest split cache.
// A successful fetch replaces the cache wholesale; a failed one leaves it as is.
// Fetches may complete out of order, so a result older than the last one
// applied is dropped.
func (w *Widget) GetFastestTimes() {
	if w.fetcher == nil {
		return
	}
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	w.fetchSeq++
	seq := w.fetchSeq
	trailName := w.trail.TrailName()
	results := w.fetcher.FetchAsync(ctx, trailName)

	go func() {
		res, ok := <-results
		if !ok {
			return
		}
		w.sched.Post(func() { w.applyFastestTimes(seq, res) })
	}()
}

func (w *Widget) applyFastestTimes(seq uint64, res records_client.FetchResult) {
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("trail", res.TrailName).Msg("failed to refresh fastest times")
		return
	}
	if seq < w.appliedSeq {
		log.Debug().
			Uint64("seq", seq).
			Uint64("applied_seq", w.appliedSeq).
			Msg("dropping stale fastest times")
		return
	}
	w.appliedSeq = seq
	w.fastestTimes = res.Times
	log.Debug().
		Str("trail", res.TrailName).
		Int("splits", len(res.Times)).
		Msg("fastest times refreshed")
}

// SetFastestTimes replaces the cached fastest splits.
func (w *Widget) SetFastestTimes(times []float64) {
	w.fastestTimes = append([]float64(nil), times...)
}

// FastestTimes returns a copy of the cached fastest splits.
func (w *Widget) FastestTimes() []float64 {
	return append([]float64(nil), w.fastestTimes...)
}

// Elapsed returns the elapsed seconds of the current run.
func (w *Widget) Elapsed() float64 {
	return w.elapsed
}

// Running reports whether the timer is counting.
func (w *Widget) Running() bool {
	return w.running
}

func (w *Widget) render() {
	if w.renderer != nil {
		w.renderer.Render(w.View())
	}
}
