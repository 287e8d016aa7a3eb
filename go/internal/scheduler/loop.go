package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultFrameInterval is roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameFunc is called once per frame with the wall-clock time since the previous frame.
type FrameFunc func(dt time.Duration)

// Loop drives frame from a clockwork ticker until ctx is cancelled.
// In production pass clockwork.NewRealClock(); in tests a FakeClock.
func Loop(ctx context.Context, clock clockwork.Clock, interval time.Duration, frame FrameFunc) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	last := clock.Now()
	log.Debug().Dur("interval", interval).Msg("frame loop started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("frame loop stopped")
			return nil
		case now := <-ticker.Chan():
			dt := now.Sub(last)
			last = now
			if dt < 0 {
				dt = 0
			}
			frame(dt)
		}
	}
}
