package notify

import (
	"fmt"

	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Subscriber listens for record events on a single trail.
type Subscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// Subscribe calls onRecord for every record event on trailName. onRecord runs
// on a NATS goroutine; hand work to the scheduler with Post.
func Subscribe(cfg Config, trailName string, onRecord func(models.RecordEvent)) (*Subscriber, error) {
	nc, err := connect(cfg, "splittimer-overlay")
	if err != nil {
		return nil, err
	}

	subject := Subject(trailName)
	sub, err := nc.Subscribe(subject, messageHandler(onRecord))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	log.Info().Str("subject", subject).Msg("subscribed to record events")
	return &Subscriber{nc: nc, sub: sub}, nil
}

func messageHandler(onRecord func(models.RecordEvent)) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ev, err := decodeEvent(msg.Data)
		if err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("dropping malformed record event")
			return
		}
		log.Debug().
			Str("trail", ev.TrailName).
			Str("run_id", ev.RunID.String()).
			Msg("record event received")
		onRecord(ev)
	}
}

func (s *Subscriber) Close() error {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("failed to unsubscribe")
		}
	}
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}
