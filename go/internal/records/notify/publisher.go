package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher announces new trail records on NATS.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(cfg Config) (*Publisher, error) {
	nc, err := connect(cfg, "records-publisher")
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc}, nil
}

// Publish sends an encoded record event on the trail's subject and waits for
// the server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, trailName string, payload []byte) error {
	subject := Subject(trailName)
	if err := p.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish record event: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush record event: %w", err)
	}

	log.Debug().Str("subject", subject).Int("bytes", len(payload)).Msg("published record event")
	return nil
}

func (p *Publisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}
