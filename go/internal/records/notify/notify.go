package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// SubjectPrefix is the root of every record notification subject.
const SubjectPrefix = "records.updated"

// Config holds NATS connection settings.
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Subject returns the subject for a trail. Characters that NATS treats as
// token separators or wildcards are replaced so every trail is one token.
func Subject(trailName string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(trailName) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	token := b.String()
	if token == "" {
		token = "_"
	}
	return fmt.Sprintf("%s.%s", SubjectPrefix, token)
}

func decodeEvent(data []byte) (models.RecordEvent, error) {
	var ev models.RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return models.RecordEvent{}, fmt.Errorf("unmarshal record event: %w", err)
	}
	return ev, nil
}

func connect(cfg Config, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}
