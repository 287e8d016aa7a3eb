package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/splittimer/go/internal/records"
	"github.com/mcdev12/splittimer/go/internal/records/notify"
	"github.com/mcdev12/splittimer/go/internal/records/outbox"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Records *records.Handler

	publisher *notify.Publisher
	relay     *outbox.Worker
}

func setupServices(ctx context.Context, pool *pgxpool.Pool, config *Config) (*Services, error) {
	// Database layer → Repository layer → App layer → Handler layer
	repo := records.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	services := &Services{
		Records: records.NewHandler(records.NewApp(repo)),
	}

	if config.NATS.URL == "" {
		log.Info().Msg("NATS_URL not set, record events stay queued in the outbox")
		return services, nil
	}

	publisher, err := notify.NewPublisher(notify.Config{
		URL:           config.NATS.URL,
		MaxReconnects: config.NATS.MaxReconnects,
		ReconnectWait: config.NATS.ReconnectWait,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create record publisher: %w", err)
	}
	services.publisher = publisher

	relayCfg := outbox.DefaultConfig()
	relayCfg.PollInterval = config.Outbox.PollInterval
	relayCfg.BatchSize = config.Outbox.BatchSize
	services.relay = outbox.NewWorker(outbox.NewRepository(pool), publisher, relayCfg, clockwork.NewRealClock())
	if err := services.relay.Start(ctx); err != nil {
		closeLogged("record publisher", publisher)
		return nil, fmt.Errorf("failed to start outbox worker: %w", err)
	}

	log.Info().Str("nats_url", config.NATS.URL).Msg("record notifications enabled")
	return services, nil
}

func (s *Services) Close() {
	if s.relay != nil {
		if err := s.relay.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop outbox worker")
		}
	}
	if s.publisher != nil {
		closeLogged("record publisher", s.publisher)
	}
}

// closeLogged closes c and logs any error.
func closeLogged(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Error().Err(err).Str("component", name).Msgf("failed to close %s", name)
	}
}
