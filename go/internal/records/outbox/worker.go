package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Config struct {
	PollInterval time.Duration
	BatchSize    int32
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
}

// Store is what the worker needs from the outbox table.
type Store interface {
	WithUnsent(ctx context.Context, limit int32, fn func(events []Event) []uuid.UUID) error
}

// Worker relays unsent outbox events to a publisher.
type Worker struct {
	store     Store
	publisher EventPublisher
	config    Config
	clock     clockwork.Clock

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(store Store, publisher EventPublisher, cfg Config, clock clockwork.Clock) *Worker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Worker{
		store:     store,
		publisher: publisher,
		config:    cfg,
		clock:     clock,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("outbox worker already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})

	w.wg.Add(1)
	go w.run(ctx, w.stopChan)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int32("batch_size", w.config.BatchSize).
		Msg("outbox worker started")
	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return errors.New("outbox worker not running")
	}
	w.running = false
	close(w.stopChan)
	w.mu.Unlock()

	w.wg.Wait()
	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context, stop <-chan struct{}) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	w.processOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.Chan():
			w.processOutbox(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	var total, successful int
	err := w.store.WithUnsent(ctx, w.config.BatchSize, func(events []Event) []uuid.UUID {
		total = len(events)
		var sent []uuid.UUID
		for _, ev := range events {
			if err := w.publishWithRetry(ctx, ev); err != nil {
				log.Error().
					Err(err).
					Str("event_id", ev.ID.String()).
					Str("event_type", ev.EventType).
					Msg("failed to publish outbox event")
				continue
			}
			sent = append(sent, ev.ID)
		}
		successful = len(sent)
		return sent
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to process outbox")
		return
	}
	if total > 0 {
		log.Info().Int("total", total).Int("successful", successful).Msg("processed outbox events")
	}
}

func (w *Worker) publishWithRetry(ctx context.Context, ev Event) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 && w.config.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.clock.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := w.publisher.Publish(ctx, ev.TrailName, ev.Payload); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("event_id", ev.ID.String()).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}
