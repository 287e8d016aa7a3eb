package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type memoryStore struct {
	mu     sync.Mutex
	events []Event
	sent   map[uuid.UUID]bool
}

func newMemoryStore(events ...Event) *memoryStore {
	return &memoryStore{events: events, sent: make(map[uuid.UUID]bool)}
}

func (s *memoryStore) WithUnsent(ctx context.Context, limit int32, fn func(events []Event) []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unsent []Event
	for _, ev := range s.events {
		if !s.sent[ev.ID] && int32(len(unsent)) < limit {
			unsent = append(unsent, ev)
		}
	}
	if len(unsent) == 0 {
		return nil
	}
	for _, id := range fn(unsent) {
		s.sent[id] = true
	}
	return nil
}

func (s *memoryStore) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakePublisher struct {
	mu       sync.Mutex
	calls    int
	failFor  map[string]bool
	received []string
}

func (p *fakePublisher) Publish(ctx context.Context, trailName string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failFor[trailName] {
		return errors.New("publish failed")
	}
	p.received = append(p.received, trailName)
	return nil
}

func event(trail string) Event {
	return Event{ID: uuid.New(), TrailName: trail, EventType: EventTypeRecordBroken, Payload: []byte(`{}`)}
}

func TestProcessOutboxMarksPublished(t *testing.T) {
	store := newMemoryStore(event("Ridge"), event("Bike Park"))
	pub := &fakePublisher{}
	w := NewWorker(store, pub, Config{BatchSize: 10}, clockwork.NewFakeClock())

	w.processOutbox(context.Background())

	if store.sentCount() != 2 {
		t.Fatalf("sent = %d, want 2", store.sentCount())
	}
	if len(pub.received) != 2 || pub.received[0] != "Ridge" {
		t.Fatalf("received = %v", pub.received)
	}

	w.processOutbox(context.Background())
	if pub.calls != 2 {
		t.Fatalf("sent events must not be published again, calls = %d", pub.calls)
	}
}

func TestProcessOutboxRetriesThenLeavesUnsent(t *testing.T) {
	store := newMemoryStore(event("Ridge"), event("Broken"))
	pub := &fakePublisher{failFor: map[string]bool{"Broken": true}}
	w := NewWorker(store, pub, Config{BatchSize: 10, MaxRetries: 2}, clockwork.NewFakeClock())

	w.processOutbox(context.Background())

	if store.sentCount() != 1 {
		t.Fatalf("sent = %d, want 1", store.sentCount())
	}
	// one call for Ridge, three attempts for Broken
	if pub.calls != 4 {
		t.Fatalf("calls = %d, want 4", pub.calls)
	}
}

func TestProcessOutboxRespectsBatchSize(t *testing.T) {
	store := newMemoryStore(event("a"), event("b"), event("c"))
	pub := &fakePublisher{}
	w := NewWorker(store, pub, Config{BatchSize: 2}, clockwork.NewFakeClock())

	w.processOutbox(context.Background())
	if store.sentCount() != 2 {
		t.Fatalf("sent = %d, want 2", store.sentCount())
	}
	w.processOutbox(context.Background())
	if store.sentCount() != 3 {
		t.Fatalf("sent = %d, want 3", store.sentCount())
	}
}

func TestWorkerStartStop(t *testing.T) {
	store := newMemoryStore(event("Ridge"))
	w := NewWorker(store, &fakePublisher{}, Config{PollInterval: time.Second, BatchSize: 10}, clockwork.NewFakeClock())

	if err := w.Stop(); err == nil {
		t.Fatal("Stop before Start should fail")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.sentCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.sentCount() != 1 {
		t.Fatal("worker should process the outbox on start")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
