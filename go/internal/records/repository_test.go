package records

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/mcdev12/splittimer/go/internal/records/outbox"
)

// testDSNEnv names a Postgres DSN for repository tests. They are skipped when
// it is unset.
const testDSNEnv = "SPLITTIMER_TEST_DSN"

func newTestRepository(t *testing.T) (*Repository, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo, pool
}

// uniqueTrail keeps runs from separate test invocations apart.
func uniqueTrail(t *testing.T) string {
	t.Helper()
	trail := "test-" + uuid.NewString()
	t.Cleanup(func() {
		dsn := os.Getenv(testDSNEnv)
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			return
		}
		defer pool.Close()
		pool.Exec(context.Background(), `DELETE FROM runs WHERE trail_name = $1`, trail)
		pool.Exec(context.Background(), `DELETE FROM record_outbox WHERE trail_name = $1`, trail)
	})
	return trail
}

func testRun(trail, player string, created time.Time, splits ...float64) models.Run {
	run := models.Run{
		ID:         uuid.New(),
		TrailName:  trail,
		PlayerID:   player,
		Bike:       "enduro",
		SplitTimes: splits,
		CreatedAt:  created,
	}
	run.FinalTime = run.Finish()
	return run
}

func TestRepositoryInsertRunDetectsRecords(t *testing.T) {
	repo, _ := newTestRepository(t)
	trail := uniqueTrail(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		run    models.Run
		record bool
	}{
		{"first run", testRun(trail, "a", base, 10, 20, 30), true},
		{"slower run", testRun(trail, "b", base.Add(time.Minute), 9, 21, 31), false},
		{"equal run", testRun(trail, "c", base.Add(2*time.Minute), 10, 20, 30), false},
		{"faster run", testRun(trail, "d", base.Add(3*time.Minute), 11, 19, 28.5), true},
	}
	for _, tt := range tests {
		isRecord, err := repo.InsertRun(ctx, tt.run)
		if err != nil {
			t.Fatalf("%s: InsertRun: %v", tt.name, err)
		}
		if isRecord != tt.record {
			t.Errorf("%s: record = %v, want %v", tt.name, isRecord, tt.record)
		}
	}

	fastest, err := repo.FastestRun(ctx, trail)
	if err != nil {
		t.Fatalf("FastestRun: %v", err)
	}
	if fastest.PlayerID != "d" || fastest.FinalTime != 28.5 || fastest.Bike != "enduro" {
		t.Fatalf("unexpected fastest run: %+v", fastest)
	}
	if len(fastest.SplitTimes) != 3 || fastest.SplitTimes[1] != 19 {
		t.Fatalf("splits = %v", fastest.SplitTimes)
	}
}

func TestRepositoryFastestRunUnknownTrail(t *testing.T) {
	repo, _ := newTestRepository(t)

	if _, err := repo.FastestRun(context.Background(), uniqueTrail(t)); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestRepositoryLeaderboardOrder(t *testing.T) {
	repo, _ := newTestRepository(t)
	trail := uniqueTrail(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	runs := []models.Run{
		testRun(trail, "late-tie", base.Add(2*time.Minute), 10, 30),
		testRun(trail, "slowest", base, 12, 40),
		testRun(trail, "early-tie", base.Add(time.Minute), 11, 30),
		testRun(trail, "fastest", base.Add(3*time.Minute), 9, 25),
	}
	for _, run := range runs {
		if _, err := repo.InsertRun(ctx, run); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}

	board, err := repo.Leaderboard(ctx, trail, 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []string{"fastest", "early-tie", "late-tie"}
	if len(board) != len(want) {
		t.Fatalf("got %d runs, want %d", len(board), len(want))
	}
	for i, player := range want {
		if board[i].PlayerID != player {
			t.Errorf("place %d = %s, want %s", i+1, board[i].PlayerID, player)
		}
	}

	empty, err := repo.Leaderboard(ctx, uniqueTrail(t), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no runs, got %d", len(empty))
	}
}

func TestRepositoryQueuesOutboxOnlyForRecords(t *testing.T) {
	repo, pool := newTestRepository(t)
	trail := uniqueTrail(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	record := testRun(trail, "a", base, 10, 30)
	if _, err := repo.InsertRun(ctx, record); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if _, err := repo.InsertRun(ctx, testRun(trail, "b", base.Add(time.Minute), 12, 35)); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	var ours []outbox.Event
	err := outbox.NewRepository(pool).WithUnsent(ctx, 1000, func(events []outbox.Event) []uuid.UUID {
		var sent []uuid.UUID
		for _, ev := range events {
			if ev.TrailName == trail {
				ours = append(ours, ev)
				sent = append(sent, ev.ID)
			}
		}
		return sent
	})
	if err != nil {
		t.Fatalf("WithUnsent: %v", err)
	}

	if len(ours) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(ours))
	}
	if ours[0].EventType != outbox.EventTypeRecordBroken {
		t.Fatalf("event type = %q", ours[0].EventType)
	}
	var ev models.RecordEvent
	if err := json.Unmarshal(ours[0].Payload, &ev); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if ev.RunID != record.ID || ev.FinalTime != 30 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
