package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/mcdev12/splittimer/go/internal/records/outbox"
	"github.com/mcdev12/splittimer/go/internal/sqlutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          UUID PRIMARY KEY,
    trail_name  TEXT NOT NULL,
    player_id   TEXT NOT NULL DEFAULT '',
    bike        TEXT NOT NULL DEFAULT '',
    split_times DOUBLE PRECISION[] NOT NULL,
    final_time  DOUBLE PRECISION NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
ALTER TABLE runs ADD COLUMN IF NOT EXISTS bike TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS runs_trail_final_time_idx ON runs (trail_name, final_time);
`

// DB defines what the repository needs from the database layer.
// *pgxpool.Pool satisfies it.
type DB interface {
	sqlutil.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const runColumns = `id, trail_name, player_id, bike, split_times, final_time, created_at`

// Repository implements run storage on Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a new runs repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the runs and outbox tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema+outbox.Schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// InsertRun stores a run and reports whether it beat every earlier run on the
// trail. Inserts on the same trail are serialized with an advisory lock so two
// simultaneous records cannot both claim the top spot. A record also queues a
// RecordBroken outbox event.
func (r *Repository) InsertRun(ctx context.Context, run models.Run) (bool, error) {
	var isRecord bool
	err := sqlutil.Run(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, run.TrailName); err != nil {
			return fmt.Errorf("lock trail: %w", err)
		}

		var best *float64
		if err := tx.QueryRow(ctx,
			`SELECT MIN(final_time) FROM runs WHERE trail_name = $1`,
			run.TrailName,
		).Scan(&best); err != nil {
			return fmt.Errorf("read best time: %w", err)
		}
		isRecord = best == nil || run.FinalTime < *best

		if _, err := tx.Exec(ctx, `
            INSERT INTO runs (id, trail_name, player_id, bike, split_times, final_time, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `,
			run.ID, run.TrailName, run.PlayerID, run.Bike, run.SplitTimes, run.FinalTime, run.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if !isRecord {
			return nil
		}
		payload, err := json.Marshal(models.NewRecordEvent(run))
		if err != nil {
			return fmt.Errorf("marshal record event: %w", err)
		}
		return outbox.Insert(ctx, tx, outbox.Event{
			TrailName: run.TrailName,
			EventType: outbox.EventTypeRecordBroken,
			Payload:   payload,
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert run: %w", err)
	}
	return isRecord, nil
}

// FastestRun returns the run with the lowest final time on a trail.
func (r *Repository) FastestRun(ctx context.Context, trailName string) (*models.Run, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+runColumns+`
        FROM runs
        WHERE trail_name = $1
        ORDER BY final_time ASC, created_at ASC
        LIMIT 1
    `, trailName)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fastest run: %w", err)
	}
	return &run, nil
}

// Leaderboard returns up to limit runs on a trail, fastest first. Ties on
// final time go to the earlier run.
func (r *Repository) Leaderboard(ctx context.Context, trailName string, limit int) ([]models.Run, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+runColumns+`
        FROM runs
        WHERE trail_name = $1
        ORDER BY final_time ASC, created_at ASC
        LIMIT $2
    `, trailName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Run, error) {
		return scanRun(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (models.Run, error) {
	var run models.Run
	err := row.Scan(&run.ID, &run.TrailName, &run.PlayerID, &run.Bike, &run.SplitTimes, &run.FinalTime, &run.CreatedAt)
	return run, err
}
