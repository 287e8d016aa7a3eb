package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/splittimer/go/internal/sqlutil"
)

// Schema creates the outbox table. It is applied together with the runs schema.
const Schema = `
CREATE TABLE IF NOT EXISTS record_outbox (
    id          UUID PRIMARY KEY,
    trail_name  TEXT NOT NULL,
    event_type  TEXT NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS record_outbox_unsent_idx ON record_outbox (created_at) WHERE sent_at IS NULL;
`

// Insert writes an event inside the caller's transaction, so the event exists
// exactly when the change it describes commits.
func Insert(ctx context.Context, tx pgx.Tx, ev Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO record_outbox (id, trail_name, event_type, payload)
        VALUES ($1, $2, $3, $4)
    `, ev.ID, ev.TrailName, ev.EventType, ev.Payload); err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", ev.EventType, err)
	}
	return nil
}

// Repository reads and acknowledges outbox rows on Postgres.
type Repository struct {
	db sqlutil.TxBeginner
}

func NewRepository(db sqlutil.TxBeginner) *Repository {
	return &Repository{db: db}
}

// WithUnsent locks up to limit unsent events, hands them to fn and marks the
// IDs fn returns as sent, all in one transaction. Rows locked by another
// relay are skipped.
func (r *Repository) WithUnsent(ctx context.Context, limit int32, fn func(events []Event) []uuid.UUID) error {
	return sqlutil.Run(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
            SELECT id, trail_name, event_type, payload
            FROM record_outbox
            WHERE sent_at IS NULL
            ORDER BY created_at
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        `, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch unsent outbox events: %w", err)
		}
		events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
			var ev Event
			err := row.Scan(&ev.ID, &ev.TrailName, &ev.EventType, &ev.Payload)
			return ev, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan outbox events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		sent := fn(events)
		if len(sent) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE record_outbox SET sent_at = now() WHERE id = ANY($1)`,
			sent,
		); err != nil {
			return fmt.Errorf("failed to mark outbox events sent: %w", err)
		}
		return nil
	})
}
