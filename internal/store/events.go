package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/klemenv/vinoteka/internal/model"
)

// appendEvent records a notification inside tx. The payload is
// serialized to JSON; events are append-only and never mutated.
func appendEvent(ctx context.Context, tx *sql.Tx, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", kind, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, kind, payload) VALUES (?, ?, ?)`,
		uuid.NewString(), kind, string(data),
	)
	if err != nil {
		return fmt.Errorf("recording %s event: %w", kind, err)
	}
	return nil
}

// ListEvents returns events newest first, optionally filtered by kind.
func ListEvents(ctx context.Context, db *sql.DB, kind string) ([]model.Event, error) {
	var rows *sql.Rows
	var err error

	if kind != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT id, kind, payload, created_at FROM events
			 WHERE kind = ? ORDER BY created_at DESC, id`, kind,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, kind, payload, created_at FROM events
			 ORDER BY created_at DESC, id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
