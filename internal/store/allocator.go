package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Counter kinds. Bottle IDs are allocated from 1, cellar IDs from
// 10001; the counters are independent and never reset, so the two ID
// spaces cannot collide and burned IDs are never recycled.
const (
	counterBottle = "bottle"
	counterCellar = "cellar"
)

// nextID allocates the next ID of the given kind inside tx: it returns
// the current counter value and advances it by one. The rows are
// seeded by the schema at creation time.
func nextID(ctx context.Context, tx *sql.Tx, kind string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT next FROM counters WHERE kind = ?`, kind,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reading %s counter: %w", kind, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE counters SET next = next + 1 WHERE kind = ?`, kind,
	); err != nil {
		return 0, fmt.Errorf("advancing %s counter: %w", kind, err)
	}

	return id, nil
}
