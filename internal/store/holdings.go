package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/klemenv/vinoteka/internal/model"
)

// The holdings table is the swap-bookkeeping owner index: a reverse
// mapping from owner address to bottle IDs. It is seeded at mint and
// rewritten by swaps and purchases, but plain ledger transfers do not
// touch it; the ledger stays authoritative for custody.

// ListHoldings returns the bottles the index maps to an owner, joined
// with basic bottle fields.
func ListHoldings(ctx context.Context, db *sql.DB, owner string) ([]model.Holding, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.bottle_id, h.owner, COALESCE(b.domain, ''), COALESCE(b.vintage, 0)
		 FROM holdings h
		 LEFT JOIN bottles b ON b.id = h.bottle_id
		 WHERE h.owner = ?
		 ORDER BY h.bottle_id`, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing holdings: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.BottleID, &h.Owner, &h.Domain, &h.Vintage); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// holdingOwner returns the index owner of a bottle inside tx, or an
// empty string if the bottle is not indexed.
func holdingOwner(ctx context.Context, tx *sql.Tx, bottleID int64) (string, error) {
	var owner string
	err := tx.QueryRowContext(ctx,
		`SELECT owner FROM holdings WHERE bottle_id = ?`, bottleID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up holding for bottle %d: %w", bottleID, err)
	}
	return owner, nil
}

// setHolding upserts the index entry for a bottle inside tx.
func setHolding(ctx context.Context, tx *sql.Tx, bottleID int64, owner string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO holdings (bottle_id, owner) VALUES (?, ?)
		 ON CONFLICT (bottle_id) DO UPDATE SET owner = excluded.owner`,
		bottleID, owner,
	)
	if err != nil {
		return fmt.Errorf("indexing bottle %d: %w", bottleID, err)
	}
	return nil
}

// dropHolding removes the index entry for a bottle inside tx. Used on
// burn, when the record the entry points to no longer exists.
func dropHolding(ctx context.Context, tx *sql.Tx, bottleID int64) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM holdings WHERE bottle_id = ?`, bottleID,
	)
	if err != nil {
		return fmt.Errorf("dropping holding for bottle %d: %w", bottleID, err)
	}
	return nil
}
