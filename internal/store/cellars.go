package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/klemenv/vinoteka/internal/model"
	"github.com/klemenv/vinoteka/internal/valuation"
)

// MintCellar creates a cellar record and registers it in the ledger
// under owner. Cellar IDs are allocated from their own counter,
// starting above the bottle ID space.
func MintCellar(ctx context.Context, db *sql.DB, name, owner, location string, reputation int64) (*model.Cellar, error) {
	if name == "" || owner == "" {
		return nil, fmt.Errorf("name and owner required: %w", ErrValidation)
	}
	if reputation < 0 {
		return nil, fmt.Errorf("reputation must be non-negative: %w", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(ctx, tx, counterCellar)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cellars (id, name, owner_address, location, reputation)
		 VALUES (?, ?, ?, ?, ?)`,
		id, name, owner, location, reputation,
	); err != nil {
		return nil, fmt.Errorf("creating cellar: %w", err)
	}

	if err := ledgerMint(ctx, tx, id, owner); err != nil {
		return nil, err
	}
	if err := appendEvent(ctx, tx, model.EventContainerMinted, map[string]any{
		"id": id, "owner": owner,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing mint: %w", err)
	}

	return GetCellar(ctx, db, id)
}

// GetCellar returns a cellar with its bottle-ID list in insertion
// order, or nil if no record exists.
func GetCellar(ctx context.Context, db *sql.DB, id int64) (*model.Cellar, error) {
	c := &model.Cellar{}
	var location sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, owner_address, location, reputation, created_at
		 FROM cellars WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.OwnerAddress, &location, &c.Reputation, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cellar: %w", err)
	}
	c.Location = location.String

	rows, err := db.QueryContext(ctx,
		`SELECT bottle_id FROM cellar_bottles WHERE cellar_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting cellar contents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bottleID int64
		if err := rows.Scan(&bottleID); err != nil {
			return nil, fmt.Errorf("scanning cellar contents: %w", err)
		}
		c.BottleIDs = append(c.BottleIDs, bottleID)
	}
	return c, rows.Err()
}

// ListCellars returns all cellar records ordered by ID, without their
// contents.
func ListCellars(ctx context.Context, db *sql.DB) ([]model.Cellar, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, owner_address, location, reputation, created_at
		 FROM cellars ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cellars: %w", err)
	}
	defer rows.Close()

	var cellars []model.Cellar
	for rows.Next() {
		var c model.Cellar
		var location sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerAddress, &location, &c.Reputation, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning cellar: %w", err)
		}
		c.Location = location.String
		cellars = append(cellars, c)
	}
	return cellars, rows.Err()
}

// AddBottleToCellar appends a bottle ID to a cellar's list. The caller
// must currently own both the cellar and the bottle per the ledger.
//
// The list is a historical record of insertions: duplicates are
// accepted, and later transfers or burns of the bottle never edit it.
func AddBottleToCellar(ctx context.Context, db *sql.DB, cellarID, bottleID int64, caller string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireBottle(ctx, tx, bottleID); err != nil {
		return err
	}

	cellarOwner, err := ledgerOwner(ctx, tx, cellarID)
	if err != nil {
		return err
	}
	bottleOwner, err := ledgerOwner(ctx, tx, bottleID)
	if err != nil {
		return err
	}
	if cellarOwner != caller || bottleOwner != caller {
		return fmt.Errorf("%s must own both cellar %d and bottle %d: %w",
			caller, cellarID, bottleID, ErrUnauthorized)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cellar_bottles (cellar_id, position, bottle_id)
		 VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM cellar_bottles WHERE cellar_id = ?), ?)`,
		cellarID, cellarID, bottleID,
	); err != nil {
		return fmt.Errorf("adding bottle to cellar: %w", err)
	}

	if err := appendEvent(ctx, tx, model.EventItemAddedToContainer, map[string]any{
		"cellar_id": cellarID, "bottle_id": bottleID,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing containment: %w", err)
	}
	return nil
}

// ListCellarBottles projects a cellar's list into full bottle records,
// preserving list order. Entries whose bottle record was burned are
// skipped.
func ListCellarBottles(ctx context.Context, db *sql.DB, cellarID int64) ([]model.Bottle, error) {
	c, err := GetCellar(ctx, db, cellarID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cellar %d: %w", cellarID, ErrNotFound)
	}

	var bottles []model.Bottle
	for _, id := range c.BottleIDs {
		b, err := GetBottle(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		bottles = append(bottles, *b)
	}
	return bottles, nil
}

// CellarValue sums the valuation of every bottle currently in the
// cellar's list at the given year. Stale entries whose record was
// burned value as zero rather than erroring, since burn leaves cellar
// lists untouched by design.
func CellarValue(ctx context.Context, db *sql.DB, cellarID int64, year int) (int64, error) {
	c, err := GetCellar(ctx, db, cellarID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("cellar %d: %w", cellarID, ErrNotFound)
	}

	var total int64
	for _, id := range c.BottleIDs {
		b, err := GetBottle(ctx, db, id)
		if err != nil {
			return 0, err
		}
		if b == nil {
			continue
		}
		total += valuation.Value(b, year)
	}
	return total, nil
}

// TransferCellar moves a cellar between owners. The informational
// owner_address field and the authoritative ledger entry are updated
// in the same transaction so they cannot diverge.
func TransferCellar(ctx context.Context, db *sql.DB, id int64, from, to string) error {
	if to == "" {
		return fmt.Errorf("recipient required: %w", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireCellar(ctx, tx, id); err != nil {
		return err
	}
	if err := ledgerTransfer(ctx, tx, id, from, to); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE cellars SET owner_address = ? WHERE id = ?`, to, id,
	); err != nil {
		return fmt.Errorf("updating cellar owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transfer: %w", err)
	}
	return nil
}

// BurnCellar destroys a cellar and cascades to every bottle still in
// its list: each listed bottle record is deleted and its ID retired,
// without re-checking per-bottle ownership (the cellar vouches for the
// caller), then the cellar itself is deleted and retired.
func BurnCellar(ctx context.Context, db *sql.DB, id int64, caller string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireCellar(ctx, tx, id); err != nil {
		return err
	}
	owner, err := ledgerOwner(ctx, tx, id)
	if err != nil {
		return err
	}
	if owner != caller {
		return fmt.Errorf("cellar %d is not owned by %s: %w", id, caller, ErrUnauthorized)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT bottle_id FROM cellar_bottles WHERE cellar_id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("reading cellar contents: %w", err)
	}
	var bottleIDs []int64
	for rows.Next() {
		var bottleID int64
		if err := rows.Scan(&bottleID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning cellar contents: %w", err)
		}
		bottleIDs = append(bottleIDs, bottleID)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("reading cellar contents: %w", err)
	}

	for _, bottleID := range bottleIDs {
		// Stale entries may point at bottles burned earlier; skip them.
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM bottles WHERE id = ?`, bottleID,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking bottle %d: %w", bottleID, err)
		}
		if count == 0 {
			continue
		}
		if err := burnBottleInTx(ctx, tx, bottleID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cellar_bottles WHERE cellar_id = ?`, id,
	); err != nil {
		return fmt.Errorf("clearing cellar contents: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cellars WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("deleting cellar: %w", err)
	}
	if err := ledgerBurn(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing burn: %w", err)
	}
	return nil
}

// requireCellar fails with ErrNotFound if no cellar record exists.
func requireCellar(ctx context.Context, tx *sql.Tx, id int64) error {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cellars WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking cellar %d: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("cellar %d: %w", id, ErrNotFound)
	}
	return nil
}
