package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/klemenv/vinoteka/internal/model"
)

const bottleColumns = `id, domain, vintage, format, label_condition, cork_condition,
	fill_level, photo_uri, photo_mime, max_value, optimal_age, minted_year, created_at`

// MintBottle creates a bottle record, registers it in the ledger under
// owner and seeds the swap index, all in one transaction. Creation-time
// invariants (non-negative max value, positive optimal age, closed
// condition grades) are rejected here.
func MintBottle(ctx context.Context, db *sql.DB, b *model.Bottle, owner string) (*model.Bottle, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner required: %w", ErrValidation)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(ctx, tx, counterBottle)
	if err != nil {
		return nil, err
	}

	mintedYear := time.Now().Year()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bottles (id, domain, vintage, format, label_condition, cork_condition,
		 fill_level, photo_uri, max_value, optimal_age, minted_year)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, b.Domain, b.Vintage, b.Format, b.LabelCondition, b.CorkCondition,
		b.FillLevel, b.PhotoURI, b.MaxValue, b.OptimalAge, mintedYear,
	); err != nil {
		return nil, fmt.Errorf("creating bottle: %w", err)
	}

	if err := ledgerMint(ctx, tx, id, owner); err != nil {
		return nil, err
	}
	if err := setHolding(ctx, tx, id, owner); err != nil {
		return nil, err
	}
	if err := appendEvent(ctx, tx, model.EventItemMinted, map[string]any{
		"id": id, "owner": owner,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing mint: %w", err)
	}

	return GetBottle(ctx, db, id)
}

// GetBottle returns a bottle by ID, or nil if no record exists.
func GetBottle(ctx context.Context, db *sql.DB, id int64) (*model.Bottle, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bottleColumns+` FROM bottles WHERE id = ?`, id,
	)
	b, err := scanBottle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bottle: %w", err)
	}
	return b, nil
}

// ListBottles returns all bottle records ordered by ID.
func ListBottles(ctx context.Context, db *sql.DB) ([]model.Bottle, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bottleColumns+` FROM bottles ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bottles: %w", err)
	}
	defer rows.Close()

	var bottles []model.Bottle
	for rows.Next() {
		b, err := scanBottle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning bottle: %w", err)
		}
		bottles = append(bottles, *b)
	}
	return bottles, rows.Err()
}

// TransferBottle moves a bottle between owners in the ledger. The from
// party must be the current ledger owner. Containment lists and the
// swap index are deliberately left untouched.
func TransferBottle(ctx context.Context, db *sql.DB, id int64, from, to string) error {
	if to == "" {
		return fmt.Errorf("recipient required: %w", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireBottle(ctx, tx, id); err != nil {
		return err
	}
	if err := ledgerTransfer(ctx, tx, id, from, to); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transfer: %w", err)
	}
	return nil
}

// BurnBottle destroys a bottle record and permanently retires its ID.
// The caller must be the current ledger owner. References to the
// bottle left in cellar lists stay in place; aggregation values them
// as zero.
func BurnBottle(ctx context.Context, db *sql.DB, id int64, caller string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireBottle(ctx, tx, id); err != nil {
		return err
	}
	owner, err := ledgerOwner(ctx, tx, id)
	if err != nil {
		return err
	}
	if owner != caller {
		return fmt.Errorf("bottle %d is not owned by %s: %w", id, caller, ErrUnauthorized)
	}

	if err := burnBottleInTx(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing burn: %w", err)
	}
	return nil
}

// burnBottleInTx deletes the bottle record, retires its ledger entry
// and drops its swap-index row. Shared by single burns and the cellar
// cascade.
func burnBottleInTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bottles WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("deleting bottle %d: %w", id, err)
	}
	if err := ledgerBurn(ctx, tx, id); err != nil {
		return err
	}
	return dropHolding(ctx, tx, id)
}

// SetBottlePhoto stores the processed label photo for a bottle.
func SetBottlePhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bottles SET photo = ?, photo_mime = ? WHERE id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting bottle photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting bottle photo: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bottle %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetBottlePhoto returns a bottle's label photo data and MIME type.
func GetBottlePhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM bottles WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("bottle %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting bottle photo: %w", err)
	}
	return photo, mime.String, nil
}

// requireBottle fails with ErrNotFound if no bottle record exists.
func requireBottle(ctx context.Context, tx *sql.Tx, id int64) error {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bottles WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking bottle %d: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("bottle %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanBottle(scan func(...any) error) (*model.Bottle, error) {
	b := &model.Bottle{}
	var format, fillLevel, photoURI, photoMime sql.NullString
	err := scan(&b.ID, &b.Domain, &b.Vintage, &format, &b.LabelCondition,
		&b.CorkCondition, &fillLevel, &photoURI, &photoMime,
		&b.MaxValue, &b.OptimalAge, &b.MintedYear, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Format = format.String
	b.FillLevel = fillLevel.String
	b.PhotoURI = photoURI.String
	b.PhotoMime = photoMime.String
	return b, nil
}
