package store

import (
	"context"
	"database/sql"
	"fmt"
)

// The ledger is the authoritative record of who owns which asset
// (bottle or cellar, one shared table since the ID spaces are
// disjoint). Retired rows keep their asset_id forever, so an ID can
// never be minted twice.

// ledgerMint records a newly minted asset inside tx. Fails if the ID
// was ever seen before.
func ledgerMint(ctx context.Context, tx *sql.Tx, assetID int64, owner string) error {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger WHERE asset_id = ?`, assetID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking ledger for asset %d: %w", assetID, err)
	}
	if count > 0 {
		return fmt.Errorf("asset %d already minted: %w", assetID, ErrInvariant)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger (asset_id, owner) VALUES (?, ?)`,
		assetID, owner,
	); err != nil {
		return fmt.Errorf("minting asset %d: %w", assetID, err)
	}
	return nil
}

// ledgerTransfer reassigns a live asset from one owner to another
// inside tx. The from party must be the current owner.
func ledgerTransfer(ctx context.Context, tx *sql.Tx, assetID int64, from, to string) error {
	owner, err := ledgerOwner(ctx, tx, assetID)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("asset %d is not owned by %s: %w", assetID, from, ErrUnauthorized)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ledger SET owner = ? WHERE asset_id = ? AND retired = 0`,
		to, assetID,
	); err != nil {
		return fmt.Errorf("transferring asset %d: %w", assetID, err)
	}
	return nil
}

// ledgerBurn permanently retires an asset inside tx. The row is kept
// with the retired flag set so the ID stays reserved.
func ledgerBurn(ctx context.Context, tx *sql.Tx, assetID int64) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE ledger SET retired = 1 WHERE asset_id = ? AND retired = 0`,
		assetID,
	)
	if err != nil {
		return fmt.Errorf("burning asset %d: %w", assetID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("burning asset %d: %w", assetID, err)
	}
	if n == 0 {
		return fmt.Errorf("asset %d has no live ledger entry: %w", assetID, ErrNotFound)
	}
	return nil
}

// ledgerOwner returns the current owner of a live asset inside tx.
func ledgerOwner(ctx context.Context, tx *sql.Tx, assetID int64) (string, error) {
	var owner string
	err := tx.QueryRowContext(ctx,
		`SELECT owner FROM ledger WHERE asset_id = ? AND retired = 0`, assetID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("asset %d: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("looking up owner of asset %d: %w", assetID, err)
	}
	return owner, nil
}

// OwnerOf returns the current owner of a live asset, or ErrNotFound if
// the asset does not exist or has been burned.
func OwnerOf(ctx context.Context, db *sql.DB, assetID int64) (string, error) {
	var owner string
	err := db.QueryRowContext(ctx,
		`SELECT owner FROM ledger WHERE asset_id = ? AND retired = 0`, assetID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("asset %d: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("looking up owner of asset %d: %w", assetID, err)
	}
	return owner, nil
}
