package store

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"fmt"
)

// RegisterSigner stores (or replaces) the Ed25519 public key an owner
// address uses to authorize swaps.
func RegisterSigner(ctx context.Context, db *sql.DB, address string, publicKey []byte) error {
	if address == "" {
		return fmt.Errorf("address required: %w", ErrValidation)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("public key must be %d bytes: %w", ed25519.PublicKeySize, ErrValidation)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO signers (address, public_key) VALUES (?, ?)
		 ON CONFLICT (address) DO UPDATE SET public_key = excluded.public_key`,
		address, publicKey,
	)
	if err != nil {
		return fmt.Errorf("registering signer: %w", err)
	}
	return nil
}

// signerKey returns the registered public key for an address inside
// tx, or nil if none is registered.
func signerKey(ctx context.Context, tx *sql.Tx, address string) ([]byte, error) {
	var key []byte
	err := tx.QueryRowContext(ctx,
		`SELECT public_key FROM signers WHERE address = ?`, address,
	).Scan(&key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up signer %s: %w", address, err)
	}
	return key, nil
}
