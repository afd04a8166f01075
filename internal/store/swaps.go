package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/klemenv/vinoteka/internal/auth"
	"github.com/klemenv/vinoteka/internal/model"
	"github.com/klemenv/vinoteka/internal/valuation"
)

// Swap tolerance band: each side's total must be within ±10% of the
// counterparty's total. Side B is the baseline.
const (
	toleranceLowPct  = 90
	toleranceHighPct = 110
)

// ExecuteSwap runs the atomic barter protocol in one transaction:
//
//  1. verify the counterparty's Ed25519 signature over the canonical
//     proposal message,
//  2. require every offered bottle to map to its offering party in the
//     holdings index,
//  3. require the two totals to be within the tolerance band at the
//     given year,
//  4. commit by reassigning the holdings entries both ways.
//
// Any failure aborts with no index mutation. The swap never touches
// the ledger or cellar lists; the holdings index is the protocol's own
// bookkeeping.
func ExecuteSwap(ctx context.Context, db *sql.DB, p *model.SwapProposal, signature []byte, year int) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Authorization: the counterparty pre-approved this exact proposal
	// off-band with their registered key.
	key, err := signerKey(ctx, tx, p.UserB)
	if err != nil {
		return err
	}
	if key == nil {
		return fmt.Errorf("no signer key registered for %s: %w", p.UserB, ErrUnauthorized)
	}
	if !auth.VerifySwapSignature(key, p.CanonicalMessage(), signature) {
		return fmt.Errorf("swap signature does not verify for %s: %w", p.UserB, ErrUnauthorized)
	}

	// Ownership per the holdings index, both sides.
	if err := requireHeldBy(ctx, tx, p.OfferedByA, p.UserA); err != nil {
		return err
	}
	if err := requireHeldBy(ctx, tx, p.OfferedByB, p.UserB); err != nil {
		return err
	}

	// Value tolerance, anchored on side B.
	totalA, err := offerValue(ctx, tx, p.OfferedByA, year)
	if err != nil {
		return err
	}
	totalB, err := offerValue(ctx, tx, p.OfferedByB, year)
	if err != nil {
		return err
	}
	if totalA*100 < totalB*toleranceLowPct || totalA*100 > totalB*toleranceHighPct {
		return fmt.Errorf("offer values %d and %d outside the ±10%% band: %w",
			totalA, totalB, ErrValidation)
	}

	// Commit: cross-assign the index entries.
	for _, id := range p.OfferedByA {
		if err := setHolding(ctx, tx, id, p.UserB); err != nil {
			return err
		}
	}
	for _, id := range p.OfferedByB {
		if err := setHolding(ctx, tx, id, p.UserA); err != nil {
			return err
		}
	}

	if err := appendEvent(ctx, tx, model.EventSwapExecuted, map[string]any{
		"user_a":       p.UserA,
		"user_b":       p.UserB,
		"offered_by_a": p.OfferedByA,
		"offered_by_b": p.OfferedByB,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing swap: %w", err)
	}
	return nil
}

// requireHeldBy fails unless every bottle ID maps to owner in the
// holdings index.
func requireHeldBy(ctx context.Context, tx *sql.Tx, ids []int64, owner string) error {
	for _, id := range ids {
		holder, err := holdingOwner(ctx, tx, id)
		if err != nil {
			return err
		}
		if holder != owner {
			return fmt.Errorf("bottle %d is not held by %s: %w", id, owner, ErrUnauthorized)
		}
	}
	return nil
}

// offerValue sums the valuation of the offered bottles at year.
func offerValue(ctx context.Context, tx *sql.Tx, ids []int64, year int) (int64, error) {
	var total int64
	for _, id := range ids {
		row := tx.QueryRowContext(ctx,
			`SELECT `+bottleColumns+` FROM bottles WHERE id = ?`, id,
		)
		b, err := scanBottle(row.Scan)
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("bottle %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("valuing bottle %d: %w", id, err)
		}
		total += valuation.Value(b, year)
	}
	return total, nil
}
