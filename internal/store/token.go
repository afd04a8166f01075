package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/klemenv/vinoteka/internal/model"
)

// RegistryAddress is the registry's own owner address. Bottles it
// holds are the ones offered for direct purchase.
const RegistryAddress = "registry"

// SaleConfig is the active payment token and price for direct
// purchases. Rows are versioned; the newest row wins. Configuration is
// admin-only and strictly separate from the purchase path, which only
// reads it.
type SaleConfig struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// SetSaleConfig appends a new sale configuration version.
func SetSaleConfig(ctx context.Context, db *sql.DB, token string, price int64) (*SaleConfig, error) {
	if token == "" {
		return nil, fmt.Errorf("token required: %w", ErrValidation)
	}
	if price < 0 {
		return nil, fmt.Errorf("price must be non-negative: %w", ErrValidation)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO sale_config (token, price) VALUES (?, ?)`,
		token, price,
	); err != nil {
		return nil, fmt.Errorf("setting sale config: %w", err)
	}
	return GetSaleConfig(ctx, db)
}

// GetSaleConfig returns the active sale configuration, or nil if none
// has been set.
func GetSaleConfig(ctx context.Context, db *sql.DB) (*SaleConfig, error) {
	cfg := &SaleConfig{}
	err := db.QueryRowContext(ctx,
		`SELECT id, token, price, created_at FROM sale_config
		 ORDER BY id DESC LIMIT 1`,
	).Scan(&cfg.ID, &cfg.Token, &cfg.Price, &cfg.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting sale config: %w", err)
	}
	return cfg, nil
}

// CreditToken adds tokens to an address's balance. Admin-gated at the
// API layer; this is the registry's stand-in for an external token
// bridge.
func CreditToken(ctx context.Context, db *sql.DB, token, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO token_balances (token, address, amount) VALUES (?, ?, ?)
		 ON CONFLICT (token, address) DO UPDATE SET amount = amount + ?`,
		token, address, amount, amount,
	)
	if err != nil {
		return fmt.Errorf("crediting %s: %w", address, err)
	}
	return nil
}

// BalanceOf returns an address's balance of a token.
func BalanceOf(ctx context.Context, db *sql.DB, token, address string) (int64, error) {
	var amount int64
	err := db.QueryRowContext(ctx,
		`SELECT amount FROM token_balances WHERE token = ? AND address = ?`,
		token, address,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading balance of %s: %w", address, err)
	}
	return amount, nil
}

// Approve sets (not adds) the amount a spender may pull from an
// owner's balance.
func Approve(ctx context.Context, db *sql.DB, token, owner, spender string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("allowance must be non-negative: %w", ErrValidation)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO token_allowances (token, owner, spender, amount) VALUES (?, ?, ?, ?)
		 ON CONFLICT (token, owner, spender) DO UPDATE SET amount = excluded.amount`,
		token, owner, spender, amount,
	)
	if err != nil {
		return fmt.Errorf("approving %s for %s: %w", spender, owner, err)
	}
	return nil
}

// Allowance returns how much a spender may still pull from an owner.
func Allowance(ctx context.Context, db *sql.DB, token, owner, spender string) (int64, error) {
	var amount int64
	err := db.QueryRowContext(ctx,
		`SELECT amount FROM token_allowances WHERE token = ? AND owner = ? AND spender = ?`,
		token, owner, spender,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading allowance: %w", err)
	}
	return amount, nil
}

// BuyBottle purchases a registry-held bottle with the active payment
// token: it pulls the configured price from the buyer (checking both
// balance and allowance), transfers the bottle from the registry to
// the buyer in the ledger, and updates the swap index. The token pull
// and the ownership transfer commit together or not at all.
func BuyBottle(ctx context.Context, db *sql.DB, bottleID int64, buyer string) error {
	if buyer == "" {
		return fmt.Errorf("buyer required: %w", ErrValidation)
	}

	cfg, err := GetSaleConfig(ctx, db)
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("no sale configuration set: %w", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireBottle(ctx, tx, bottleID); err != nil {
		return err
	}
	owner, err := ledgerOwner(ctx, tx, bottleID)
	if err != nil {
		return err
	}
	if owner != RegistryAddress {
		return fmt.Errorf("bottle %d is not offered for sale: %w", bottleID, ErrValidation)
	}

	// Token pull: balance and allowance must both cover the price.
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT amount FROM token_balances WHERE token = ? AND address = ?`,
		cfg.Token, buyer,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		balance = 0
	} else if err != nil {
		return fmt.Errorf("reading buyer balance: %w", err)
	}
	if balance < cfg.Price {
		return fmt.Errorf("insufficient balance %d for price %d: %w", balance, cfg.Price, ErrValidation)
	}

	var allowance int64
	err = tx.QueryRowContext(ctx,
		`SELECT amount FROM token_allowances WHERE token = ? AND owner = ? AND spender = ?`,
		cfg.Token, buyer, RegistryAddress,
	).Scan(&allowance)
	if err == sql.ErrNoRows {
		allowance = 0
	} else if err != nil {
		return fmt.Errorf("reading buyer allowance: %w", err)
	}
	if allowance < cfg.Price {
		return fmt.Errorf("insufficient allowance %d for price %d: %w", allowance, cfg.Price, ErrValidation)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE token_balances SET amount = amount - ? WHERE token = ? AND address = ?`,
		cfg.Price, cfg.Token, buyer,
	); err != nil {
		return fmt.Errorf("debiting buyer: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO token_balances (token, address, amount) VALUES (?, ?, ?)
		 ON CONFLICT (token, address) DO UPDATE SET amount = amount + ?`,
		cfg.Token, RegistryAddress, cfg.Price, cfg.Price,
	); err != nil {
		return fmt.Errorf("crediting registry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE token_allowances SET amount = amount - ?
		 WHERE token = ? AND owner = ? AND spender = ?`,
		cfg.Price, cfg.Token, buyer, RegistryAddress,
	); err != nil {
		return fmt.Errorf("consuming allowance: %w", err)
	}

	// Ownership transfer only after the token pull succeeded.
	if err := ledgerTransfer(ctx, tx, bottleID, RegistryAddress, buyer); err != nil {
		return err
	}
	if err := setHolding(ctx, tx, bottleID, buyer); err != nil {
		return err
	}

	if err := appendEvent(ctx, tx, model.EventItemSold, map[string]any{
		"buyer":     buyer,
		"seller":    RegistryAddress,
		"bottle_id": bottleID,
		"price":     cfg.Price,
		"token":     cfg.Token,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purchase: %w", err)
	}
	return nil
}
