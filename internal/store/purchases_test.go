package store

import (
	"context"
	"errors"
	"testing"

	"github.com/klemenv/vinoteka/internal/db"
)

func TestSaleConfigVersioning(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cfg, err := GetSaleConfig(ctx, database)
	if err != nil {
		t.Fatalf("GetSaleConfig: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected no sale config on a fresh database")
	}

	if _, err := SetSaleConfig(ctx, database, "VIN", 100); err != nil {
		t.Fatalf("SetSaleConfig: %v", err)
	}
	if _, err := SetSaleConfig(ctx, database, "VIN", 250); err != nil {
		t.Fatalf("SetSaleConfig: %v", err)
	}

	// The newest version wins.
	cfg, err = GetSaleConfig(ctx, database)
	if err != nil {
		t.Fatalf("GetSaleConfig: %v", err)
	}
	if cfg.Price != 250 {
		t.Errorf("expected price 250 from the latest version, got %d", cfg.Price)
	}

	if _, err := SetSaleConfig(ctx, database, "", 100); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty token, got %v", err)
	}
	if _, err := SetSaleConfig(ctx, database, "VIN", -1); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative price, got %v", err)
	}
}

func TestTokenBalancesAndAllowances(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := CreditToken(ctx, database, "VIN", "carol", 100); err != nil {
		t.Fatalf("CreditToken: %v", err)
	}
	if err := CreditToken(ctx, database, "VIN", "carol", 50); err != nil {
		t.Fatalf("CreditToken: %v", err)
	}

	balance, err := BalanceOf(ctx, database, "VIN", "carol")
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if balance != 150 {
		t.Errorf("expected balance 150, got %d", balance)
	}

	// Unknown addresses and tokens read as zero.
	balance, _ = BalanceOf(ctx, database, "VIN", "nobody")
	if balance != 0 {
		t.Errorf("expected zero balance, got %d", balance)
	}

	if err := CreditToken(ctx, database, "VIN", "carol", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero credit, got %v", err)
	}

	// Approve sets, not adds.
	if err := Approve(ctx, database, "VIN", "carol", RegistryAddress, 80); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := Approve(ctx, database, "VIN", "carol", RegistryAddress, 60); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	allowance, err := Allowance(ctx, database, "VIN", "carol", RegistryAddress)
	if err != nil {
		t.Fatalf("Allowance: %v", err)
	}
	if allowance != 60 {
		t.Errorf("expected allowance 60, got %d", allowance)
	}
}

func TestBuyBottle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id := testBottle(t, database, RegistryAddress, 1000)
	SetSaleConfig(ctx, database, "VIN", 250)
	CreditToken(ctx, database, "VIN", "carol", 300)
	Approve(ctx, database, "VIN", "carol", RegistryAddress, 250)

	if err := BuyBottle(ctx, database, id, "carol"); err != nil {
		t.Fatalf("BuyBottle: %v", err)
	}

	// Ownership moved to the buyer in the ledger and the swap index.
	owner, _ := OwnerOf(ctx, database, id)
	if owner != "carol" {
		t.Errorf("expected owner carol, got %q", owner)
	}
	holdings, _ := ListHoldings(ctx, database, "carol")
	if len(holdings) != 1 || holdings[0].BottleID != id {
		t.Errorf("expected carol to hold bottle %d, got %v", id, holdings)
	}

	// The price was pulled and the allowance consumed.
	balance, _ := BalanceOf(ctx, database, "VIN", "carol")
	if balance != 50 {
		t.Errorf("expected balance 50 after purchase, got %d", balance)
	}
	registryBalance, _ := BalanceOf(ctx, database, "VIN", RegistryAddress)
	if registryBalance != 250 {
		t.Errorf("expected registry balance 250, got %d", registryBalance)
	}
	allowance, _ := Allowance(ctx, database, "VIN", "carol", RegistryAddress)
	if allowance != 0 {
		t.Errorf("expected allowance consumed, got %d", allowance)
	}

	// The bottle is no longer registry-held.
	if err := BuyBottle(ctx, database, id, "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation buying a sold bottle, got %v", err)
	}
}

func TestBuyBottleFailures(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id := testBottle(t, database, RegistryAddress, 1000)
	privateID := testBottle(t, database, "alice", 1000)

	// No sale configured yet.
	if err := BuyBottle(ctx, database, id, "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation with no sale config, got %v", err)
	}

	SetSaleConfig(ctx, database, "VIN", 250)

	// Insufficient balance.
	CreditToken(ctx, database, "VIN", "carol", 100)
	Approve(ctx, database, "VIN", "carol", RegistryAddress, 250)
	if err := BuyBottle(ctx, database, id, "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for insufficient balance, got %v", err)
	}

	// Sufficient balance, insufficient allowance.
	CreditToken(ctx, database, "VIN", "carol", 200)
	Approve(ctx, database, "VIN", "carol", RegistryAddress, 100)
	if err := BuyBottle(ctx, database, id, "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for insufficient allowance, got %v", err)
	}

	// Failed purchases never touch the balance.
	balance, _ := BalanceOf(ctx, database, "VIN", "carol")
	if balance != 300 {
		t.Errorf("expected balance 300 after failed buys, got %d", balance)
	}

	// Bottles held by someone other than the registry are not for sale.
	Approve(ctx, database, "VIN", "carol", RegistryAddress, 250)
	if err := BuyBottle(ctx, database, privateID, "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for privately held bottle, got %v", err)
	}

	if err := BuyBottle(ctx, database, 999, "carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing bottle, got %v", err)
	}
	if err := BuyBottle(ctx, database, id, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty buyer, got %v", err)
	}
}
