package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/klemenv/vinoteka/internal/db"
	"github.com/klemenv/vinoteka/internal/model"
)

// testBottle mints a bottle with sensible defaults and returns its ID.
func testBottle(t *testing.T, database *sql.DB, owner string, maxValue int64) int64 {
	t.Helper()
	b, err := MintBottle(context.Background(), database, &model.Bottle{
		Domain:         "Chateau Test",
		Vintage:        2015,
		Format:         "bottle",
		LabelCondition: model.ConditionMedium,
		CorkCondition:  model.ConditionMedium,
		FillLevel:      "high fill",
		MaxValue:       maxValue,
		OptimalAge:     10,
	}, owner)
	if err != nil {
		t.Fatalf("MintBottle: %v", err)
	}
	return b.ID
}

func TestMintBottle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := testBottle(t, database, "alice", 1000)
	if first != 1 {
		t.Errorf("expected first bottle id 1, got %d", first)
	}
	second := testBottle(t, database, "alice", 500)
	if second != 2 {
		t.Errorf("expected second bottle id 2, got %d", second)
	}

	owner, err := OwnerOf(ctx, database, first)
	if err != nil {
		t.Fatalf("OwnerOf: %v", err)
	}
	if owner != "alice" {
		t.Errorf("expected ledger owner alice, got %q", owner)
	}

	holdings, err := ListHoldings(ctx, database, "alice")
	if err != nil {
		t.Fatalf("ListHoldings: %v", err)
	}
	if len(holdings) != 2 {
		t.Errorf("expected 2 holdings, got %d", len(holdings))
	}
}

func TestMintBottleValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		bottle model.Bottle
		owner  string
	}{
		{"missing owner", model.Bottle{Domain: "D", LabelCondition: "poor", CorkCondition: "poor", MaxValue: 1, OptimalAge: 1}, ""},
		{"missing domain", model.Bottle{LabelCondition: "poor", CorkCondition: "poor", MaxValue: 1, OptimalAge: 1}, "alice"},
		{"negative max value", model.Bottle{Domain: "D", LabelCondition: "poor", CorkCondition: "poor", MaxValue: -1, OptimalAge: 1}, "alice"},
		{"zero optimal age", model.Bottle{Domain: "D", LabelCondition: "poor", CorkCondition: "poor", MaxValue: 1, OptimalAge: 0}, "alice"},
		{"free-text condition", model.Bottle{Domain: "D", LabelCondition: "pristine", CorkCondition: "poor", MaxValue: 1, OptimalAge: 1}, "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MintBottle(ctx, database, &tc.bottle, tc.owner)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}

	// Nothing may have been committed by the failed mints.
	bottles, err := ListBottles(ctx, database)
	if err != nil {
		t.Fatalf("ListBottles: %v", err)
	}
	if len(bottles) != 0 {
		t.Errorf("expected no bottles after failed mints, got %d", len(bottles))
	}
}

func TestTransferBottle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id := testBottle(t, database, "alice", 1000)

	if err := TransferBottle(ctx, database, id, "alice", "bob"); err != nil {
		t.Fatalf("TransferBottle: %v", err)
	}
	owner, _ := OwnerOf(ctx, database, id)
	if owner != "bob" {
		t.Errorf("expected owner bob, got %q", owner)
	}

	// Only the current holder may transfer.
	err := TransferBottle(ctx, database, id, "alice", "carol")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	err = TransferBottle(ctx, database, 999, "alice", "bob")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing bottle, got %v", err)
	}
}

func TestBurnBottle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id := testBottle(t, database, "alice", 1000)

	// Only the owner may burn.
	if err := BurnBottle(ctx, database, id, "bob"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	if err := BurnBottle(ctx, database, id, "alice"); err != nil {
		t.Fatalf("BurnBottle: %v", err)
	}

	b, err := GetBottle(ctx, database, id)
	if err != nil {
		t.Fatalf("GetBottle: %v", err)
	}
	if b != nil {
		t.Error("expected nil bottle after burn")
	}
	if _, err := OwnerOf(ctx, database, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for burned asset, got %v", err)
	}

	// The swap index entry goes with the record.
	holdings, _ := ListHoldings(ctx, database, "alice")
	if len(holdings) != 0 {
		t.Errorf("expected no holdings after burn, got %d", len(holdings))
	}

	// Burned IDs stay retired: the next mint gets a fresh ID.
	next := testBottle(t, database, "alice", 500)
	if next != id+1 {
		t.Errorf("expected next id %d, got %d", id+1, next)
	}
}

func TestBottlePhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id := testBottle(t, database, "alice", 1000)

	data, mime, err := GetBottlePhoto(ctx, database, id)
	if err != nil {
		t.Fatalf("GetBottlePhoto: %v", err)
	}
	if data != nil {
		t.Error("expected no photo on a fresh bottle")
	}

	if err := SetBottlePhoto(ctx, database, id, []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
		t.Fatalf("SetBottlePhoto: %v", err)
	}
	data, mime, err = GetBottlePhoto(ctx, database, id)
	if err != nil {
		t.Fatalf("GetBottlePhoto: %v", err)
	}
	if len(data) != 2 || mime != "image/jpeg" {
		t.Errorf("unexpected photo round-trip: %d bytes, mime %q", len(data), mime)
	}

	if err := SetBottlePhoto(ctx, database, 999, nil, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
