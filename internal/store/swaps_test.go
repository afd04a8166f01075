package store

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"errors"
	"testing"

	"github.com/klemenv/vinoteka/internal/auth"
	"github.com/klemenv/vinoteka/internal/db"
	"github.com/klemenv/vinoteka/internal/model"
)

// swapFixture mints one bottle per party and registers bob's signing
// key, returning the bottle IDs and bob's private key.
func swapFixture(t *testing.T, database *sql.DB, aliceValue, bobValue int64) (int64, int64, ed25519.PrivateKey) {
	t.Helper()
	ctx := context.Background()

	aliceBottle := testBottle(t, database, "alice", aliceValue)
	bobBottle := testBottle(t, database, "bob", bobValue)

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	if err := RegisterSigner(ctx, database, "bob", pub); err != nil {
		t.Fatalf("RegisterSigner: %v", err)
	}
	return aliceBottle, bobBottle, priv
}

func signedProposal(priv ed25519.PrivateKey, offeredByA, offeredByB []int64) (*model.SwapProposal, []byte) {
	p := &model.SwapProposal{
		UserA:      "alice",
		UserB:      "bob",
		OfferedByA: offeredByA,
		OfferedByB: offeredByB,
	}
	return p, auth.SignSwapMessage(priv, p.CanonicalMessage())
}

func TestExecuteSwap(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	aliceBottle, bobBottle, priv := swapFixture(t, database, 1000, 1000)
	p, sig := signedProposal(priv, []int64{aliceBottle}, []int64{bobBottle})

	if err := ExecuteSwap(ctx, database, p, sig, 2025); err != nil {
		t.Fatalf("ExecuteSwap: %v", err)
	}

	// The swap index crossed over.
	alice, _ := ListHoldings(ctx, database, "alice")
	if len(alice) != 1 || alice[0].BottleID != bobBottle {
		t.Errorf("expected alice to hold %d, got %v", bobBottle, alice)
	}
	bob, _ := ListHoldings(ctx, database, "bob")
	if len(bob) != 1 || bob[0].BottleID != aliceBottle {
		t.Errorf("expected bob to hold %d, got %v", aliceBottle, bob)
	}

	events, err := ListEvents(ctx, database, model.EventSwapExecuted)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 swap event, got %d", len(events))
	}
}

func TestExecuteSwapTolerance(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// At 2025 the sides value 1000 vs 850: a 15% imbalance against the
	// side-B baseline, outside the band.
	aliceBottle, bobBottle, priv := swapFixture(t, database, 1000, 850)
	p, sig := signedProposal(priv, []int64{aliceBottle}, []int64{bobBottle})

	err := ExecuteSwap(ctx, database, p, sig, 2025)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for imbalanced swap, got %v", err)
	}

	// Nothing moved.
	alice, _ := ListHoldings(ctx, database, "alice")
	if len(alice) != 1 || alice[0].BottleID != aliceBottle {
		t.Errorf("expected alice's holding unchanged, got %v", alice)
	}

	// 10% under the baseline is the edge of the band and passes.
	database2 := db.NewTestDB(t)
	a2 := testBottle(t, database2, "alice", 900)
	b2 := testBottle(t, database2, "bob", 1000)
	pub, priv2, _ := ed25519.GenerateKey(nil)
	RegisterSigner(ctx, database2, "bob", pub)
	edge := &model.SwapProposal{UserA: "alice", UserB: "bob", OfferedByA: []int64{a2}, OfferedByB: []int64{b2}}
	if err := ExecuteSwap(ctx, database2, edge, auth.SignSwapMessage(priv2, edge.CanonicalMessage()), 2025); err != nil {
		t.Errorf("expected swap at the band edge to pass, got %v", err)
	}
}

func TestExecuteSwapAuthorization(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	aliceBottle, bobBottle, priv := swapFixture(t, database, 1000, 1000)

	// A signature over a different proposal does not authorize this one.
	_, wrongSig := signedProposal(priv, []int64{aliceBottle}, []int64{})
	p, _ := signedProposal(priv, []int64{aliceBottle}, []int64{bobBottle})
	if err := ExecuteSwap(ctx, database, p, wrongSig, 2025); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for mismatched signature, got %v", err)
	}

	// Garbage bytes never verify.
	if err := ExecuteSwap(ctx, database, p, []byte("nonsense"), 2025); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for malformed signature, got %v", err)
	}

	// A counterparty with no registered key cannot authorize anything.
	carol := &model.SwapProposal{
		UserA:      "alice",
		UserB:      "carol",
		OfferedByA: []int64{aliceBottle},
		OfferedByB: []int64{},
	}
	sig := auth.SignSwapMessage(priv, carol.CanonicalMessage())
	if err := ExecuteSwap(ctx, database, carol, sig, 2025); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unregistered signer, got %v", err)
	}

	// Failed attempts leave the index untouched.
	alice, _ := ListHoldings(ctx, database, "alice")
	if len(alice) != 1 || alice[0].BottleID != aliceBottle {
		t.Errorf("expected alice's holding unchanged, got %v", alice)
	}
}

func TestExecuteSwapOwnership(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	aliceBottle, bobBottle, priv := swapFixture(t, database, 1000, 1000)
	carolBottle := testBottle(t, database, "carol", 1000)

	// Offering a bottle the index maps to someone else fails.
	p, sig := signedProposal(priv, []int64{carolBottle}, []int64{bobBottle})
	if err := ExecuteSwap(ctx, database, p, sig, 2025); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unheld bottle, got %v", err)
	}

	// Alice's own holding is untouched by the failed attempt.
	alice, _ := ListHoldings(ctx, database, "alice")
	if len(alice) != 1 || alice[0].BottleID != aliceBottle {
		t.Errorf("expected alice's holding unchanged, got %v", alice)
	}
}

func TestExecuteSwapValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	aliceBottle, _, priv := swapFixture(t, database, 1000, 1000)

	// Both sides empty is not a swap.
	p, sig := signedProposal(priv, []int64{}, []int64{})
	if err := ExecuteSwap(ctx, database, p, sig, 2025); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty proposal, got %v", err)
	}

	// Self-swaps are rejected.
	self := &model.SwapProposal{
		UserA:      "alice",
		UserB:      "alice",
		OfferedByA: []int64{aliceBottle},
		OfferedByB: []int64{},
	}
	sig = auth.SignSwapMessage(priv, self.CanonicalMessage())
	if err := ExecuteSwap(ctx, database, self, sig, 2025); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for self-swap, got %v", err)
	}

	// Offering a bottle that was never minted fails.
	missing, missingSig := signedProposal(priv, []int64{999}, []int64{})
	if err := ExecuteSwap(ctx, database, missing, missingSig, 2025); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unindexed bottle, got %v", err)
	}
}
