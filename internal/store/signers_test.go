package store

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/klemenv/vinoteka/internal/auth"
	"github.com/klemenv/vinoteka/internal/db"
)

func TestRegisterSigner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := RegisterSigner(ctx, database, "", make([]byte, ed25519.PublicKeySize)); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty address, got %v", err)
	}
	if err := RegisterSigner(ctx, database, "bob", []byte("short")); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for truncated key, got %v", err)
	}

	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	if err := RegisterSigner(ctx, database, "bob", pub); err != nil {
		t.Fatalf("RegisterSigner: %v", err)
	}
}

func TestRegisterSignerReplacesKey(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	aliceBottle, bobBottle, oldPriv := swapFixture(t, database, 1000, 1000)

	// Rotate bob's key. Signatures from the old key stop verifying.
	newPub, newPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	if err := RegisterSigner(ctx, database, "bob", newPub); err != nil {
		t.Fatalf("RegisterSigner: %v", err)
	}

	p, oldSig := signedProposal(oldPriv, []int64{aliceBottle}, []int64{bobBottle})
	if err := ExecuteSwap(ctx, database, p, oldSig, 2025); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized with the rotated key, got %v", err)
	}

	newSig := auth.SignSwapMessage(newPriv, p.CanonicalMessage())
	if err := ExecuteSwap(ctx, database, p, newSig, 2025); err != nil {
		t.Errorf("expected swap with the new key to pass, got %v", err)
	}
}
