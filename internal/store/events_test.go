package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/klemenv/vinoteka/internal/db"
	"github.com/klemenv/vinoteka/internal/model"
)

func TestEventLog(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bottleID := testBottle(t, database, "alice", 1000)
	c, err := MintCellar(ctx, database, "North Cellar", "alice", "", 0)
	if err != nil {
		t.Fatalf("MintCellar: %v", err)
	}
	if err := AddBottleToCellar(ctx, database, c.ID, bottleID, "alice"); err != nil {
		t.Fatalf("AddBottleToCellar: %v", err)
	}

	events, err := ListEvents(ctx, database, "")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	// Filtering by kind.
	minted, err := ListEvents(ctx, database, model.EventItemMinted)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(minted) != 1 {
		t.Fatalf("expected 1 mint event, got %d", len(minted))
	}

	// Payloads carry the acting identities.
	var payload struct {
		ID    int64  `json:"id"`
		Owner string `json:"owner"`
	}
	if err := json.Unmarshal([]byte(minted[0].Payload), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.ID != bottleID || payload.Owner != "alice" {
		t.Errorf("unexpected mint payload %+v", payload)
	}
}
