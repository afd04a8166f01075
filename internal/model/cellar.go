package model

import "time"

// Cellar represents a container asset holding an ordered list of
// bottle IDs. The list records insertions, not current custody: a
// bottle transferred or burned after being added stays listed, and the
// same bottle may be recorded in more than one cellar.
type Cellar struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	OwnerAddress string    `json:"owner_address"`
	Location     string    `json:"location,omitempty"`
	Reputation   int64     `json:"reputation"`
	CreatedAt    time.Time `json:"created_at"`

	// BottleIDs is populated on detail reads, in insertion order.
	BottleIDs []int64 `json:"bottle_ids,omitempty"`
}

// CellarIDBase is the first cellar ID. Bottle IDs are allocated below
// it, so the two ID spaces never collide.
const CellarIDBase = 10001
