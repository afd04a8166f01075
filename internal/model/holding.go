package model

// Holding is one row of the swap-bookkeeping owner index: a reverse
// mapping from owner address to a bottle ID. It is maintained for the
// barter protocol only and is not automatically synchronized with the
// ledger.
type Holding struct {
	BottleID int64  `json:"bottle_id"`
	Owner    string `json:"owner"`

	// Joined fields (not always populated).
	Domain  string `json:"domain,omitempty"`
	Vintage int    `json:"vintage,omitempty"`
}
