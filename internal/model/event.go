package model

import "time"

// Event is one entry in the append-only notification log. Every
// registry mutation that the outside world cares about is recorded as
// an event.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Event kinds.
const (
	EventItemMinted           = "ItemMinted"
	EventContainerMinted      = "ContainerMinted"
	EventItemAddedToContainer = "ItemAddedToContainer"
	EventSwapExecuted         = "SwapExecuted"
	EventItemSold             = "ItemSold"
)
