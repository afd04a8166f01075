package model

import (
	"fmt"
	"time"
)

// Bottle represents an individually tracked collectible bottle.
// Ownership is not stored here; the ledger is authoritative.
type Bottle struct {
	ID             int64     `json:"id"`
	Domain         string    `json:"domain"`
	Vintage        int       `json:"vintage"`
	Format         string    `json:"format"`
	LabelCondition string    `json:"label_condition"`
	CorkCondition  string    `json:"cork_condition"`
	FillLevel      string    `json:"fill_level"`
	PhotoURI       string    `json:"photo_uri,omitempty"`
	PhotoMime      string    `json:"photo_mime,omitempty"`
	MaxValue       int64     `json:"max_value"`
	OptimalAge     int       `json:"optimal_age"`
	MintedYear     int       `json:"minted_year"`
	CreatedAt      time.Time `json:"created_at"`
}

// Condition grades for cork and label. Conditions are a closed
// enumeration decided at mint time, never free text.
const (
	ConditionPoor      = "poor"
	ConditionMedium    = "medium"
	ConditionExcellent = "excellent"
)

// ValidCondition reports whether c is one of the known grades.
func ValidCondition(c string) bool {
	return c == ConditionPoor || c == ConditionMedium || c == ConditionExcellent
}

// Validate checks the creation-time invariants. OptimalAge must be
// rejected here, not merely guarded at valuation time, because the
// valuation engine divides by it.
func (b *Bottle) Validate() error {
	if b.Domain == "" {
		return fmt.Errorf("domain required")
	}
	if b.MaxValue < 0 {
		return fmt.Errorf("max_value must be non-negative")
	}
	if b.OptimalAge <= 0 {
		return fmt.Errorf("optimal_age must be positive")
	}
	if !ValidCondition(b.LabelCondition) {
		return fmt.Errorf("invalid label_condition %q", b.LabelCondition)
	}
	if !ValidCondition(b.CorkCondition) {
		return fmt.Errorf("invalid cork_condition %q", b.CorkCondition)
	}
	return nil
}
