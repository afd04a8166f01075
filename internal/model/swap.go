package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SwapProposal is the ephemeral description of a two-party barter: two
// ordered bottle-ID sets and the two participant identities. It exists
// only for the duration of one swap call.
type SwapProposal struct {
	UserA      string  `json:"user_a"`
	UserB      string  `json:"user_b"`
	OfferedByA []int64 `json:"offered_by_a"`
	OfferedByB []int64 `json:"offered_by_b"`
}

// Validate checks the structural invariants of a proposal.
func (p *SwapProposal) Validate() error {
	if p.UserA == "" || p.UserB == "" {
		return fmt.Errorf("both participants required")
	}
	if p.UserA == p.UserB {
		return fmt.Errorf("cannot swap with self")
	}
	if len(p.OfferedByA) == 0 && len(p.OfferedByB) == 0 {
		return fmt.Errorf("empty swap")
	}
	return nil
}

// CanonicalMessage returns the deterministic byte encoding of the
// proposal that the counterparty signs off-band. Both sides must
// produce identical bytes for the same proposal, so the encoding is a
// fixed field order with unambiguous separators.
func (p *SwapProposal) CanonicalMessage() []byte {
	var sb strings.Builder
	sb.WriteString("vinoteka-swap|")
	sb.WriteString(p.UserA)
	sb.WriteString("|")
	sb.WriteString(p.UserB)
	sb.WriteString("|")
	writeIDs(&sb, p.OfferedByA)
	sb.WriteString("|")
	writeIDs(&sb, p.OfferedByB)
	return []byte(sb.String())
}

func writeIDs(sb *strings.Builder, ids []int64) {
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
}
