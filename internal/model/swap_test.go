package model

import (
	"bytes"
	"testing"
)

func TestSwapProposalValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       SwapProposal
		wantErr bool
	}{
		{"valid", SwapProposal{UserA: "alice", UserB: "bob", OfferedByA: []int64{1}}, false},
		{"one-sided", SwapProposal{UserA: "alice", UserB: "bob", OfferedByB: []int64{2}}, false},
		{"missing party", SwapProposal{UserA: "alice", OfferedByA: []int64{1}}, true},
		{"self swap", SwapProposal{UserA: "alice", UserB: "alice", OfferedByA: []int64{1}}, true},
		{"empty both sides", SwapProposal{UserA: "alice", UserB: "bob"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCanonicalMessage(t *testing.T) {
	p := SwapProposal{UserA: "alice", UserB: "bob", OfferedByA: []int64{1, 2}, OfferedByB: []int64{3}}

	want := []byte("vinoteka-swap|alice|bob|1,2|3")
	if got := p.CanonicalMessage(); !bytes.Equal(got, want) {
		t.Errorf("CanonicalMessage() = %q, want %q", got, want)
	}

	// Identical proposals encode identically; any field change changes
	// the bytes.
	same := SwapProposal{UserA: "alice", UserB: "bob", OfferedByA: []int64{1, 2}, OfferedByB: []int64{3}}
	if !bytes.Equal(p.CanonicalMessage(), same.CanonicalMessage()) {
		t.Error("identical proposals must encode identically")
	}
	reordered := SwapProposal{UserA: "alice", UserB: "bob", OfferedByA: []int64{2, 1}, OfferedByB: []int64{3}}
	if bytes.Equal(p.CanonicalMessage(), reordered.CanonicalMessage()) {
		t.Error("reordered offer must encode differently")
	}
}
