package api

import (
	"database/sql"
	"encoding/base64"
	"net/http"

	"github.com/klemenv/vinoteka/internal/model"
	"github.com/klemenv/vinoteka/internal/store"
)

// SwapsHandler handles the barter-exchange endpoints.
type SwapsHandler struct {
	DB *sql.DB
}

type executeSwapRequest struct {
	UserA      string  `json:"user_a"`
	UserB      string  `json:"user_b"`
	OfferedByA []int64 `json:"offered_by_a"`
	OfferedByB []int64 `json:"offered_by_b"`

	// Signature is the counterparty's Ed25519 signature over the
	// canonical proposal message, base64-encoded.
	Signature string `json:"signature"`
}

type registerSignerRequest struct {
	Address   string `json:"address"`
	PublicKey string `json:"public_key"` // base64
}

// Execute handles POST /api/swaps.
func (h *SwapsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeSwapRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "signature must be base64")
		return
	}

	year, ok := valuationYear(w, r)
	if !ok {
		return
	}

	proposal := &model.SwapProposal{
		UserA:      req.UserA,
		UserB:      req.UserB,
		OfferedByA: req.OfferedByA,
		OfferedByB: req.OfferedByB,
	}

	if err := store.ExecuteSwap(r.Context(), h.DB, proposal, signature, year); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap executed"})
}

// RegisterSigner handles POST /api/signers.
func (h *SwapsHandler) RegisterSigner(w http.ResponseWriter, r *http.Request) {
	var req registerSignerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	publicKey, err := base64.StdEncoding.DecodeString(req.PublicKey)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "public key must be base64")
		return
	}

	if err := store.RegisterSigner(r.Context(), h.DB, req.Address, publicKey); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"message": "signer registered"})
}

// ListHoldings handles GET /api/holdings/{address}.
func (h *SwapsHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		jsonError(w, http.StatusBadRequest, "address required")
		return
	}

	holdings, err := store.ListHoldings(r.Context(), h.DB, address)
	if err != nil {
		storeError(w, err)
		return
	}
	if holdings == nil {
		holdings = []model.Holding{}
	}
	jsonResponse(w, http.StatusOK, holdings)
}
