package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/klemenv/vinoteka/internal/store"
)

// PurchasesHandler handles the payment-token and direct-purchase
// endpoints. Sale configuration is an admin concern, strictly separate
// from the buy path.
type PurchasesHandler struct {
	DB *sql.DB
}

type saleConfigRequest struct {
	Token string `json:"token"`
	Price int64  `json:"price"`
}

type creditRequest struct {
	Token   string `json:"token"`
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type approveRequest struct {
	Token   string `json:"token"`
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

type buyRequest struct {
	Buyer string `json:"buyer"`
}

// SetSaleConfig handles PUT /api/config/sale (admin only).
func (h *PurchasesHandler) SetSaleConfig(w http.ResponseWriter, r *http.Request) {
	var req saleConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := store.SetSaleConfig(r.Context(), h.DB, req.Token, req.Price)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, cfg)
}

// GetSaleConfig handles GET /api/config/sale.
func (h *PurchasesHandler) GetSaleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := store.GetSaleConfig(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if cfg == nil {
		jsonError(w, http.StatusNotFound, "no sale configuration")
		return
	}
	jsonResponse(w, http.StatusOK, cfg)
}

// Credit handles POST /api/token/credit (admin only).
func (h *PurchasesHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.CreditToken(r.Context(), h.DB, req.Token, req.Address, req.Amount); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "credited"})
}

// Approve handles POST /api/token/approve.
func (h *PurchasesHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.Approve(r.Context(), h.DB, req.Token, req.Owner, req.Spender, req.Amount); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "approved"})
}

// Buy handles POST /api/bottles/{id}/buy.
func (h *PurchasesHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	var req buyRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.BuyBottle(r.Context(), h.DB, id, req.Buyer); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"id": id, "buyer": req.Buyer})
}
