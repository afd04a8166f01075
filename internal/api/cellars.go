package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/klemenv/vinoteka/internal/model"
	"github.com/klemenv/vinoteka/internal/store"
)

// CellarsHandler handles cellar endpoints.
type CellarsHandler struct {
	DB *sql.DB
}

type mintCellarRequest struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Reputation int64  `json:"reputation"`
}

type addBottleRequest struct {
	BottleID int64  `json:"bottle_id"`
	Owner    string `json:"owner"`
}

// List handles GET /api/cellars.
func (h *CellarsHandler) List(w http.ResponseWriter, r *http.Request) {
	cellars, err := store.ListCellars(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if cellars == nil {
		cellars = []model.Cellar{}
	}
	jsonResponse(w, http.StatusOK, cellars)
}

// Mint handles POST /api/cellars (admin only).
func (h *CellarsHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintCellarRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cellar, err := store.MintCellar(r.Context(), h.DB, req.Name, req.Owner, req.Location, req.Reputation)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, cellar)
}

// Get handles GET /api/cellars/{id}.
func (h *CellarsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cellar id")
		return
	}

	cellar, err := store.GetCellar(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if cellar == nil {
		jsonError(w, http.StatusNotFound, "cellar not found")
		return
	}

	jsonResponse(w, http.StatusOK, cellar)
}

// AddBottle handles POST /api/cellars/{id}/bottles.
func (h *CellarsHandler) AddBottle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cellar id")
		return
	}

	var req addBottleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.AddBottleToCellar(r.Context(), h.DB, id, req.BottleID, req.Owner); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "bottle added"})
}

// ListBottles handles GET /api/cellars/{id}/bottles.
func (h *CellarsHandler) ListBottles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cellar id")
		return
	}

	bottles, err := store.ListCellarBottles(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if bottles == nil {
		bottles = []model.Bottle{}
	}
	jsonResponse(w, http.StatusOK, bottles)
}

// Value handles GET /api/cellars/{id}/value.
func (h *CellarsHandler) Value(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cellar id")
		return
	}

	year, ok := valuationYear(w, r)
	if !ok {
		return
	}

	total, err := store.CellarValue(r.Context(), h.DB, id, year)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"id":    id,
		"year":  year,
		"value": total,
	})
}

// Transfer handles POST /api/cellars/{id}/transfer.
func (h *CellarsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cellar id")
		return
	}

	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.TransferCellar(r.Context(), h.DB, id, req.From, req.To); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "cellar transferred"})
}

// Burn handles DELETE /api/cellars/{id}.
func (h *CellarsHandler) Burn(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cellar id")
		return
	}

	var req burnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.BurnCellar(r.Context(), h.DB, id, req.Owner); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "cellar burned"})
}
