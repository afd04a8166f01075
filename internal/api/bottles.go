package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/klemenv/vinoteka/internal/imaging"
	"github.com/klemenv/vinoteka/internal/model"
	"github.com/klemenv/vinoteka/internal/store"
	"github.com/klemenv/vinoteka/internal/valuation"
)

// BottlesHandler handles bottle endpoints.
type BottlesHandler struct {
	DB *sql.DB
}

type mintBottleRequest struct {
	Owner          string `json:"owner"`
	Domain         string `json:"domain"`
	Vintage        int    `json:"vintage"`
	Format         string `json:"format"`
	LabelCondition string `json:"label_condition"`
	CorkCondition  string `json:"cork_condition"`
	FillLevel      string `json:"fill_level"`
	PhotoURI       string `json:"photo_uri"`
	MaxValue       int64  `json:"max_value"`
	OptimalAge     int    `json:"optimal_age"`
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type burnRequest struct {
	Owner string `json:"owner"`
}

// List handles GET /api/bottles.
func (h *BottlesHandler) List(w http.ResponseWriter, r *http.Request) {
	bottles, err := store.ListBottles(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if bottles == nil {
		bottles = []model.Bottle{}
	}
	jsonResponse(w, http.StatusOK, bottles)
}

// Mint handles POST /api/bottles (admin only).
func (h *BottlesHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintBottleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bottle, err := store.MintBottle(r.Context(), h.DB, &model.Bottle{
		Domain:         req.Domain,
		Vintage:        req.Vintage,
		Format:         req.Format,
		LabelCondition: req.LabelCondition,
		CorkCondition:  req.CorkCondition,
		FillLevel:      req.FillLevel,
		PhotoURI:       req.PhotoURI,
		MaxValue:       req.MaxValue,
		OptimalAge:     req.OptimalAge,
	}, req.Owner)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, bottle)
}

// Get handles GET /api/bottles/{id}.
func (h *BottlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	bottle, err := store.GetBottle(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if bottle == nil {
		jsonError(w, http.StatusNotFound, "bottle not found")
		return
	}

	owner, err := store.OwnerOf(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"bottle": bottle,
		"owner":  owner,
	})
}

// Value handles GET /api/bottles/{id}/value. The valuation year comes
// from the year query parameter, defaulting to the current wall-clock
// year; the engine itself never reads the clock.
func (h *BottlesHandler) Value(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	year, ok := valuationYear(w, r)
	if !ok {
		return
	}

	bottle, err := store.GetBottle(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if bottle == nil {
		jsonError(w, http.StatusNotFound, "bottle not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"id":    id,
		"year":  year,
		"value": valuation.Value(bottle, year),
	})
}

// Transfer handles POST /api/bottles/{id}/transfer.
func (h *BottlesHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.TransferBottle(r.Context(), h.DB, id, req.From, req.To); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "bottle transferred"})
}

// Burn handles DELETE /api/bottles/{id}.
func (h *BottlesHandler) Burn(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	var req burnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.BurnBottle(r.Context(), h.DB, id, req.Owner); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "bottle burned"})
}

// UploadPhoto handles PUT /api/bottles/{id}/photo.
func (h *BottlesHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetBottlePhoto(r.Context(), h.DB, id, result.Data, result.MIME); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/bottles/{id}/photo.
func (h *BottlesHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bottle id")
		return
	}

	data, mime, err := store.GetBottlePhoto(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// valuationYear parses the optional year query parameter, defaulting
// to the current wall-clock year. Reports false after writing an error
// response if the parameter is malformed.
func valuationYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return year, true
}
