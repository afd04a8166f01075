package api

import (
	"database/sql"
	"net/http"

	"github.com/klemenv/vinoteka/internal/model"
	"github.com/klemenv/vinoteka/internal/store"
)

// EventsHandler exposes the registry's notification log.
type EventsHandler struct {
	DB *sql.DB
}

// List handles GET /api/events, optionally filtered by ?kind=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	events, err := store.ListEvents(r.Context(), h.DB, kind)
	if err != nil {
		storeError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonResponse(w, http.StatusOK, events)
}
