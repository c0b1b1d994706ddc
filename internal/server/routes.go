package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/entropy/internal/item"
)

// handleListItems returns the stored collection in insertion order.
// Pass ?status=alive or ?status=dead to filter.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	status := item.Status(r.URL.Query().Get("status"))
	switch status {
	case "", item.StatusAlive, item.StatusDead:
	default:
		writeError(w, http.StatusBadRequest, "status must be alive or dead")
		return
	}

	c, err := s.store.Load(r.Context())
	if err != nil {
		log.Printf("list items: %v", err)
		writeError(w, http.StatusInternalServerError, "load items failed")
		return
	}

	records := make([]item.Record, 0, c.Len())
	for _, it := range c.Items() {
		if status != "" && it.Status() != status {
			continue
		}
		records = append(records, it.ToRecord())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": records,
		"count": len(records),
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := s.store.Load(r.Context())
	if err != nil {
		log.Printf("get item %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "load items failed")
		return
	}

	it, ok := c.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, it.ToRecord())
}
