package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/services"
)

// EventHandler handles HTTP requests for the activity feed.
type EventHandler struct {
	service services.EventServiceProvider
	gate    *auth.Gate
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider, gate *auth.Gate) *EventHandler {
	return &EventHandler{service: service, gate: gate}
}

// GetRecent returns recent audit events to an authenticated caller.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.Authenticate(r.Header, false); err != nil {
		writeAuthError(w, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		http.Error(w, "Failed to retrieve events", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
