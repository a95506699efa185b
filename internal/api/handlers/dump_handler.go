package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/models"
	"github.com/atkinsj/dumpbin/internal/services"
)

// DumpHandler handles HTTP requests for dump management.
type DumpHandler struct {
	service services.DumpServiceProvider
	gate    *auth.Gate
}

// NewDumpHandler creates a new DumpHandler.
func NewDumpHandler(service services.DumpServiceProvider, gate *auth.Gate) *DumpHandler {
	return &DumpHandler{service: service, gate: gate}
}

// View returns a dump by its public ID. With download=true the contents
// are served as a plain-text attachment instead of JSON.
func (h *DumpHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dump, err := h.service.ViewDump(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "Dump not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("public_id", id).Msg("Failed to view dump")
		http.Error(w, "Failed to retrieve dump", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dump.PublicID+".txt"))
		w.Write([]byte(dump.Contents))
		return
	}

	writeJSON(w, http.StatusOK, dump)
}

// Add creates a new dump. Anonymous dumps (empty username) need no
// credential; everything else is stamped with the authenticated user.
func (h *DumpHandler) Add(w http.ResponseWriter, r *http.Request) {
	var dump models.Dump
	if err := json.NewDecoder(r.Body).Decode(&dump); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if dump.Username != "" {
		authUser, err := h.gate.Authenticate(r.Header, false)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		dump.Username = authUser.Username
	}

	created, err := h.service.CreateDump(dump)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create dump")
		http.Error(w, "Failed to create dump", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"publicId": created.PublicID})
}

// Update edits an existing dump owned by the caller.
func (h *DumpHandler) Update(w http.ResponseWriter, r *http.Request) {
	var dump models.Dump
	if err := json.NewDecoder(r.Body).Decode(&dump); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authUser, err := h.gate.Authenticate(r.Header, false)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	if !strings.EqualFold(authUser.Username, dump.Username) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	updated, err := h.service.UpdateDump(dump)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			http.Error(w, "Dump not found", http.StatusNotFound)
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Error().Err(err).Str("public_id", dump.PublicID).Msg("Failed to update dump")
			http.Error(w, "Failed to update dump", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"publicId": updated.PublicID})
}

// Delete removes a dump owned by the caller.
func (h *DumpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("publicId")
	if publicID == "" {
		http.Error(w, "publicId is required", http.StatusBadRequest)
		return
	}

	authUser, err := h.gate.Authenticate(r.Header, false)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	if err := h.service.DeleteDump(publicID, authUser.Username); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			http.Error(w, "Dump not found", http.StatusBadRequest)
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Error().Err(err).Str("public_id", publicID).Msg("Failed to delete dump")
			http.Error(w, "Failed to delete dump", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Recent returns the latest public dumps, or the caller's own latest
// dumps with mine=true.
func (h *DumpHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mine") == "true" {
		authUser, err := h.gate.Authenticate(r.Header, false)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		dumps, err := h.service.GetRecentDumpsByUser(authUser.Username, 10)
		if err != nil {
			log.Error().Err(err).Str("username", authUser.Username).Msg("Failed to list recent dumps")
			http.Error(w, "Failed to retrieve dumps", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, dumps)
		return
	}

	dumps, err := h.service.GetRecentDumps(10)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent dumps")
		http.Error(w, "Failed to retrieve dumps", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dumps)
}

// UserDumps returns a user's dumps. With viewAll=true the caller must be
// that user and private/unlisted dumps are included.
func (h *DumpHandler) UserDumps(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	viewAll := r.URL.Query().Get("viewAll") == "true"

	if viewAll {
		authUser, err := h.gate.Authenticate(r.Header, false)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		if !strings.EqualFold(authUser.Username, username) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	dumps, err := h.service.GetUserDumps(username, viewAll)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to list user dumps")
		http.Error(w, "Failed to retrieve dumps", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dumps)
}

// Range returns a page of public dumps, optionally filtered by type.
func (h *DumpHandler) Range(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	dumpType := r.URL.Query().Get("type")

	dumps, err := h.service.GetPublicRange(page, limit, dumpType)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list dump range")
		http.Error(w, "Failed to retrieve dumps", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dumps)
}
