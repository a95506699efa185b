package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/images"
	"github.com/atkinsj/dumpbin/internal/services"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 10 << 20

// UploadHandler handles multipart profile updates.
type UploadHandler struct {
	service services.UserServiceProvider
	gate    *auth.Gate
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service services.UserServiceProvider, gate *auth.Gate) *UploadHandler {
	return &UploadHandler{service: service, gate: gate}
}

// Profile updates the caller's email, website, and optionally password and
// avatar. An uploaded avatar is resized to the standard dimensions and
// stored as PNG.
func (h *UploadHandler) Profile(w http.ResponseWriter, r *http.Request) {
	authUser, err := h.gate.Authenticate(r.Header, true)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	website := r.FormValue("website")
	password := r.FormValue("password")

	var avatar []byte
	if file, _, err := r.FormFile("avatar"); err == nil {
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Failed to read avatar", http.StatusBadRequest)
			return
		}

		avatar, err = images.ResizeAvatar(raw)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", authUser.ID).Msg("Rejected unreadable avatar upload")
			http.Error(w, "Unsupported avatar image", http.StatusBadRequest)
			return
		}
	}

	user, err := h.service.UpdateProfile(authUser.ID, email, website, password, avatar)
	if err != nil {
		log.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to update profile")
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
