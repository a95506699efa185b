package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/images"
	"github.com/atkinsj/dumpbin/internal/models"
	"github.com/atkinsj/dumpbin/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service      services.UserServiceProvider
	gate         *auth.Gate
	codec        *auth.Codec
	sessionDays  int
	rememberDays int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, gate *auth.Gate, codec *auth.Codec, sessionDays, rememberDays int) *UserHandler {
	return &UserHandler{
		service:      service,
		gate:         gate,
		codec:        codec,
		sessionDays:  sessionDays,
		rememberDays: rememberDays,
	}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(payload.Username, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusConflict)
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and issues a session token. With remember
// set, the token lives for a year instead of days.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.AuthenticateUser(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		http.Error(w, "Invalid credentials", http.StatusForbidden)
		return
	}

	days := h.sessionDays
	if payload.Remember {
		days = h.rememberDays
	}
	expiresAt := time.Now().Add(time.Duration(days) * 24 * time.Hour)

	token, err := h.codec.Issue(strconv.FormatInt(user.ID, 10), user.Username, expiresAt)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jwt":  token,
		"user": user,
	})
}

// Exists reports whether a username is registered (200) or not (404).
func (h *UserHandler) Exists(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	exists, err := h.service.UsernameExists(username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to check username")
		http.Error(w, "Failed to check username", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Profile returns a user's public profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	user, err := h.service.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to load profile")
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, user)
}

// MyProfile returns the authenticated caller's own profile.
func (h *UserHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.gate.Authenticate(r.Header, false)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Username resolves a user ID to its username.
func (h *UserHandler) Username(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("user_id", id).Msg("Failed to resolve username")
		http.Error(w, "Failed to resolve username", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// Avatar serves a user's avatar PNG, or the generated placeholder when
// none has been uploaded.
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	avatar, err := h.service.GetAvatar(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to load avatar")
		http.Error(w, "Failed to load avatar", http.StatusInternalServerError)
		return
	}

	if avatar == nil {
		avatar = images.DefaultAvatar()
		if avatar == nil {
			http.Error(w, "No avatar available", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(avatar)
}
