package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atkinsj/dumpbin/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAuthError maps authentication failures to HTTP statuses. An expired
// session gets 418 instead of 403 so clients can prompt a re-login rather
// than treat it as a denial.
func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrSessionExpired) {
		http.Error(w, "Session expired", http.StatusTeapot)
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}
