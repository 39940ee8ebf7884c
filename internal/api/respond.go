package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"renthub/internal/database"
	"renthub/internal/service"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps domain sentinels to HTTP statuses. Authorization
// failures surface as not-found so callers cannot discover existence.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrItemNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrRequestNotFound),
		errors.Is(err, service.ErrSelfBooking):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInterval),
		errors.Is(err, service.ErrNotAvailable),
		errors.Is(err, service.ErrAlreadyApproved),
		errors.Is(err, service.ErrUnsupportedState),
		errors.Is(err, service.ErrNotRented):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
