package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"renthub/internal/export"
)

// exportPageSize bounds how many rows a single report can carry.
const exportPageSize = 10000

type createBookingRequest struct {
	ItemID    int64     `json:"item_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookerBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBookingSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/bookings/"), "/")

	switch rest {
	case "owner":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.listOwnerBookings(w, r)
		return
	case "owner/export":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.exportOwnerBookings(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getBooking(w, r)
	case http.MethodPatch:
		s.decideBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ItemID <= 0 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	booking, err := s.bookings.Create(r.Context(), userID, req.ItemID, req.StartDate, req.EndDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) decideBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookingID, err := pathID(r.URL.Path, "/bookings/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var approved bool
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("approved"))) {
	case "true":
		approved = true
	case "false":
		approved = false
	default:
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := s.bookings.Decide(r.Context(), userID, bookingID, approved)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookingID, err := pathID(r.URL.Path, "/bookings/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.GetVisible(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) listBookerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, size, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		state = "ALL"
	}

	bookings, err := s.bookings.ListForBooker(r.Context(), userID, state, from, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, size, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		state = "ALL"
	}

	bookings, err := s.bookings.ListForOwner(r.Context(), userID, state, from, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// exportOwnerBookings streams an XLSX report of every booking on the
// owner's items.
func (s *Server) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.ListForOwner(r.Context(), userID, "ALL", 0, exportPageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views, err := s.items.ListByOwner(r.Context(), userID, 0, exportPageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	itemNames := make(map[int64]string, len(views))
	for _, v := range views {
		itemNames[v.ID] = v.Name
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := export.WriteBookingsReport(w, bookings, itemNames); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", userID).Msg("failed to write bookings report")
	}
}
