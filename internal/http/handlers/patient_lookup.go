package handlers

import (
	"net/http"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/internal/intake"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

// PatientHandler serves the patient portal.
type PatientHandler struct {
	svc    *bookings.Service
	logger *logging.Logger
}

func NewPatientHandler(svc *bookings.Service, logger *logging.Logger) *PatientHandler {
	if svc == nil {
		panic("handlers: bookings service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientHandler{svc: svc, logger: logger}
}

type lookupRequest struct {
	Phone string `json:"phone"`
}

type lookupResponse struct {
	Phone    string             `json:"phone"`
	Upcoming []bookings.Booking `json:"upcoming"`
	History  []bookings.Booking `json:"history"`
	Stale    bool               `json:"stale,omitempty"`
}

// Lookup returns a patient's bookings by mobile number.
// POST /api/patients/lookup
func (h *PatientHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := intake.ValidateLookupPhone(req.Phone); err != nil {
		verr := bookings.NewValidationError()
		verr.Add("phone", intake.MsgLookupPhone)
		writeBookingError(w, h.logger, verr, "")
		return
	}

	history, err := h.svc.PatientBookings(r.Context(), req.Phone)
	if err != nil && !isStale(err) {
		writeBookingError(w, h.logger, err, "could not load your bookings, please retry")
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{
		Phone:    intake.FormatPhone(req.Phone),
		Upcoming: history.Upcoming,
		History:  history.History,
		Stale:    err != nil,
	})
}
