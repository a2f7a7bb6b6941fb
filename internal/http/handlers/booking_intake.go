package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/internal/intake"
	"github.com/wolfman30/dental-booking/internal/schedule"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

// BookingHandler serves the public booking form: services, calendar, slots
// and submission.
type BookingHandler struct {
	svc    *bookings.Service
	logger *logging.Logger
}

func NewBookingHandler(svc *bookings.Service, logger *logging.Logger) *BookingHandler {
	if svc == nil {
		panic("handlers: bookings service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{svc: svc, logger: logger}
}

// ListServices returns the offered treatments.
// GET /api/services
func (h *BookingHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"services": intake.Services(),
		"default":  intake.DefaultService,
	})
}

type calendarResponse struct {
	Month    string                 `json:"month"`
	Mode     string                 `json:"mode"`
	Today    schedule.Date          `json:"today"`
	YearFrom int                    `json:"year_from"`
	YearTo   int                    `json:"year_to"`
	Days     []schedule.CalendarDay `json:"days"`
}

// GetCalendar renders one month with disabled days for the chosen picker.
// GET /api/calendar?month=YYYY-MM&mode=appointment|birthdate
func (h *BookingHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	engine := h.svc.Engine()
	q := r.URL.Query()

	mode := strings.TrimSpace(q.Get("mode"))
	if mode == "" {
		mode = schedule.AppointmentProfile.Name
	}
	profile, ok := schedule.ProfileByName(mode)
	if !ok {
		jsonError(w, "mode must be appointment or birthdate", http.StatusBadRequest)
		return
	}

	today := engine.Today()
	year, month := today.Year, today.Month
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			jsonError(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	days, err := engine.MonthCalendar(profile, year, month)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	from, to := engine.YearRange(profile)
	writeJSON(w, http.StatusOK, calendarResponse{
		Month:    fmt.Sprintf("%04d-%02d", year, int(month)),
		Mode:     profile.Name,
		Today:    today,
		YearFrom: from,
		YearTo:   to,
		Days:     days,
	})
}

type slotsResponse struct {
	Date  schedule.Date               `json:"date"`
	Slots []schedule.SlotAvailability `json:"slots"`
	Stale bool                        `json:"stale,omitempty"`
}

// GetSlots lists every catalog slot on a date with its availability.
// GET /api/slots?date=YYYY-MM-DD
func (h *BookingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	day, err := schedule.ParseDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if err := h.svc.Engine().CheckDate(schedule.AppointmentProfile, day); err != nil {
		verr := bookings.NewValidationError()
		verr.Add("date", intake.GateMessage(err))
		writeBookingError(w, h.logger, verr, "")
		return
	}

	slots, err := h.svc.Availability(r.Context(), day)
	if err != nil && !isStale(err) {
		writeBookingError(w, h.logger, err, "could not load availability, please retry")
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: day, Slots: slots, Stale: err != nil})
}

type createBookingResponse struct {
	Booking bookings.Booking `json:"booking"`
	Backend string           `json:"backend"`
	Message string           `json:"message"`
}

// CreateBooking validates the booking form and stores a pending request.
// POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req intake.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	fields, err := req.Validate(h.svc.Engine())
	if err != nil {
		writeBookingError(w, h.logger, err, "")
		return
	}

	blocked, err := h.svc.BlockedSlots(r.Context(), fields.Date)
	if err != nil {
		h.logger.Warn("checking slot against cached bookings", "date", fields.Date.String(), "error", err)
	}
	if err := intake.CheckSlotOpen(fields, blocked); err != nil {
		writeBookingError(w, h.logger, err, "")
		return
	}

	b, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		writeBookingError(w, h.logger, err, "could not save your booking, please retry")
		return
	}
	writeJSON(w, http.StatusCreated, createBookingResponse{
		Booking: b,
		Backend: h.svc.ActiveBackend(),
		Message: "Request received. We will confirm your appointment shortly.",
	})
}

// Health reports liveness and the active store.
// GET /health
func (h *BookingHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": h.svc.ActiveBackend(),
	})
}
