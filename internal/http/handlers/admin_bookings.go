package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/internal/http/middleware"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

// AdminConfig holds the shared dashboard credentials.
type AdminConfig struct {
	Password   string
	JWTSecret  string
	SessionTTL time.Duration
}

// AdminHandler serves the clinic dashboard.
type AdminHandler struct {
	svc    *bookings.Service
	cfg    AdminConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewAdminHandler(svc *bookings.Service, cfg AdminConfig, logger *logging.Logger) *AdminHandler {
	if svc == nil {
		panic("handlers: bookings service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	return &AdminHandler{svc: svc, cfg: cfg, logger: logger, now: time.Now}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges the shared admin password for a session token.
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Password == "" || h.cfg.JWTSecret == "" {
		jsonError(w, "admin login disabled", http.StatusServiceUnavailable)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) != 1 {
		h.logger.Warn("admin login rejected", "remote_ip", r.RemoteAddr)
		jsonError(w, "invalid password", http.StatusUnauthorized)
		return
	}
	token, expires, err := middleware.IssueAdminToken(h.cfg.JWTSecret, h.cfg.SessionTTL, h.now())
	if err != nil {
		h.logger.Error("issue admin token failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires.UTC()})
}

// AdminBooking is a dashboard row with the actions its status allows.
type AdminBooking struct {
	bookings.Booking
	Actions []bookings.Action `json:"actions"`
}

type adminListResponse struct {
	Tab      string         `json:"tab"`
	Bookings []AdminBooking `json:"bookings"`
	Stale    bool           `json:"stale,omitempty"`
}

// ListBookings returns the upcoming or past tab of the schedule.
// GET /admin/bookings?tab=upcoming|past
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	tab := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tab")))
	if tab == "" {
		tab = "upcoming"
	}
	if tab != "upcoming" && tab != "past" {
		jsonError(w, "tab must be upcoming or past", http.StatusBadRequest)
		return
	}

	view, err := h.svc.Dashboard(r.Context())
	if err != nil && !isStale(err) {
		writeBookingError(w, h.logger, err, "could not load bookings, please retry")
		return
	}
	rows := view.Upcoming
	if tab == "past" {
		rows = view.Past
	}
	out := make([]AdminBooking, 0, len(rows))
	for _, b := range rows {
		out = append(out, AdminBooking{Booking: b, Actions: nonNilActions(b.Status)})
	}
	writeJSON(w, http.StatusOK, adminListResponse{Tab: tab, Bookings: out, Stale: err != nil})
}

type statsResponse struct {
	bookings.DashboardStats
	Stale bool `json:"stale,omitempty"`
}

// Stats returns the headline counters.
// GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Dashboard(r.Context())
	if err != nil && !isStale(err) {
		writeBookingError(w, h.logger, err, "could not load bookings, please retry")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{DashboardStats: view.Stats, Stale: err != nil})
}

// Backend reports which store serves the session.
// GET /admin/backend
func (h *AdminHandler) Backend(w http.ResponseWriter, r *http.Request) {
	backend := h.svc.ActiveBackend()
	label := "Local Mode"
	if backend == bookings.BackendRemote {
		label = "Cloud Connected"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backend": backend,
		"label":   label,
	})
}

// ApplyAction confirms, declines, cancels or completes one booking.
// POST /admin/bookings/{bookingID}/{action}
func (h *AdminHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "bookingID"))
	if id == "" {
		jsonError(w, "missing booking id", http.StatusBadRequest)
		return
	}
	action, err := bookings.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		verr := bookings.NewValidationError()
		verr.Add("action", "action must be confirm, decline, cancel or complete")
		writeBookingError(w, h.logger, verr, "")
		return
	}

	b, err := h.svc.Apply(r.Context(), id, action)
	if err != nil {
		writeBookingError(w, h.logger, err, "could not update booking, please retry")
		return
	}
	writeJSON(w, http.StatusOK, AdminBooking{Booking: b, Actions: nonNilActions(b.Status)})
}

func nonNilActions(s bookings.Status) []bookings.Action {
	if actions := bookings.AllowedActions(s); actions != nil {
		return actions
	}
	return []bookings.Action{}
}
