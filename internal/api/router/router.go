package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dental-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dental-booking/internal/http/middleware"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	BookingHandler *handlers.BookingHandler
	PatientHandler *handlers.PatientHandler
	AdminHandler   *handlers.AdminHandler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Limits form submissions and logins per client (optional)
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.BookingHandler.Health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Booking intake and patient portal
	r.Route("/api", func(api chi.Router) {
		api.Get("/services", cfg.BookingHandler.ListServices)
		api.Get("/calendar", cfg.BookingHandler.GetCalendar)
		api.Get("/slots", cfg.BookingHandler.GetSlots)
		api.Group(func(limited chi.Router) {
			limited.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			limited.Post("/bookings", cfg.BookingHandler.CreateBooking)
			if cfg.PatientHandler != nil {
				limited.Post("/patients/lookup", cfg.PatientHandler.Lookup)
			}
		})
	})

	if cfg.AdminHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.With(httpmiddleware.RateLimit(cfg.RateLimiter)).Post("/login", cfg.AdminHandler.Login)
			admin.Group(func(authed chi.Router) {
				authed.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
				authed.Get("/bookings", cfg.AdminHandler.ListBookings)
				authed.Get("/stats", cfg.AdminHandler.Stats)
				authed.Get("/backend", cfg.AdminHandler.Backend)
				authed.Post("/bookings/{bookingID}/{action}", cfg.AdminHandler.ApplyAction)
			})
		})
	}

	return r
}
