package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("decode body: trailing data")
	}
	return nil
}

// writeBookingError maps booking errors onto status codes. persistMsg is what
// the user sees when the store could not be written.
func writeBookingError(w http.ResponseWriter, logger *logging.Logger, err error, persistMsg string) {
	var (
		invalid  *bookings.ValidationError
		notFound *bookings.NotFoundError
		illegal  *bookings.IllegalTransitionError
		persist  *bookings.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": invalid.Fields,
		})
	case errors.As(err, &notFound):
		jsonError(w, "booking not found", http.StatusNotFound)
	case errors.As(err, &illegal):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": fmt.Sprintf("a %s booking cannot become %s", illegal.From, illegal.To),
			"from":  illegal.From,
			"to":    illegal.To,
		})
	case errors.As(err, &persist):
		logger.Error("booking store unavailable", "op", persist.Op, "backend", persist.Backend, "error", persist.Err)
		jsonError(w, persistMsg, http.StatusServiceUnavailable)
	default:
		logger.Error("unexpected booking error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// isStale reports whether err is a read failure whose cached result is still
// worth rendering.
func isStale(err error) bool {
	var persist *bookings.PersistenceError
	return errors.As(err, &persist)
}
