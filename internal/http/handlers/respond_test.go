package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonError(rec, "oops", http.StatusTeapot)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode json response: %v", err)
	}
	if body["error"] != "oops" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestWriteBookingErrorStatusCodes(t *testing.T) {
	logger := logging.New("error")
	cases := []struct {
		err  error
		want int
	}{
		{bookings.NewValidationError(), http.StatusUnprocessableEntity},
		{&bookings.NotFoundError{ID: "x"}, http.StatusNotFound},
		{&bookings.IllegalTransitionError{From: bookings.StatusCancelled, To: bookings.StatusConfirmed}, http.StatusConflict},
		{&bookings.PersistenceError{Op: "set_status", Backend: "remote", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeBookingError(rec, logger, tc.err, "could not update booking, please retry")
		if rec.Code != tc.want {
			t.Fatalf("%T: expected status %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phone":"1"}{"phone":"2"}`))
	rec := httptest.NewRecorder()
	var dst lookupRequest
	if err := decodeJSON(rec, req, &dst); err == nil {
		t.Fatalf("expected trailing data to be rejected")
	}
}
