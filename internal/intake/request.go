package intake

import (
	"errors"
	"strings"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/internal/schedule"
)

// BookingRequest is the patient booking form as submitted.
type BookingRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Birthday string `json:"birthday"`
	Service  string `json:"service"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

// Validate checks the form and returns the fields to store. Failures come back
// as a *bookings.ValidationError keyed by form field. The birthday is checked
// but never stored.
func (r BookingRequest) Validate(e *schedule.Engine) (bookings.Fields, error) {
	verr := bookings.NewValidationError()

	name := strings.TrimSpace(r.Name)
	if name == "" {
		verr.Add("name", "Name is required")
	}
	if err := ValidatePhone(r.Phone); err != nil {
		verr.Add("phone", MsgPhone)
	}
	if err := ValidateEmail(r.Email); err != nil {
		verr.Add("email", MsgEmail)
	}

	if strings.TrimSpace(r.Birthday) == "" {
		verr.Add("birthday", "Complete date of birth is required")
	} else if dob, err := schedule.ParseDate(strings.TrimSpace(r.Birthday)); err != nil {
		verr.Add("birthday", "Date of birth must be YYYY-MM-DD")
	} else if err := e.CheckDate(schedule.BirthDateProfile, dob); err != nil {
		verr.Add("birthday", GateMessage(err))
	}

	var day schedule.Date
	if strings.TrimSpace(r.Date) == "" {
		verr.Add("date", "Please select a date from the calendar")
	} else if d, err := schedule.ParseDate(strings.TrimSpace(r.Date)); err != nil {
		verr.Add("date", "Date must be YYYY-MM-DD")
	} else if err := e.CheckDate(schedule.AppointmentProfile, d); err != nil {
		verr.Add("date", GateMessage(err))
	} else {
		day = d
	}

	slot := strings.TrimSpace(r.Time)
	if slot == "" {
		verr.Add("time", "Please select a time slot")
	} else if !schedule.IsCatalogSlot(slot) {
		verr.Add("time", "Please select one of the listed time slots")
	}

	if err := verr.Err(); err != nil {
		return bookings.Fields{}, err
	}

	service := strings.TrimSpace(r.Service)
	if service == "" {
		service = DefaultService
	}
	return bookings.Fields{
		Name:    name,
		Phone:   FormatPhone(r.Phone),
		Email:   strings.TrimSpace(r.Email),
		Service: service,
		Date:    day,
		Time:    slot,
		Notes:   strings.TrimSpace(r.Notes),
	}, nil
}

// CheckSlotOpen adds a time error when the requested slot is already blocked.
func CheckSlotOpen(f bookings.Fields, blocked schedule.SlotSet) error {
	if !blocked.Has(f.Time) {
		return nil
	}
	verr := bookings.NewValidationError()
	verr.Add("time", "This time slot is no longer available")
	return verr
}

// GateMessage turns a date gating error into a form message.
func GateMessage(err error) string {
	var gate *schedule.DateGateError
	if !errors.As(err, &gate) {
		return err.Error()
	}
	switch gate.Reason {
	case schedule.GatePast:
		return "Date is in the past"
	case schedule.GateSunday:
		return "The clinic is closed on Sundays"
	case schedule.GateFuture:
		return "Date of birth cannot be in the future"
	case schedule.GateBeforeMinYear:
		return "Year is too far in the past"
	case schedule.GateAfterMaxYear:
		return "Date is too far ahead"
	default:
		return err.Error()
	}
}
