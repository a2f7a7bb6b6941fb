package intake

import (
	"errors"
	"regexp"
	"strings"

	"github.com/wolfman30/dental-booking/internal/bookings"
)

// MobileDigits is the length of a local mobile number.
const MobileDigits = 11

// LookupMinDigits is the shortest number the patient portal accepts.
const LookupMinDigits = 10

var (
	ErrPhoneLength = errors.New("intake: mobile number must have 11 digits")
	ErrLookupPhone = errors.New("intake: mobile number must have at least 10 digits")
	ErrEmailFormat = errors.New("intake: malformed email address")
)

// Messages shown next to form fields.
const (
	MsgPhone       = "Please enter a valid 11-digit mobile number"
	MsgLookupPhone = "Please enter a valid mobile number"
	MsgEmail       = "Please enter a valid email address"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FormatPhone renders the digits of raw as "dddd ddd dddd", keeping at most
// eleven digits.
func FormatPhone(raw string) string {
	digits := bookings.NormalizePhone(raw)
	if len(digits) > MobileDigits {
		digits = digits[:MobileDigits]
	}
	switch {
	case len(digits) > 7:
		return digits[:4] + " " + digits[4:7] + " " + digits[7:]
	case len(digits) > 4:
		return digits[:4] + " " + digits[4:]
	default:
		return digits
	}
}

// ValidatePhone accepts numbers with exactly eleven digits.
func ValidatePhone(raw string) error {
	if len(bookings.NormalizePhone(raw)) != MobileDigits {
		return ErrPhoneLength
	}
	return nil
}

// ValidateLookupPhone is the looser check used by the patient portal.
func ValidateLookupPhone(raw string) error {
	if len(bookings.NormalizePhone(raw)) < LookupMinDigits {
		return ErrLookupPhone
	}
	return nil
}

// ValidateEmail accepts an empty address or one shaped like local@domain.tld.
func ValidateEmail(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !emailPattern.MatchString(raw) {
		return ErrEmailFormat
	}
	return nil
}
