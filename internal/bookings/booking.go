package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking/internal/schedule"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions is the only place booking lifecycle rules live.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseStatus maps a wire value onto a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("bookings: unknown status %q", raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether a booking in from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Action is an administrative verb applied to a booking.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionDecline  Action = "decline"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

var actionTargets = map[Action]Status{
	ActionConfirm:  StatusConfirmed,
	ActionDecline:  StatusCancelled,
	ActionCancel:   StatusCancelled,
	ActionComplete: StatusCompleted,
}

// ParseAction maps a wire value onto an Action.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := actionTargets[a]; !ok {
		return "", fmt.Errorf("bookings: unknown action %q", raw)
	}
	return a, nil
}

// Target is the status an action moves a booking into.
func (a Action) Target() Status {
	return actionTargets[a]
}

// AllowedActions lists the actions the dashboard offers for status.
// Decline is offered for requests, cancel for confirmed bookings.
func AllowedActions(s Status) []Action {
	switch s {
	case StatusPending:
		return []Action{ActionConfirm, ActionDecline}
	case StatusConfirmed:
		return []Action{ActionComplete, ActionCancel}
	default:
		return nil
	}
}

// Booking is a single appointment record.
type Booking struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Email     string        `json:"email,omitempty"`
	Service   string        `json:"service"`
	Date      schedule.Date `json:"date"`
	Time      string        `json:"time"`
	Status    Status        `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Fields are the patient-supplied values a booking is created from.
type Fields struct {
	Name    string
	Phone   string
	Email   string
	Service string
	Date    schedule.Date
	Time    string
	Notes   string
}

func (b Booking) ReservedDate() schedule.Date { return b.Date }
func (b Booking) ReservedTime() string        { return b.Time }

// HoldsSlot is true for every status but cancelled; pending requests keep
// their slot so nobody else books it while approval is outstanding.
func (b Booking) HoldsSlot() bool { return b.Status != StatusCancelled }

// NormalizePhone strips everything but digits.
func NormalizePhone(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func cloneBookings(in []Booking) []Booking {
	if in == nil {
		return []Booking{}
	}
	out := make([]Booking, len(in))
	copy(out, in)
	return out
}
