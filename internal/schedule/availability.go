package schedule

import "time"

// DefaultGracePeriod is how long after its start a slot on today's date
// stays bookable.
const DefaultGracePeriod = 10 * time.Minute

// Reservation is anything occupying a slot on a date.
type Reservation interface {
	ReservedDate() Date
	ReservedTime() string
	// HoldsSlot is false for records that no longer block their slot.
	HoldsSlot() bool
}

// BlockReason says why a slot cannot be taken.
type BlockReason string

const (
	ReasonNone   BlockReason = ""
	ReasonBooked BlockReason = "booked"
	ReasonPast   BlockReason = "past"
)

// SlotAvailability is one catalog slot rendered for a date.
type SlotAvailability struct {
	Time      string      `json:"time"`
	Available bool        `json:"available"`
	Reason    BlockReason `json:"reason,omitempty"`
}

// Engine derives blocked slots and date gating against an injectable clock.
type Engine struct {
	clock Clock
	loc   *time.Location
	grace time.Duration
}

// NewEngine builds an engine. A nil clock reads the system clock in loc, a
// nil loc means the process local zone and a non-positive grace falls back
// to DefaultGracePeriod.
func NewEngine(clock Clock, loc *time.Location, grace time.Duration) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = SystemClock{Location: loc}
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Engine{clock: clock, loc: loc, grace: grace}
}

func (e *Engine) Now() time.Time { return e.clock.Now().In(e.loc) }

func (e *Engine) Today() Date { return DateOf(e.Now()) }

func (e *Engine) Location() *time.Location { return e.loc }

// BookedTimes projects the slot labels held on date.
func BookedTimes[R Reservation](date Date, reservations []R) SlotSet {
	out := SlotSet{}
	for _, r := range reservations {
		if r.HoldsSlot() && r.ReservedDate().Equal(date) {
			out.Add(r.ReservedTime())
		}
	}
	return out
}

// ComputeBlockedSlots returns the slots on date that are already booked by a
// reservation holding its slot, plus the elapsed slots when date is today.
func ComputeBlockedSlots[R Reservation](e *Engine, date Date, reservations []R) SlotSet {
	return e.Blocked(date, BookedTimes(date, reservations))
}

// Blocked merges already-booked labels with the past-time rule.
func (e *Engine) Blocked(date Date, booked SlotSet) SlotSet {
	out := SlotSet{}
	for label := range booked {
		out.Add(label)
	}
	for label := range e.PastSlots(date) {
		out.Add(label)
	}
	return out
}

// PastSlots lists catalog slots on date whose start is more than the grace
// period behind now. Only today's date yields anything.
func (e *Engine) PastSlots(date Date) SlotSet {
	out := SlotSet{}
	now := e.Now()
	if !date.Equal(DateOf(now)) {
		return out
	}
	for _, label := range catalog {
		start, err := SlotStart(date, label, e.loc)
		if err != nil {
			continue
		}
		if now.Sub(start) > e.grace {
			out.Add(label)
		}
	}
	return out
}

// Slots renders every catalog slot on date with its availability.
func (e *Engine) Slots(date Date, booked SlotSet) []SlotAvailability {
	past := e.PastSlots(date)
	out := make([]SlotAvailability, 0, len(catalog))
	for _, label := range catalog {
		slot := SlotAvailability{Time: label, Available: true}
		switch {
		case booked.Has(label):
			slot.Available, slot.Reason = false, ReasonBooked
		case past.Has(label):
			slot.Available, slot.Reason = false, ReasonPast
		}
		out = append(out, slot)
	}
	return out
}
