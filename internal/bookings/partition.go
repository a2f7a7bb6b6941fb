package bookings

import (
	"sort"

	"github.com/wolfman30/dental-booking/internal/schedule"
)

// PatientHistory is one patient's bookings split around today.
type PatientHistory struct {
	Upcoming []Booking `json:"upcoming"`
	History  []Booking `json:"history"`
}

// PatientBookings returns the records whose phone digits equal the query's
// digits exactly. An empty query matches nothing.
func PatientBookings(records []Booking, phoneQuery string, today schedule.Date) PatientHistory {
	want := NormalizePhone(phoneQuery)
	matched := []Booking{}
	if want != "" {
		for _, b := range records {
			if NormalizePhone(b.Phone) == want {
				matched = append(matched, b)
			}
		}
	}
	upcoming, history := partition(matched, today)
	return PatientHistory{Upcoming: upcoming, History: history}
}

// DashboardStats are the admin headline counters.
type DashboardStats struct {
	Today   int `json:"today"`
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

// DashboardView is the admin schedule split into tabs.
type DashboardView struct {
	Upcoming []Booking      `json:"upcoming"`
	Past     []Booking      `json:"past"`
	Stats    DashboardStats `json:"stats"`
}

// Dashboard partitions every record for the admin view.
func Dashboard(records []Booking, today schedule.Date) DashboardView {
	upcoming, past := partition(records, today)
	stats := DashboardStats{Total: len(records)}
	for _, b := range records {
		if b.Status == StatusPending {
			stats.Pending++
		}
		if b.HoldsSlot() && b.Date.Equal(today) {
			stats.Today++
		}
	}
	return DashboardView{Upcoming: upcoming, Past: past, Stats: stats}
}

// partition puts non-cancelled records dated today or later in upcoming,
// soonest first, and everything else in past, latest first.
func partition(records []Booking, today schedule.Date) (upcoming, past []Booking) {
	upcoming, past = []Booking{}, []Booking{}
	for _, b := range records {
		if b.Status != StatusCancelled && !b.Date.Before(today) {
			upcoming = append(upcoming, b)
		} else {
			past = append(past, b)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return scheduledBefore(upcoming[i], upcoming[j]) })
	sort.SliceStable(past, func(i, j int) bool { return scheduledBefore(past[j], past[i]) })
	return upcoming, past
}

func scheduledBefore(a, b Booking) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	am, _ := schedule.SlotMinutes(a.Time)
	bm, _ := schedule.SlotMinutes(b.Time)
	if am != bm {
		return am < bm
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
