package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const slotLayout = "03:04 PM"

// catalog is the clinic day: half-hour starts from 09:00 to 16:30.
var catalog = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
	"11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM",
	"01:00 PM", "01:30 PM", "02:00 PM", "02:30 PM",
	"03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, label := range catalog {
		idx[label] = i
	}
	return idx
}()

// Catalog returns the bookable slot labels in day order. Callers own the
// returned slice.
func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// IsCatalogSlot reports whether label is one of the bookable slots.
func IsCatalogSlot(label string) bool {
	_, ok := catalogIndex[label]
	return ok
}

// SlotMinutes returns minutes after midnight for a slot label. Labels outside
// the catalog are parsed leniently so legacy records still sort.
func SlotMinutes(label string) (int, bool) {
	t, err := time.Parse(slotLayout, strings.TrimSpace(label))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// SlotStart is the nominal start instant of label on date in loc.
func SlotStart(date Date, label string, loc *time.Location) (time.Time, error) {
	mins, ok := SlotMinutes(label)
	if !ok {
		return time.Time{}, fmt.Errorf("schedule: invalid slot label %q", label)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(date.Year, date.Month, date.Day, mins/60, mins%60, 0, 0, loc), nil
}

// SlotSet is a set of slot labels.
type SlotSet map[string]struct{}

func (s SlotSet) Add(label string) { s[label] = struct{}{} }

func (s SlotSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted lists the labels in day order; unknown labels go last, alphabetically.
func (s SlotSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, okI := SlotMinutes(out[i])
		mj, okJ := SlotMinutes(out[j])
		if okI != okJ {
			return okI
		}
		if mi != mj {
			return mi < mj
		}
		return out[i] < out[j]
	})
	return out
}
