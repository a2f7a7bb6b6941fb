package schedule

import (
	"errors"
	"fmt"
	"time"
)

// GateProfile is one way of gating which calendar dates can be picked.
type GateProfile struct {
	Name         string
	BlockPast    bool
	BlockFuture  bool
	BlockSundays bool
	// MinYear is a hard lower bound on the year; zero means none.
	MinYear int
	// YearsAhead bounds browsing past the current year; zero means none.
	YearsAhead int
}

var (
	// AppointmentProfile gates appointment dates.
	AppointmentProfile = GateProfile{Name: "appointment", BlockPast: true, BlockSundays: true, YearsAhead: 5}
	// BirthDateProfile gates the date-of-birth picker.
	BirthDateProfile = GateProfile{Name: "birthdate", BlockFuture: true, MinYear: 1920}
)

// ProfileByName resolves "appointment" or "birthdate".
func ProfileByName(name string) (GateProfile, bool) {
	switch name {
	case "", AppointmentProfile.Name:
		return AppointmentProfile, true
	case BirthDateProfile.Name:
		return BirthDateProfile, true
	default:
		return GateProfile{}, false
	}
}

// GateReason names why a date is disabled.
type GateReason string

const (
	GatePast          GateReason = "past"
	GateSunday        GateReason = "sunday"
	GateFuture        GateReason = "future"
	GateBeforeMinYear GateReason = "before_min_year"
	GateAfterMaxYear  GateReason = "after_max_year"
)

// DateGateError reports a date rejected by a profile.
type DateGateError struct {
	Date    Date
	Profile string
	Reason  GateReason
}

func (e *DateGateError) Error() string {
	return fmt.Sprintf("schedule: %s date %s not selectable: %s", e.Profile, e.Date, e.Reason)
}

// YearRange returns the browsable years for p relative to today.
func (e *Engine) YearRange(p GateProfile) (from, to int) {
	current := e.Today().Year
	from, to = current, current
	if !p.BlockPast {
		from = p.MinYear
		if from == 0 {
			from = current - 100
		}
	}
	if !p.BlockFuture && p.YearsAhead > 0 {
		to = current + p.YearsAhead
	}
	return from, to
}

// CheckDate returns a *DateGateError when d is not selectable under p.
func (e *Engine) CheckDate(p GateProfile, d Date) error {
	today := e.Today()
	reason := GateReason("")
	switch {
	case p.BlockPast && d.Before(today):
		reason = GatePast
	case p.BlockFuture && d.After(today):
		reason = GateFuture
	case p.BlockSundays && d.Weekday() == time.Sunday:
		reason = GateSunday
	case p.MinYear > 0 && d.Year < p.MinYear:
		reason = GateBeforeMinYear
	case p.YearsAhead > 0 && d.Year > today.Year+p.YearsAhead:
		reason = GateAfterMaxYear
	}
	if reason == "" {
		return nil
	}
	return &DateGateError{Date: d, Profile: p.Name, Reason: reason}
}

// CalendarDay is one day of a rendered month.
type CalendarDay struct {
	Date     Date         `json:"date"`
	Weekday  time.Weekday `json:"weekday"`
	Disabled bool         `json:"disabled"`
	Reason   GateReason   `json:"reason,omitempty"`
}

// MonthCalendar renders every day of year/month under p. Months outside the
// profile's browsable range are refused, as is going back before the current
// month for profiles that block the past.
func (e *Engine) MonthCalendar(p GateProfile, year int, month time.Month) ([]CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("schedule: invalid month %d", month)
	}
	from, to := e.YearRange(p)
	if year < from || year > to {
		return nil, fmt.Errorf("schedule: year %d outside %s range %d-%d", year, p.Name, from, to)
	}
	today := e.Today()
	if p.BlockPast && (year < today.Year || (year == today.Year && month < today.Month)) {
		return nil, fmt.Errorf("schedule: %s calendar cannot browse before %04d-%02d", p.Name, today.Year, int(today.Month))
	}

	first := Date{Year: year, Month: month, Day: 1}
	days := make([]CalendarDay, 0, 31)
	for d := first; d.Month == month; d = d.AddDays(1) {
		day := CalendarDay{Date: d, Weekday: d.Weekday()}
		if err := e.CheckDate(p, d); err != nil {
			day.Disabled = true
			var gateErr *DateGateError
			if errors.As(err, &gateErr) {
				day.Reason = gateErr.Reason
			}
		}
		days = append(days, day)
	}
	return days, nil
}
