package bookings

import (
	"context"
	"time"

	"github.com/wolfman30/dental-booking/internal/schedule"
)

// SeedDemo adds one confirmed consultation tomorrow morning when the store is
// empty, so a fresh local install has something on the dashboard.
func SeedDemo(ctx context.Context, store *Store, today schedule.Date) (bool, error) {
	records, err := store.List(ctx)
	if err != nil {
		return false, err
	}
	if len(records) > 0 {
		return false, nil
	}
	day := today.AddDays(1)
	if day.Weekday() == time.Sunday {
		day = day.AddDays(1)
	}
	b, err := store.Create(ctx, Fields{
		Name:    "Sarah Connor",
		Phone:   "0917 123 4567",
		Email:   "sarah@test.com",
		Service: "Consultation",
		Date:    day,
		Time:    "10:00 AM",
	})
	if err != nil {
		return false, err
	}
	if _, err := store.SetStatus(ctx, b.ID, StatusConfirmed); err != nil {
		return false, err
	}
	return true, nil
}
