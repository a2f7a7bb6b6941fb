package bookings

import "context"

const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Backend is a persistence strategy for the booking collection.
type Backend interface {
	Name() string
	List(ctx context.Context) ([]Booking, error)
	Get(ctx context.Context, id string) (Booking, error)
	// Insert stores b and returns it with any store-assigned fields.
	Insert(ctx context.Context, b Booking) (Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Booking, error)
}
