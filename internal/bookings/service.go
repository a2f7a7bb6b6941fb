package bookings

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dental-booking/internal/observability/metrics"
	"github.com/wolfman30/dental-booking/internal/schedule"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

var bookingsTracer = otel.Tracer("dental.internal.bookings")

// Service is what the intake, admin and patient workflows call.
type Service struct {
	store   *Store
	engine  *schedule.Engine
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService constructs a bookings service. metrics may be nil.
func NewService(store *Store, engine *schedule.Engine, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if engine == nil {
		panic("bookings: schedule engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, engine: engine, logger: logger, metrics: m}
}

func (s *Service) Engine() *schedule.Engine { return s.engine }

func (s *Service) ActiveBackend() string { return s.store.ActiveBackend() }

// Create stores a pending booking. Callers validate fields first.
func (s *Service) Create(ctx context.Context, f Fields) (Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create", trace.WithAttributes(
		attribute.String("dental.booking.date", f.Date.String()),
		attribute.String("dental.booking.time", f.Time),
	))
	defer span.End()
	defer s.observe("create", time.Now())

	wasDegraded := s.store.Degraded()
	b, err := s.store.Create(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		s.logger.Error("booking create failed", "error", err, "date", f.Date.String(), "time", f.Time)
		return Booking{}, err
	}
	backend := s.store.ActiveBackend()
	if !wasDegraded && s.store.Degraded() {
		s.metrics.ObserveFallback("create")
	}
	s.metrics.ObserveCreated(backend)
	span.SetAttributes(attribute.String("dental.booking.id", b.ID), attribute.String("dental.backend", backend))
	s.logger.Info("booking created", "booking_id", b.ID, "date", b.Date.String(), "time", b.Time, "backend", backend)
	return b, nil
}

// SetStatus applies a status transition and reports its outcome.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.set_status", trace.WithAttributes(
		attribute.String("dental.booking.id", id),
		attribute.String("dental.booking.status", string(status)),
	))
	defer span.End()
	defer s.observe("set_status", time.Now())

	b, err := s.store.SetStatus(ctx, id, status)
	s.metrics.ObserveTransition(string(status), transitionResult(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "set status failed")
		s.logger.Warn("booking status change rejected", "booking_id", id, "status", status, "error", err)
		return Booking{}, err
	}
	s.logger.Info("booking status changed", "booking_id", id, "status", b.Status)
	return b, nil
}

// Apply runs an admin action.
func (s *Service) Apply(ctx context.Context, id string, action Action) (Booking, error) {
	target := action.Target()
	if target == "" {
		verr := NewValidationError()
		verr.Add("action", "unknown action")
		return Booking{}, verr
	}
	return s.SetStatus(ctx, id, target)
}

// List returns every booking. On a read failure it returns the stale snapshot
// and the error.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list")
	defer span.End()
	defer s.observe("list", time.Now())

	records, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveStaleRead()
		s.logger.Warn("booking list failed; serving cached snapshot", "error", err, "cached", len(records))
	}
	return records, err
}

// BlockedSlots is the Availability Engine applied to the live collection.
func (s *Service) BlockedSlots(ctx context.Context, date schedule.Date) (schedule.SlotSet, error) {
	booked, err := s.store.BookedSlots(ctx, date)
	return s.engine.Blocked(date, booked), err
}

// Availability renders every catalog slot on date.
func (s *Service) Availability(ctx context.Context, date schedule.Date) ([]schedule.SlotAvailability, error) {
	booked, err := s.store.BookedSlots(ctx, date)
	return s.engine.Slots(date, booked), err
}

// PatientBookings runs the patient lookup against the live collection.
func (s *Service) PatientBookings(ctx context.Context, phoneQuery string) (PatientHistory, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.patient_lookup")
	defer span.End()

	records, err := s.List(ctx)
	history := PatientBookings(records, phoneQuery, s.engine.Today())
	s.metrics.ObserveLookup(len(history.Upcoming)+len(history.History) > 0)
	return history, err
}

// Dashboard builds the admin view.
func (s *Service) Dashboard(ctx context.Context) (DashboardView, error) {
	records, err := s.List(ctx)
	return Dashboard(records, s.engine.Today()), err
}

func (s *Service) observe(op string, start time.Time) {
	s.metrics.ObserveLatency(op, time.Since(start).Seconds())
}

func transitionResult(err error) string {
	var (
		notFound *NotFoundError
		illegal  *IllegalTransitionError
		persist  *PersistenceError
		invalid  *ValidationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &illegal):
		return "illegal"
	case errors.As(err, &persist):
		return "persistence"
	case errors.As(err, &invalid):
		return "invalid"
	default:
		return "error"
	}
}

// SeedDemo adds the demo booking when the store is empty.
func (s *Service) SeedDemo(ctx context.Context, today schedule.Date) (bool, error) {
	seeded, err := SeedDemo(ctx, s.store, today)
	if err != nil {
		s.logger.Warn("demo seed failed", "error", err)
	}
	return seeded, err
}
