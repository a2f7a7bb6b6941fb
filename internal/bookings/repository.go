package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/dental-booking/internal/schedule"
)

type dbQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const bookingColumns = `id::text, name, phone, email, service, appointment_date, appointment_time, status, notes, created_at`

// PostgresBackend keeps bookings in the remote relational table.
type PostgresBackend struct {
	db dbQuerier
}

var _ Backend = (*PostgresBackend)(nil)

// NewPostgresBackend creates a backend backed by pgx pool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresBackend{db: pool}
}

func newPostgresBackendWithQuerier(q dbQuerier) *PostgresBackend {
	if q == nil {
		panic("bookings: querier required")
	}
	return &PostgresBackend{db: q}
}

func (r *PostgresBackend) Name() string { return BackendRemote }

// List returns every booking in creation order.
func (r *PostgresBackend) List(ctx context.Context) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("bookings: select all: %w", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate: %w", err)
	}
	return out, nil
}

// Get loads one booking by id.
func (r *PostgresBackend) Get(ctx context.Context, id string) (Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrNoRecord
		}
		return Booking{}, fmt.Errorf("bookings: select by id: %w", err)
	}
	return b, nil
}

// Insert writes b and returns it with the server-assigned created_at.
func (r *PostgresBackend) Insert(ctx context.Context, b Booking) (Booking, error) {
	query := `
		INSERT INTO bookings (id, name, phone, email, service, appointment_date, appointment_time, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		b.ID,
		b.Name,
		b.Phone,
		b.Email,
		b.Service,
		b.Date.In(time.UTC),
		b.Time,
		string(b.Status),
		b.Notes,
		b.CreatedAt,
	).Scan(&createdAt); err != nil {
		return Booking{}, fmt.Errorf("bookings: insert: %w", err)
	}
	b.CreatedAt = createdAt
	return b, nil
}

// UpdateStatus overwrites the status of id; last write wins.
func (r *PostgresBackend) UpdateStatus(ctx context.Context, id string, status Status) (Booking, error) {
	query := `UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + bookingColumns
	b, err := scanBooking(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrNoRecord
		}
		return Booking{}, fmt.Errorf("bookings: update status: %w", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (Booking, error) {
	var (
		b      Booking
		day    time.Time
		status string
	)
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Phone,
		&b.Email,
		&b.Service,
		&day,
		&b.Time,
		&status,
		&b.Notes,
		&b.CreatedAt,
	); err != nil {
		return Booking{}, err
	}
	b.Date = schedule.DateOf(day)
	b.Status = Status(status)
	return b, nil
}
