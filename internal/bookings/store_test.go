package bookings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-booking/internal/schedule"
)

var testNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

// flakyBackend behaves like a real backend until told to fail.
type flakyBackend struct {
	*LocalBackend
	failInsert error
	failList   error
	failGet    error
	failUpdate error
	inserts    int
}

func newFlakyRemote() *flakyBackend {
	return &flakyBackend{LocalBackend: NewLocalBackend(NewMemoryKV(), "remote")}
}

func (f *flakyBackend) Name() string { return BackendRemote }

func (f *flakyBackend) Insert(ctx context.Context, b Booking) (Booking, error) {
	f.inserts++
	if f.failInsert != nil {
		return Booking{}, f.failInsert
	}
	return f.LocalBackend.Insert(ctx, b)
}

func (f *flakyBackend) List(ctx context.Context) ([]Booking, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	return f.LocalBackend.List(ctx)
}

func (f *flakyBackend) Get(ctx context.Context, id string) (Booking, error) {
	if f.failGet != nil {
		return Booking{}, f.failGet
	}
	return f.LocalBackend.Get(ctx, id)
}

func (f *flakyBackend) UpdateStatus(ctx context.Context, id string, s Status) (Booking, error) {
	if f.failUpdate != nil {
		return Booking{}, f.failUpdate
	}
	return f.LocalBackend.UpdateStatus(ctx, id, s)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("bk-%d", n)
	}
}

func testStore(primary Backend, local *LocalBackend) *Store {
	return NewStore(primary, local,
		WithClock(schedule.FixedClock{T: testNow}),
		WithIDGenerator(sequentialIDs()),
	)
}

func sampleFields(day, slot string) Fields {
	return Fields{
		Name:    "Juan dela Cruz",
		Phone:   "0917 123 4567",
		Service: "Cleaning",
		Date:    schedule.MustParseDate(day),
		Time:    slot,
	}
}

func TestCreateAssignsIdentityAndPending(t *testing.T) {
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	b, err := store.Create(context.Background(), sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)

	assert.Equal(t, "bk-1", b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.True(t, b.CreatedAt.Equal(testNow))
	assert.Equal(t, BackendLocal, store.ActiveBackend())
}

func TestCreatedSlotIsImmediatelyBooked(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	day := schedule.MustParseDate("2024-01-11")

	_, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)

	booked, err := store.BookedSlots(ctx, day)
	require.NoError(t, err)
	assert.True(t, booked.Has("10:00 AM"))
}

func TestSequentialDoubleBookingIsNotRejected(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))

	first, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)
	second, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	booked, err := store.BookedSlots(ctx, schedule.MustParseDate("2024-01-11"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00 AM"}, booked.Sorted())

	// cancelling one still leaves the slot held by the other
	_, err = store.SetStatus(ctx, first.ID, StatusCancelled)
	require.NoError(t, err)
	booked, err = store.BookedSlots(ctx, schedule.MustParseDate("2024-01-11"))
	require.NoError(t, err)
	assert.True(t, booked.Has("10:00 AM"))

	_, err = store.SetStatus(ctx, second.ID, StatusCancelled)
	require.NoError(t, err)
	booked, err = store.BookedSlots(ctx, schedule.MustParseDate("2024-01-11"))
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	b, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)

	got, err := store.SetStatus(ctx, b.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	got, err = store.SetStatus(ctx, b.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestIllegalTransitionLeavesStatus(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	b, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)

	_, err = store.SetStatus(ctx, b.ID, StatusCompleted)
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, StatusPending, illegal.From)
	assert.Equal(t, StatusCompleted, illegal.To)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusPending, records[0].Status)

	_, err = store.SetStatus(ctx, b.ID, StatusCancelled)
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, b.ID, ActionConfirm.Target())
	assert.ErrorAs(t, err, &illegal, "cancelled bookings cannot be approved")
}

func TestFullLifecycle(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	b, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)

	b, err = store.SetStatus(ctx, b.ID, ActionConfirm.Target())
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)

	b, err = store.SetStatus(ctx, b.ID, ActionComplete.Target())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)

	_, err = store.SetStatus(ctx, b.ID, ActionCancel.Target())
	var illegal *IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)
}

func TestSetStatusUnknownID(t *testing.T) {
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	_, err := store.SetStatus(context.Background(), "missing", StatusConfirmed)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	_, err := store.SetStatus(context.Background(), "bk-1", Status("archived"))
	var invalid *ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestRemoteCreateFailureFallsBackToLocalForSession(t *testing.T) {
	ctx := context.Background()
	remote := newFlakyRemote()
	local := NewLocalBackend(NewMemoryKV(), "")
	store := testStore(remote, local)

	existing, err := store.Create(ctx, sampleFields("2024-01-11", "09:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, BackendRemote, store.ActiveBackend())

	remote.failInsert = errors.New("connection reset")
	b, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err, "create degrades instead of failing")
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, BackendLocal, store.ActiveBackend())
	assert.True(t, store.Degraded())

	localRecords, err := local.Load(ctx)
	require.NoError(t, err)
	require.Len(t, localRecords, 1)
	assert.Equal(t, b.ID, localRecords[0].ID)

	// the switch is permanent even once remote recovers, and results are never blended
	remote.failInsert = nil
	_, err = store.Create(ctx, sampleFields("2024-01-12", "10:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, 2, remote.inserts)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.NotEqual(t, existing.ID, r.ID)
	}
}

func TestLocalCreateFailureSurfaces(t *testing.T) {
	store := testStore(nil, NewLocalBackend(failingKV{err: errors.New("disk full")}, ""))
	_, err := store.Create(context.Background(), sampleFields("2024-01-11", "10:00 AM"))
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	assert.Equal(t, "create", persist.Op)
	assert.Equal(t, BackendLocal, persist.Backend)
}

func TestRemoteAndLocalCreateFailure(t *testing.T) {
	remote := newFlakyRemote()
	remote.failInsert = errors.New("timeout")
	store := testStore(remote, NewLocalBackend(failingKV{err: errors.New("disk full")}, ""))

	_, err := store.Create(context.Background(), sampleFields("2024-01-11", "10:00 AM"))
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	assert.ErrorContains(t, err, "timeout")
	assert.ErrorContains(t, err, "disk full")
}

func TestRemoteCreateFailureWithoutFallback(t *testing.T) {
	remote := newFlakyRemote()
	remote.failInsert = errors.New("timeout")
	store := testStore(remote, nil)

	_, err := store.Create(context.Background(), sampleFields("2024-01-11", "10:00 AM"))
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	assert.Equal(t, BackendRemote, persist.Backend)
}

func TestSetStatusPersistenceFailureDoesNotMutateOrSwitch(t *testing.T) {
	ctx := context.Background()
	remote := newFlakyRemote()
	store := testStore(remote, NewLocalBackend(NewMemoryKV(), ""))
	b, err := store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)

	remote.failUpdate = errors.New("write timeout")
	_, err = store.SetStatus(ctx, b.ID, StatusConfirmed)
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	assert.Equal(t, "set_status", persist.Op)
	assert.Equal(t, BackendRemote, store.ActiveBackend(), "status failures never switch backends")

	remote.failList = errors.New("read timeout")
	cached, err := store.List(ctx)
	require.Error(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, StatusPending, cached[0].Status, "cached view must not show the failed write")
}

func TestListFailureServesStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	remote := newFlakyRemote()
	store := testStore(remote, NewLocalBackend(NewMemoryKV(), ""))

	remote.failList = errors.New("offline")
	records, err := store.List(ctx)
	require.Error(t, err)
	assert.Empty(t, records, "nothing cached yet means an empty view")
	assert.NotNil(t, records)

	remote.failList = nil
	_, err = store.Create(ctx, sampleFields("2024-01-11", "10:00 AM"))
	require.NoError(t, err)
	fresh, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)

	remote.failList = errors.New("offline")
	stale, err := store.List(ctx)
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	assert.Equal(t, "list", persist.Op)
	assert.Equal(t, fresh, stale)

	booked, err := store.BookedSlots(ctx, schedule.MustParseDate("2024-01-11"))
	assert.Error(t, err)
	assert.True(t, booked.Has("10:00 AM"))
}

func TestSeedDemoOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil, NewLocalBackend(NewMemoryKV(), ""))
	today := schedule.MustParseDate("2024-01-13") // Saturday

	seeded, err := SeedDemo(ctx, store, today)
	require.NoError(t, err)
	assert.True(t, seeded)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusConfirmed, records[0].Status)
	assert.Equal(t, "2024-01-15", records[0].Date.String(), "sunday is skipped")

	seeded, err = SeedDemo(ctx, store, today)
	require.NoError(t, err)
	assert.False(t, seeded)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingKV) Set(context.Context, string, []byte) error   { return f.err }
