package bookings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKVMissingKey(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "not-created-yet"))
	_, err := kv.Get(context.Background(), DefaultLocalKey)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileKVReplacesBlobAndLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv := NewFileKV(dir)

	require.NoError(t, kv.Set(ctx, "clinic:bookings", []byte(`[1]`)))
	require.NoError(t, kv.Set(ctx, "clinic:bookings", []byte(`[1,2]`)))

	got, err := kv.Get(ctx, "clinic:bookings")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "clinic_bookings.json", entries[0].Name())
	assert.Equal(t, filepath.Join(dir, "clinic_bookings.json"), kv.Path("clinic:bookings"))
}

func TestLocalBackendOverFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewLocalBackend(NewFileKV(dir), "")
	_, err := first.Insert(ctx, rec("a", "0917 123 4567", "2024-01-12", "09:00 AM", StatusPending))
	require.NoError(t, err)
	_, err = first.UpdateStatus(ctx, "a", StatusConfirmed)
	require.NoError(t, err)

	reopened := NewLocalBackend(NewFileKV(dir), DefaultLocalKey)
	records, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusConfirmed, records[0].Status)
}

func TestFileKVHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	kv := NewFileKV(t.TempDir())
	assert.ErrorIs(t, kv.Set(ctx, "k", []byte("v")), context.Canceled)
	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
