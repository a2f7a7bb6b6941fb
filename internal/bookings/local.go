package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultLocalKey is the key the whole collection is stored under.
const DefaultLocalKey = "bk_bookings"

// ErrKeyNotFound is returned by KV implementations for missing keys.
var ErrKeyNotFound = errors.New("bookings: key not found")

// KV is a durable get/set of opaque blobs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LocalBackend stores the entire booking collection as one JSON blob.
type LocalBackend struct {
	kv  KV
	key string
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend stores under key, or DefaultLocalKey when key is empty.
func NewLocalBackend(kv KV, key string) *LocalBackend {
	if kv == nil {
		panic("bookings: kv required")
	}
	if key == "" {
		key = DefaultLocalKey
	}
	return &LocalBackend{kv: kv, key: key}
}

func (l *LocalBackend) Name() string { return BackendLocal }

func (l *LocalBackend) List(ctx context.Context) ([]Booking, error) {
	return l.Load(ctx)
}

func (l *LocalBackend) Get(ctx context.Context, id string) (Booking, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return Booking{}, err
	}
	for _, b := range records {
		if b.ID == id {
			return b, nil
		}
	}
	return Booking{}, ErrNoRecord
}

func (l *LocalBackend) Insert(ctx context.Context, b Booking) (Booking, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return Booking{}, err
	}
	if err := l.Save(ctx, append(records, b)); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (l *LocalBackend) UpdateStatus(ctx context.Context, id string, status Status) (Booking, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return Booking{}, err
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		records[i].Status = status
		if err := l.Save(ctx, records); err != nil {
			return Booking{}, err
		}
		return records[i], nil
	}
	return Booking{}, ErrNoRecord
}

// Load reads the whole collection; a missing key is an empty collection.
func (l *LocalBackend) Load(ctx context.Context) ([]Booking, error) {
	data, err := l.kv.Get(ctx, l.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: read %s: %w", l.key, err)
	}
	records := []Booking{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("bookings: decode %s: %w", l.key, err)
	}
	return records, nil
}

// Save replaces the whole collection.
func (l *LocalBackend) Save(ctx context.Context, records []Booking) error {
	if records == nil {
		records = []Booking{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("bookings: encode %s: %w", l.key, err)
	}
	if err := l.kv.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("bookings: write %s: %w", l.key, err)
	}
	return nil
}

// RedisKV keeps blobs in Redis without expiry.
type RedisKV struct {
	redis *redis.Client
}

// NewRedisKV wraps a Redis client.
func NewRedisKV(client *redis.Client) *RedisKV {
	if client == nil {
		panic("bookings: redis client required")
	}
	return &RedisKV{redis: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.redis.Set(ctx, key, value, 0).Err()
}

// MemoryKV is a process-local KV for tests. Nothing survives a restart.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}
