package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arkicoffee/storefront-backend/pkg/redis"
)

// Snapshot is the serialized representation of a cart: product snapshot,
// quantity and grind per line. It must round-trip losslessly.
type Snapshot struct {
	Items []LineItem `json:"items"`
}

// EncodeSnapshot marshals a snapshot for storage.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot unmarshals a stored snapshot.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return snap, nil
}

// Persister stores cart snapshots per session. Saves are best-effort: the
// in-memory cart never waits on, or fails because of, the persister.
type Persister interface {
	Save(ctx context.Context, sessionID string, snap Snapshot) error
	Load(ctx context.Context, sessionID string) (Snapshot, bool, error)
}

// NopPersister drops every save. Used when no durable backend is configured.
type NopPersister struct{}

func (NopPersister) Save(context.Context, string, Snapshot) error { return nil }

func (NopPersister) Load(context.Context, string) (Snapshot, bool, error) {
	return Snapshot{}, false, nil
}

// MemoryPersister keeps encoded snapshots in process memory. It exercises the
// same serialization path as the redis persister, which keeps dev and tests
// honest about round-tripping.
type MemoryPersister struct {
	mu    sync.Mutex
	snaps map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{snaps: map[string][]byte{}}
}

func (m *MemoryPersister) Save(_ context.Context, sessionID string, snap Snapshot) error {
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[sessionID] = payload
	return nil
}

func (m *MemoryPersister) Load(_ context.Context, sessionID string) (Snapshot, bool, error) {
	m.mu.Lock()
	payload, ok := m.snaps[sessionID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, false, nil
	}
	snap, err := DecodeSnapshot(payload)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// RedisPersister stores snapshots in redis keyed by session id, the server
// side equivalent of the browser's local storage cart.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPersister(client *redis.Client, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

func (r *RedisPersister) Save(ctx context.Context, sessionID string, snap Snapshot) error {
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.client.CartKey(sessionID), payload, r.ttl)
}

func (r *RedisPersister) Load(ctx context.Context, sessionID string) (Snapshot, bool, error) {
	raw, err := r.client.Get(ctx, r.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	snap, err := DecodeSnapshot([]byte(raw))
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}
