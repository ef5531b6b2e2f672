package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arkicoffee/storefront-backend/pkg/redis"
)

// RedisAccountStore keeps signup records in redis with a TTL, the server-side
// equivalent of the storefront's year-long account cookie.
type RedisAccountStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAccountStore(client *redis.Client, ttl time.Duration) (*RedisAccountStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisAccountStore{client: client, ttl: ttl}, nil
}

func (r *RedisAccountStore) Create(ctx context.Context, account Account) (bool, error) {
	payload, err := json.Marshal(account)
	if err != nil {
		return false, fmt.Errorf("encode account: %w", err)
	}
	return r.client.SetNX(ctx, r.client.AccountKey(account.Email), payload, r.ttl)
}

func (r *RedisAccountStore) Get(ctx context.Context, email string) (Account, bool, error) {
	raw, err := r.client.Get(ctx, r.client.AccountKey(email))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return Account{}, false, nil
		}
		return Account{}, false, err
	}
	var account Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return Account{}, false, fmt.Errorf("decode account: %w", err)
	}
	return account, true, nil
}

// MemoryAccountStore backs dev mode and tests.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: map[string]Account{}}
}

func (m *MemoryAccountStore) Create(_ context.Context, account Account) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[account.Email]; exists {
		return false, nil
	}
	m.accounts[account.Email] = account
	return true, nil
}

func (m *MemoryAccountStore) Get(_ context.Context, email string) (Account, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	return account, ok, nil
}
