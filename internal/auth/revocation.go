package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers revoked token IDs until the token would have
// expired anyway.
type RevocationStore interface {
	// Revoke marks jti as revoked until the given instant.
	Revoke(ctx context.Context, jti string, until time.Time) error

	// IsRevoked reports whether jti was revoked and the revocation is still live.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	storeMu sync.RWMutex
	store   RevocationStore = NewMemoryRevocationStore()
)

// SetRevocationStore replaces the process-wide revocation store.
func SetRevocationStore(s RevocationStore) {
	storeMu.Lock()
	defer storeMu.Unlock()
	store = s
}

// Revocations returns the process-wide revocation store.
func Revocations() RevocationStore {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return store
}

// MemoryRevocationStore is a map-backed store guarded by a RWMutex.
// Expired entries are ignored on read and dropped by PurgeExpired.
type MemoryRevocationStore struct {
	mu    sync.RWMutex
	items map[string]time.Time // jti -> revoked until
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{items: make(map[string]time.Time)}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !until.After(now()) {
		return nil
	}
	s.items[jti] = until
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.items[jti]
	if !ok {
		return false, nil
	}
	return now().Before(until), nil
}

// Len returns the number of live revocations.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	ts := now()
	for _, until := range s.items {
		if ts.Before(until) {
			count++
		}
	}
	return count
}

// PurgeExpired removes revocations whose token has expired.
func (s *MemoryRevocationStore) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := now()
	for jti, until := range s.items {
		if !ts.Before(until) {
			delete(s.items, jti)
		}
	}
}

// RunJanitor purges expired entries every interval until ctx is done.
func (s *MemoryRevocationStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PurgeExpired()
		}
	}
}

// RedisRevocationStore shares revocations between API instances. Each
// revoked jti is a key that expires together with the token.
type RedisRevocationStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRevocationStore wraps a ready-to-use client. keyPrefix defaults
// to "revoked_token:".
func NewRedisRevocationStore(client *redis.Client, keyPrefix string) *RedisRevocationStore {
	if keyPrefix == "" {
		keyPrefix = "revoked_token:"
	}
	return &RedisRevocationStore{client: client, keyPrefix: keyPrefix}
}

func (r *RedisRevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.keyPrefix+jti, 1, ttl).Err()
}

func (r *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var (
	_ RevocationStore = (*MemoryRevocationStore)(nil)
	_ RevocationStore = (*RedisRevocationStore)(nil)
)
